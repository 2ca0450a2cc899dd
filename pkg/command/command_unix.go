//go:build !windows

package command

import (
	"strconv"
	"time"

	osutils "github.com/projectdiscovery/utils/os"
)

// pingCommand builds a single-echo ping. The -W wait is in seconds on Linux
// and in milliseconds on macOS.
func pingCommand(host string, timeout time.Duration) (string, []string) {
	if osutils.IsOSX() {
		ms := max(timeout.Milliseconds(), 1)
		return "ping", []string{"-c", "1", "-W", strconv.FormatInt(ms, 10), host}
	}
	return "ping", []string{"-c", "1", "-W", strconv.Itoa(timeoutSeconds(timeout)), host}
}

// neighborCommand prefers arp without name resolution and falls back to
// iproute2 on Linux hosts where net-tools is not installed.
func neighborCommand(lookPath func(string) (string, error)) (string, []string) {
	if _, err := lookPath("arp"); err != nil && osutils.IsLinux() {
		return "ip", []string{"neigh", "show"}
	}
	return "arp", []string{"-an"}
}

// pingReplied trusts the exit status, POSIX ping exits non-zero without a reply
func pingReplied(string) bool {
	return true
}
