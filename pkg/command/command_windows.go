//go:build windows

package command

import (
	"strconv"
	"time"
)

// pingCommand builds a single-echo ping, -w is in milliseconds on Windows
func pingCommand(host string, timeout time.Duration) (string, []string) {
	ms := max(timeout.Milliseconds(), 1)
	return "ping", []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), host}
}

// neighborCommand lists the ARP cache of every interface
func neighborCommand(func(string) (string, error)) (string, []string) {
	return "arp", []string{"-a"}
}

// pingReplied requires an echo reply, Windows ping exits zero when the local
// stack answers "Destination host unreachable"
func pingReplied(stdout string) bool {
	return hasEchoReply(stdout)
}
