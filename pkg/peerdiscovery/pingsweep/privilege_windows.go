//go:build windows

package pingsweep

import "golang.org/x/sys/windows"

// IsPrivileged reports whether the process token is elevated
func IsPrivileged() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
