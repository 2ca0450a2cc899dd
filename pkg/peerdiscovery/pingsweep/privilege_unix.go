//go:build !windows

package pingsweep

import "golang.org/x/sys/unix"

// IsPrivileged reports whether raw sockets can be opened
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}
