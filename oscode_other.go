//go:build !unix && !windows

package serialcom

import "syscall"

// errnoCode has no mapping on this platform.
func errnoCode(errno syscall.Errno) OSCode {
	return CodeGenFailure
}
