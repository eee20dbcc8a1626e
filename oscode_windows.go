//go:build windows

package serialcom

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// errnoCode passes Win32 codes through unchanged; the named constants already
// use the Win32 numbering.
func errnoCode(errno syscall.Errno) OSCode {
	switch errno {
	case windows.ERROR_IO_PENDING:
		return CodeIOPending
	case windows.ERROR_HANDLE_EOF:
		return CodeHandleEOF
	}
	return OSCode(errno)
}
