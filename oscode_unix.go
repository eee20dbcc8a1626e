//go:build unix

package serialcom

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// errnoCode folds unix errno values into the shared code space. A read that
// would block or was interrupted is the unix face of IO_PENDING. Raw errno
// numbers overlap the Win32 ones (ENOSYS is 38, HANDLE_EOF), so anything
// unmapped is a general failure; the errno itself stays in OSError.Err.
func errnoCode(errno syscall.Errno) OSCode {
	switch errno {
	case unix.EAGAIN, unix.EINTR:
		return CodeIOPending
	case unix.ENOENT, unix.ENODEV, unix.ENXIO:
		return CodeFileNotFound
	case unix.EACCES, unix.EPERM:
		return CodeAccessDenied
	case unix.EBUSY:
		return CodeSharingViolation
	case unix.EBADF:
		return CodeInvalidHandle
	case unix.EINVAL:
		return CodeInvalidParameter
	case unix.ENOTTY, unix.ENOTSUP:
		return CodeNotSupported
	case unix.ECANCELED:
		return CodeOperationAborted
	}
	return CodeGenFailure
}
