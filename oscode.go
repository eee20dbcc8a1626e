package serialcom

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"syscall"

	gobug "go.bug.st/serial"
)

// OSCode is an operating-system error code as reported by the transport.
// Values follow the Win32 numbering so that error texts match across hosts.
type OSCode uint32

const (
	CodeFileNotFound     OSCode = 2
	CodeAccessDenied     OSCode = 5
	CodeInvalidHandle    OSCode = 6
	CodeGenFailure       OSCode = 31
	CodeSharingViolation OSCode = 32
	CodeHandleEOF        OSCode = 38
	CodeNotSupported     OSCode = 50
	CodeInvalidParameter OSCode = 87
	CodeOperationAborted OSCode = 995
	CodeIOPending        OSCode = 997
)

// Transient reports whether the code is an expected polling outcome that is
// retried in place rather than surfaced.
func (c OSCode) Transient() bool {
	return c == CodeIOPending || c == CodeHandleEOF
}

func (c OSCode) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// OSError is returned by a Handle when the underlying device call fails.
type OSError struct {
	Op   string
	Code OSCode
	Err  error
}

func (e *OSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: os error %d: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: os error %d", e.Op, e.Code)
}

func (e *OSError) Unwrap() error { return e.Err }

// codeOf extracts the OS code carried by err. Errors that carry no code map to
// CodeGenFailure.
func codeOf(err error) OSCode {
	if err == nil {
		return 0
	}
	var oe *OSError
	if errors.As(err, &oe) {
		return oe.Code
	}
	if errors.Is(err, io.EOF) {
		return CodeHandleEOF
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errnoCode(errno)
	}
	if code, ok := portErrorCode(err); ok {
		return code
	}
	return CodeGenFailure
}

// wrapOS converts a raw go.bug.st/serial or syscall error into an *OSError.
func wrapOS(op string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OSError
	if errors.As(err, &oe) {
		return err
	}
	return &OSError{Op: op, Code: codeOf(err), Err: err}
}

func portErrorCode(err error) (OSCode, bool) {
	var code gobug.PortErrorCode
	var pv gobug.PortError
	var pp *gobug.PortError
	switch {
	case errors.As(err, &pp) && pp != nil:
		code = pp.Code()
	case errors.As(err, &pv):
		code = pv.Code()
	default:
		return 0, false
	}

	switch code {
	case gobug.PortNotFound:
		return CodeFileNotFound, true
	case gobug.PermissionDenied:
		return CodeAccessDenied, true
	case gobug.PortBusy:
		return CodeSharingViolation, true
	case gobug.PortClosed, gobug.InvalidSerialPort:
		return CodeInvalidHandle, true
	case gobug.InvalidSpeed, gobug.InvalidDataBits, gobug.InvalidParity,
		gobug.InvalidStopBits, gobug.InvalidTimeoutValue:
		return CodeInvalidParameter, true
	case gobug.FunctionNotImplemented:
		return CodeNotSupported, true
	}
	return CodeGenFailure, true
}
