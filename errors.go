package serialcom

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("serialcom: not connected")
	ErrFrameOverflow    = errors.New("serialcom: frame buffer full before terminator")
	ErrInvalidReadCount = errors.New("serialcom: read count out of range")
	ErrLineTooLong      = errors.New("serialcom: line does not fit the write buffer")
	ErrNotImplemented   = errors.New("serialcom: not implemented")
	ErrInvalidPortName  = errors.New("serialcom: invalid port name")
	ErrBusy             = errors.New("serialcom: connection is open")
	ErrInvalidConfig    = errors.New("serialcom: invalid configuration")

	// Kind sentinels; the tagged error types below match them with errors.Is.
	ErrConnect = errors.New("serialcom: connect failed")
	ErrRead    = errors.New("serialcom: read failed")
	ErrWrite   = errors.New("serialcom: write failed")
)

// Texts recorded in the last-error slot.
const (
	MsgInvalidHandle   = "INVALID_HANDLE_ERROR"
	MsgGetCommState    = "GET_COMM_STATE_ERROR"
	MsgDCBBuild        = "DCB_BUILD_ERROR"
	MsgSetCommState    = "SET_COMM_STATE_ERROR"
	MsgSetCommTimeout  = "SET_COMM_TIMEOUT_ERROR"
	MsgInvalidPortName = "INVALID_PORT_NAME"
	MsgInvalidCOMPort  = "INVALID_COM_PORT"
	MsgReadBufferFull  = "READ_BUFFER_FULL"
)

// ConnectStep identifies which stage of Connect failed.
type ConnectStep int

const (
	StepHandleInvalid ConnectStep = iota + 1
	StepStateFetch
	StepConfigBuild
	StepStateCommit
	StepTimeoutSet
	StepOSError
)

func (s ConnectStep) String() string {
	switch s {
	case StepHandleInvalid:
		return "HandleInvalid"
	case StepStateFetch:
		return "StateFetchFailed"
	case StepConfigBuild:
		return "ConfigBuildFailed"
	case StepStateCommit:
		return "StateCommitFailed"
	case StepTimeoutSet:
		return "TimeoutSetFailed"
	case StepOSError:
		return "OsError"
	}
	return fmt.Sprintf("ConnectStep(%d)", int(s))
}

// ConnectError reports a failed Connect. Code is set only for StepOSError.
type ConnectError struct {
	Step ConnectStep
	Port string
	Code OSCode
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serialcom: connect %s: %s: %v", e.Port, e.Step, e.Err)
	}
	return fmt.Sprintf("serialcom: connect %s: %s", e.Port, e.Step)
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool { return target == ErrConnect }

// message is the last-error text for the failing step.
func (e *ConnectError) message() string {
	switch e.Step {
	case StepHandleInvalid:
		return MsgInvalidHandle
	case StepStateFetch:
		return MsgGetCommState
	case StepConfigBuild:
		return MsgDCBBuild
	case StepStateCommit:
		return MsgSetCommState
	case StepTimeoutSet:
		return MsgSetCommTimeout
	}
	return fmt.Sprintf("WINDOWS_ERROR: %d", e.Code)
}

// ReadError is a fatal read failure. Transient codes never surface here.
type ReadError struct {
	Code OSCode
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("serialcom: read: os error %d", e.Code)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

func (e *ReadError) message() string {
	return fmt.Sprintf("READ_ERROR %d", e.Code)
}

// WriteError is a fatal write failure: either an OS error (Code set) or a
// short write (Missing > 0).
type WriteError struct {
	Code    OSCode
	Missing int
	Err     error
}

func (e *WriteError) Error() string {
	if e.Missing > 0 {
		return fmt.Sprintf("serialcom: write incomplete: %d bytes not written", e.Missing)
	}
	return fmt.Sprintf("serialcom: write: os error %d", e.Code)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

func (e *WriteError) message() string {
	if e.Missing > 0 {
		return fmt.Sprintf("WRITE_INCOMPLETE %d BYTES NOT WRITTEN", e.Missing)
	}
	return fmt.Sprintf("WRITE_ERROR %d", e.Code)
}

// ScanError is returned for a port candidate that cannot name a device.
type ScanError struct {
	ID int
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("serialcom: invalid port id %d", e.ID)
}

func (e *ScanError) Is(target error) bool { return target == ErrInvalidPortName }
