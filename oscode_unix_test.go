//go:build unix

package serialcom

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestErrnoCode(t *testing.T) {
	tests := []struct {
		errno unix.Errno
		want  OSCode
	}{
		{unix.EAGAIN, CodeIOPending},
		{unix.EINTR, CodeIOPending},
		{unix.ENOENT, CodeFileNotFound},
		{unix.EACCES, CodeAccessDenied},
		{unix.EBUSY, CodeSharingViolation},
		{unix.EBADF, CodeInvalidHandle},
		{unix.EIO, CodeGenFailure},
		{unix.EPIPE, CodeGenFailure},
		{unix.ENOSYS, CodeGenFailure},
	}

	for _, tt := range tests {
		if got := codeOf(fmt.Errorf("read: %w", tt.errno)); got != tt.want {
			t.Errorf("%v: got %d, want %d", tt.errno, got, tt.want)
		}
	}
}

func TestEAGAINIsTransient(t *testing.T) {
	if !codeOf(wrapOS("read", unix.EAGAIN)).Transient() {
		t.Fatal("EAGAIN must be retried")
	}
	// ENOSYS shares its number with HANDLE_EOF
	for _, errno := range []unix.Errno{unix.EIO, unix.ENOSYS, unix.EPIPE} {
		if codeOf(wrapOS("read", errno)).Transient() {
			t.Fatalf("%v must be fatal", errno)
		}
	}
}

func TestUnmappedErrnoKeptInOSError(t *testing.T) {
	err := wrapOS("read", unix.ENOSYS)
	if !errors.Is(err, unix.ENOSYS) {
		t.Fatalf("expected raw errno to stay wrapped, got %v", err)
	}
}

func TestReadLineFatalOnUnmappedErrno(t *testing.T) {
	h := newFakeHandle(append(script("ab"), readResult{err: wrapOS("read", unix.ENOSYS)})...)
	c := newTestConn(t, h)

	_, err := c.ReadLine(context.Background())
	if !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
	if got := c.LastError(); got != "READ_ERROR 31" {
		t.Fatalf("LastError = %q", got)
	}
	if c.IsConnected() {
		t.Fatalf("expected disconnect after ENOSYS")
	}
	if h.closes() != 1 {
		t.Fatalf("expected handle closed once, got %d", h.closes())
	}
	if n := c.Metrics().TransientRetries.Load(); n != 0 {
		t.Fatalf("expected no retries, got %d", n)
	}
}
