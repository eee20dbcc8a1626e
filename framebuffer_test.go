package serialcom

import (
	"strings"
	"sync"
	"testing"
)

func TestFrameBufferSlotCommit(t *testing.T) {
	var f FrameBuffer
	if !f.IsZero() {
		t.Fatal("new buffer must be zero")
	}

	slot := f.slot()
	slot[0] = 'a'
	// an uncommitted slot is overwritten by the next attempt
	slot = f.slot()
	slot[0] = 'b'
	if b := f.commit(); b != 'b' {
		t.Fatalf("commit = %q", b)
	}
	if f.Len() != 1 || string(f.Bytes()) != "b" {
		t.Fatalf("buffer = %q", f.Bytes())
	}

	for f.slot() != nil {
		f.commit()
	}
	if f.Len() != FrameSize {
		t.Fatalf("expected full buffer, got %d", f.Len())
	}

	f.reset()
	if !f.IsZero() {
		t.Fatal("reset must zero-fill")
	}
}

func TestFrameBufferFill(t *testing.T) {
	var f FrameBuffer
	if !f.fill("PING", '\n') || string(f.Bytes()) != "PING\n" {
		t.Fatalf("fill = %q", f.Bytes())
	}
	if f.fill(strings.Repeat("x", FrameSize), '\n') {
		t.Fatal("oversized fill must fail")
	}
	if !f.fill(strings.Repeat("x", FrameSize-1), '\n') || f.Len() != FrameSize {
		t.Fatalf("exact fill failed, len %d", f.Len())
	}
}

func TestErrorState(t *testing.T) {
	var s ErrorState
	if s.Get() != "" {
		t.Fatal("new state must be empty")
	}
	s.Set(MsgInvalidCOMPort)
	if s.clearIf(MsgReadBufferFull) || s.Get() != MsgInvalidCOMPort {
		t.Fatal("clearIf must leave other text alone")
	}
	if !s.clearIf(MsgInvalidCOMPort) || s.Get() != "" {
		t.Fatal("clearIf must clear matching text")
	}
	s.Set("x")
	s.Clear()
	if s.Get() != "" {
		t.Fatal("Clear must empty the state")
	}
}

func TestErrorStateConcurrent(t *testing.T) {
	var s ErrorState
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set(MsgReadBufferFull)
				_ = s.Get()
				s.clearIf(MsgReadBufferFull)
			}
		}()
	}
	wg.Wait()
}
