package serialcom

import (
	"sync"
	"testing"
)

// readResult is one scripted answer to a one-byte Read.
type readResult struct {
	b   byte
	n   int
	err error
}

func script(s string) []readResult {
	out := make([]readResult, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, readResult{b: s[i], n: 1})
	}
	return out
}

func failRead(code OSCode) readResult {
	return readResult{err: &OSError{Op: "read", Code: code}}
}

// fakeHandle is a scripted Handle. When the read script runs out it either
// blocks until Close (block set) or fails with CodeGenFailure so that a
// broken test cannot spin forever.
type fakeHandle struct {
	mu sync.Mutex

	reads     []readResult
	readCalls int
	block     bool
	closedCh  chan struct{}

	written [][]byte
	write   func(p []byte) (int, error)

	stateErr    error
	setStateErr error
	timeoutErr  error

	applied    DeviceState
	timeouts   Timeouts
	closeCount int
	loopback   bool
}

func newFakeHandle(reads ...readResult) *fakeHandle {
	return &fakeHandle{reads: reads, closedCh: make(chan struct{})}
}

func (h *fakeHandle) State() (DeviceState, error) {
	if h.stateErr != nil {
		return DeviceState{}, h.stateErr
	}
	return DeviceState{BaudRate: Baud9600, DataBits: DataBits7, Parity: ParityEven, StopBits: StopBits2}, nil
}

func (h *fakeHandle) SetState(st DeviceState) error {
	if h.setStateErr != nil {
		return h.setStateErr
	}
	h.applied = st
	return nil
}

func (h *fakeHandle) SetTimeouts(t Timeouts) error {
	if h.timeoutErr != nil {
		return h.timeoutErr
	}
	h.timeouts = t
	return nil
}

func (h *fakeHandle) Read(p []byte) (int, error) {
	h.mu.Lock()
	h.readCalls++
	if len(h.reads) == 0 {
		block := h.block
		closed := h.closedCh
		h.mu.Unlock()
		if block {
			<-closed
			return 0, &OSError{Op: "read", Code: CodeInvalidHandle}
		}
		return 0, &OSError{Op: "read", Code: CodeGenFailure}
	}
	r := h.reads[0]
	h.reads = h.reads[1:]
	h.mu.Unlock()

	if r.n == 1 {
		p[0] = r.b
	}
	return r.n, r.err
}

func (h *fakeHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	h.written = append(h.written, cp)
	if h.loopback {
		h.reads = append(h.reads, script(string(cp))...)
	}
	if h.write != nil {
		return h.write(p)
	}
	return len(p), nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closeCount == 0 {
		close(h.closedCh)
	}
	h.closeCount++
	return nil
}

func (h *fakeHandle) closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeCount
}

// fakeTransport maps device names to handles. Unknown names fail to open
// with CodeFileNotFound. With handleOnErr set, a failing Open still hands
// back the device's handle alongside the error.
type fakeTransport struct {
	mu          sync.Mutex
	devices     map[string]*fakeHandle
	openErr     map[string]error
	handleOnErr bool
	opened      []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		devices: make(map[string]*fakeHandle),
		openErr: make(map[string]error),
	}
}

func (t *fakeTransport) Open(name string) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opened = append(t.opened, name)
	h, ok := t.devices[name]
	if err, failed := t.openErr[name]; failed {
		if ok && t.handleOnErr {
			return h, err
		}
		return nil, err
	}
	if !ok {
		return nil, &OSError{Op: "open", Code: CodeFileNotFound}
	}
	return h, nil
}

func (t *fakeTransport) openCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.opened)
}

// newTestConn returns a Conn on port "mock" backed by h, already connected.
func newTestConn(t *testing.T, h *fakeHandle) *Conn {
	t.Helper()

	tr := newFakeTransport()
	tr.devices["mock"] = h
	c, err := New(Config{PortName: "mock"}, WithTransport(tr))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	return c
}

func assertBuffersZero(t *testing.T, c *Conn) {
	t.Helper()
	if !c.readBuf.IsZero() {
		t.Fatalf("read buffer not zero-filled: %q", c.readBuf.buf[:])
	}
	if !c.writeBuf.IsZero() {
		t.Fatalf("write buffer not zero-filled: %q", c.writeBuf.buf[:])
	}
}
