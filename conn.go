package serialcom

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Conn is a single serial connection with line-oriented reads and verified
// writes. Operations are synchronous and serialised; Disconnect may be called
// from any goroutine and releases the handle immediately.
type Conn struct {
	transport Transport
	log       zerolog.Logger
	metrics   *Metrics

	// opMu serialises Connect, reads, writes and scans. It also owns the
	// frame buffers.
	opMu     sync.Mutex
	readBuf  FrameBuffer
	writeBuf FrameBuffer

	// mu guards cfg, handle and available.
	mu        sync.Mutex
	cfg       Config
	handle    Handle
	open      atomic.Bool
	available []string

	errs ErrorState
}

// Option configures a Conn.
type Option func(*Conn)

// WithTransport replaces the system serial transport.
func WithTransport(t Transport) Option {
	return func(c *Conn) { c.transport = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Conn) { c.log = l }
}

// WithMetrics shares a Metrics instance, e.g. between a scanner and a monitor.
func WithMetrics(m *Metrics) Option {
	return func(c *Conn) { c.metrics = m }
}

// New returns a disconnected Conn. Unset Config fields take their defaults.
func New(cfg Config, opts ...Option) (*Conn, error) {
	cfg = cfg.withDefaults()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	c := &Conn{
		cfg:       cfg,
		transport: SystemTransport{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = &Metrics{}
	}
	if c.transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidConfig)
	}
	return c, nil
}

// Connect opens and configures the current port. It is a no-op when the
// connection is already open. On failure nothing is left open and the
// last-error text names the failing step.
func (c *Conn) Connect() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.connect()
}

func (c *Conn) connect() error {
	c.mu.Lock()
	if c.handle != nil {
		c.mu.Unlock()
		return nil
	}
	port := c.cfg.PortName
	baud := BaudRate(c.cfg.BaudRate)
	timeouts := c.cfg.Timeouts
	c.mu.Unlock()

	c.metrics.ConnectionAttempts.Inc()
	log := c.log.With().Str("port", port).Int("baud", baud.Int()).Logger()
	param := commParam(baud)

	h, err := c.transport.Open(port)
	if err != nil || h == nil {
		return c.failConnect(log, h, openError(port, err))
	}

	st, err := h.State()
	if err != nil {
		return c.failConnect(log, h, &ConnectError{Step: StepStateFetch, Port: port, Err: err})
	}
	if err = applyCommParam(param, &st); err != nil {
		return c.failConnect(log, h, &ConnectError{Step: StepConfigBuild, Port: port, Err: err})
	}
	if err = h.SetState(st); err != nil {
		return c.failConnect(log, h, &ConnectError{Step: StepStateCommit, Port: port, Err: err})
	}
	if err = h.SetTimeouts(timeouts); err != nil {
		return c.failConnect(log, h, &ConnectError{Step: StepTimeoutSet, Port: port, Err: err})
	}

	c.mu.Lock()
	c.handle = h
	c.open.Store(true)
	c.mu.Unlock()

	c.metrics.SuccessfulConnects.Inc()
	c.metrics.LastConnectTime.Store(time.Now().Unix())
	log.Debug().Str("settings", param).Msg("serial port connected")
	return nil
}

// openError classifies an Open failure. A device that is missing or not a
// serial port is HandleInvalid; any other OS refusal (busy, access denied)
// keeps its code as OsError.
func openError(port string, err error) *ConnectError {
	cerr := &ConnectError{Step: StepHandleInvalid, Port: port, Err: err}
	var oe *OSError
	if !errors.As(err, &oe) {
		return cerr
	}
	switch oe.Code {
	case CodeFileNotFound, CodeInvalidHandle, CodeGenFailure:
	default:
		cerr.Step = StepOSError
		cerr.Code = oe.Code
	}
	return cerr
}

func (c *Conn) failConnect(log zerolog.Logger, h Handle, cerr *ConnectError) error {
	if h != nil {
		if err := h.Close(); err != nil {
			cerr.Err = errors.Join(cerr.Err, err)
		}
	}
	c.errs.Set(cerr.message())
	c.metrics.ConnectionFailures.Inc()
	log.Debug().Err(cerr.Err).Stringer("step", cerr.Step).Msg("serial port connect failed")
	return cerr
}

// Disconnect zero-fills both frame buffers and releases the handle. It is
// safe to call at any time, any number of times.
func (c *Conn) Disconnect() {
	c.release()
	if c.opMu.TryLock() {
		c.resetBuffers()
		c.opMu.Unlock()
	}
	// Otherwise an operation is in flight; it resets the buffers on its way out.
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	c.Disconnect()
	return nil
}

// disconnect is Disconnect for callers already holding opMu.
func (c *Conn) disconnect() {
	c.release()
	c.resetBuffers()
}

func (c *Conn) release() {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.open.Store(false)
	port := c.cfg.PortName
	c.mu.Unlock()

	if h == nil {
		return
	}
	if err := h.Close(); err != nil {
		c.log.Warn().Err(err).Str("port", port).Msg("closing serial port")
	}
	c.metrics.Disconnections.Inc()
	c.metrics.LastDisconnectTime.Store(time.Now().Unix())
}

func (c *Conn) resetBuffers() {
	c.readBuf.reset()
	c.writeBuf.reset()
}

// IsConnected reports whether a handle is currently open.
func (c *Conn) IsConnected() bool {
	return c.open.Load()
}

func (c *Conn) current() Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// SetPort sets the device used by the next Connect.
func (c *Conn) SetPort(name string) {
	c.mu.Lock()
	c.cfg.PortName = name
	c.mu.Unlock()
}

func (c *Conn) Port() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.PortName
}

// SetBaudRate sets the rate used by the next Connect. Rates the line settings
// cannot express are reported by Connect as ConfigBuildFailed.
func (c *Conn) SetBaudRate(baud int) {
	c.mu.Lock()
	c.cfg.BaudRate = baud
	c.mu.Unlock()
}

func (c *Conn) BaudRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.BaudRate
}

// LastError returns the text of the most recent failure, or "".
func (c *Conn) LastError() string {
	return c.errs.Get()
}

func (c *Conn) ClearError() {
	c.errs.Clear()
}

func (c *Conn) Metrics() *Metrics {
	return c.metrics
}

// Snapshot returns the current metrics view.
func (c *Conn) Snapshot() MetricsSnapshot {
	return c.metrics.Snapshot(c.IsConnected())
}
