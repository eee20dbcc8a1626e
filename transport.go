package serialcom

import "time"

// Transport opens named serial devices.
type Transport interface {
	Open(name string) (Handle, error)
}

// Handle is an open serial device. Read is called with a one-byte slice; a
// zero count with a nil error means the per-read timeout elapsed.
type Handle interface {
	State() (DeviceState, error)
	SetState(st DeviceState) error
	SetTimeouts(t Timeouts) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// ModemStatus mirrors the input control lines sampled when state is fetched.
type ModemStatus struct {
	CTS bool
	DSR bool
	RI  bool
	DCD bool
}

// DeviceState is the line configuration of an open device.
type DeviceState struct {
	BaudRate BaudRate
	DataBits DataBits
	Parity   Parity
	StopBits StopBits
	Modem    ModemStatus
}

// Timeouts is the timeout profile applied on connect. Total read and write
// budgets grow with the number of bytes requested.
type Timeouts struct {
	ReadInterval         time.Duration `mapstructure:"read_interval" validate:"gte=0"`
	ReadTotalConstant    time.Duration `mapstructure:"read_total_constant" validate:"gte=0"`
	ReadTotalMultiplier  time.Duration `mapstructure:"read_total_multiplier" validate:"gte=0"`
	WriteTotalConstant   time.Duration `mapstructure:"write_total_constant" validate:"gte=0"`
	WriteTotalMultiplier time.Duration `mapstructure:"write_total_multiplier" validate:"gte=0"`
}

// DefaultTimeouts returns the profile used for microcontroller links.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ReadInterval:         500 * time.Millisecond,
		ReadTotalConstant:    100 * time.Millisecond,
		ReadTotalMultiplier:  500 * time.Millisecond,
		WriteTotalConstant:   500 * time.Millisecond,
		WriteTotalMultiplier: 500 * time.Millisecond,
	}
}

// ReadTotal is the total read budget for n bytes.
func (t Timeouts) ReadTotal(n int) time.Duration {
	return t.ReadTotalConstant + time.Duration(n)*t.ReadTotalMultiplier
}

// WriteTotal is the total write budget for n bytes.
func (t Timeouts) WriteTotal(n int) time.Duration {
	return t.WriteTotalConstant + time.Duration(n)*t.WriteTotalMultiplier
}
