package serialcom

import (
	gobug "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// allow tests to override external dependencies
var (
	openPort       = func(name string, mode *gobug.Mode) (gobug.Port, error) { return gobug.Open(name, mode) }
	getPortDetails = enumerator.GetDetailedPortsList
)

// SystemTransport opens real serial devices through go.bug.st/serial.
type SystemTransport struct{}

// Open opens name at 9600 8N1. Connect applies the requested settings after.
func (SystemTransport) Open(name string) (Handle, error) {
	st := DeviceState{
		BaudRate: DefaultBaudRate,
		DataBits: DataBits8,
		Parity:   ParityNone,
		StopBits: StopBits1,
	}
	p, err := openPort(name, modeOf(st))
	if err != nil {
		return nil, wrapOS("open", err)
	}
	return &bugstHandle{port: p, state: st}, nil
}

func modeOf(st DeviceState) *gobug.Mode {
	return &gobug.Mode{
		BaudRate: st.BaudRate.Int(),
		DataBits: st.DataBits.Int(),
		Parity:   st.Parity.Get(),
		StopBits: st.StopBits.Get(),
	}
}

type bugstHandle struct {
	port  gobug.Port
	state DeviceState
}

// State returns the last applied settings plus the sampled modem lines.
// Devices without modem lines (pseudo-terminals, some USB CDC adapters)
// report all lines low.
func (h *bugstHandle) State() (DeviceState, error) {
	st := h.state
	bits, err := h.port.GetModemStatusBits()
	if err != nil {
		switch codeOf(err) {
		case CodeNotSupported, CodeInvalidParameter:
			return st, nil
		}
		return DeviceState{}, wrapOS("get state", err)
	}
	st.Modem = ModemStatus{CTS: bits.CTS, DSR: bits.DSR, RI: bits.RI, DCD: bits.DCD}
	return st, nil
}

func (h *bugstHandle) SetState(st DeviceState) error {
	if err := h.port.SetMode(modeOf(st)); err != nil {
		return wrapOS("set state", err)
	}
	h.state = st
	return nil
}

// SetTimeouts applies the single-byte read budget as the per-read timeout.
// go.bug.st/serial has no write timeout; writes block until the driver
// accepts the bytes.
func (h *bugstHandle) SetTimeouts(t Timeouts) error {
	d := t.ReadTotal(1)
	if d <= 0 {
		d = gobug.NoTimeout
	}
	return wrapOS("set timeouts", h.port.SetReadTimeout(d))
}

func (h *bugstHandle) Read(p []byte) (int, error) {
	n, err := h.port.Read(p)
	return n, wrapOS("read", err)
}

func (h *bugstHandle) Write(p []byte) (int, error) {
	n, err := h.port.Write(p)
	return n, wrapOS("write", err)
}

func (h *bugstHandle) Close() error {
	return wrapOS("close", h.port.Close())
}

// PortInfo describes a serial port known to the operating system.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

// ListSystemPorts enumerates the serial ports the OS currently reports.
func ListSystemPorts() ([]PortInfo, error) {
	details, err := getPortDetails()
	if err != nil {
		return nil, err
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
		})
	}
	return ports, nil
}
