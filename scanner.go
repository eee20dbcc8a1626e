package serialcom

import (
	"context"
	"fmt"
	"slices"
)

// MsgBusy is recorded when a probe is refused because the Conn is connected.
const MsgBusy = "CONNECTION_OPEN"

// PortName renders the device name for a port number using the configured
// pattern, \\.\COM<id> by default.
func (c *Conn) PortName(id int) string {
	c.mu.Lock()
	pattern := c.cfg.PortPattern
	c.mu.Unlock()
	return fmt.Sprintf(pattern, id)
}

// IsValidPort reports whether a device answers a full Connect on port id. The
// probe always disconnects and restores the previously configured port.
func (c *Conn) IsValidPort(id int) bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	ok, _ := c.probe(id)
	return ok
}

func (c *Conn) probe(id int) (bool, error) {
	if id < 0 {
		c.errs.Set(MsgInvalidPortName)
		return false, &ScanError{ID: id}
	}
	if c.IsConnected() {
		c.errs.Set(MsgBusy)
		return false, ErrBusy
	}

	name := c.PortName(id)
	c.mu.Lock()
	prev := c.cfg.PortName
	c.cfg.PortName = name
	c.mu.Unlock()

	c.metrics.PortsProbed.Inc()
	err := c.connect()
	c.disconnect()

	c.mu.Lock()
	c.cfg.PortName = prev
	c.mu.Unlock()

	if err != nil {
		c.errs.Set(MsgInvalidCOMPort)
		c.log.Debug().Err(err).Str("port", name).Msg("no device")
		return false, nil
	}
	c.metrics.PortsFound.Inc()
	c.log.Debug().Str("port", name).Msg("device found")
	return true, nil
}

// ScanPorts probes every port number in the configured range and records the
// live ones, in ascending order. Probe failures are expected and do not stay
// in the last-error slot. Scanning an open Conn is refused with ErrBusy.
func (c *Conn) ScanPorts(ctx context.Context) ([]string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.IsConnected() {
		c.errs.Set(MsgBusy)
		return nil, ErrBusy
	}

	c.mu.Lock()
	first, last := c.cfg.ScanFirst, c.cfg.ScanLast
	c.available = nil
	c.mu.Unlock()

	var found []string
	var scanErr error
	for id := first; id <= last; id++ {
		if err := ctx.Err(); err != nil {
			scanErr = err
			break
		}
		ok, err := c.probe(id)
		if err != nil {
			scanErr = err
			break
		}
		if ok {
			found = append(found, c.PortName(id))
		}
	}

	c.mu.Lock()
	c.available = found
	c.mu.Unlock()

	c.errs.clearIf(MsgInvalidCOMPort)
	c.log.Info().Strs("ports", found).Int("first", first).Int("last", last).Msg("port scan complete")
	return slices.Clone(found), scanErr
}

// AvailablePorts returns the live ports recorded by the last ScanPorts.
func (c *Conn) AvailablePorts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.available)
}
