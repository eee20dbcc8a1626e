package serialcom

import (
	"context"
	"fmt"
)

// Last-error texts for reads and writes rejected before any I/O.
const (
	MsgNotConnected     = "NOT_CONNECTED"
	MsgInvalidReadCount = "INVALID_READ_COUNT"
	MsgLineTooLong      = "WRITE_BUFFER_OVERFLOW"
)

// stopFunc decides whether the byte just committed ends the read. count
// includes b.
type stopFunc func(b byte, count int) bool

// ReadLine reads up to and including the next '\n'. A '\n' in the first
// position does not end the line.
func (c *Conn) ReadLine(ctx context.Context) (string, error) {
	return c.ReadUntil(ctx, '\n')
}

// ReadUntil reads up to and including terminator. A terminator in the first
// position does not end the read; it stays in the result.
func (c *Conn) ReadUntil(ctx context.Context, terminator byte) (string, error) {
	return c.read(ctx, untilTerminator(terminator))
}

// ReadBytes reads exactly n bytes. n must be within the frame capacity.
func (c *Conn) ReadBytes(ctx context.Context, n int) (string, error) {
	if n < 1 || n > FrameSize {
		c.errs.Set(MsgInvalidReadCount)
		return "", fmt.Errorf("%w: %d (capacity %d)", ErrInvalidReadCount, n, FrameSize)
	}
	return c.read(ctx, func(_ byte, count int) bool {
		return count == n
	})
}

// read pulls one byte at a time into the read frame until stop reports true.
// Empty reads and transient codes retry the same slot. Any other OS error
// disconnects.
func (c *Conn) read(ctx context.Context, stop stopFunc) (string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.readLocked(ctx, stop)
}

func untilTerminator(terminator byte) stopFunc {
	return func(b byte, count int) bool {
		return b == terminator && count > 1
	}
}

func (c *Conn) readLocked(ctx context.Context, stop stopFunc) (string, error) {
	h := c.current()
	if h == nil {
		c.errs.Set(MsgNotConnected)
		return "", ErrNotConnected
	}

	c.metrics.ReadOperations.Inc()
	buf := &c.readBuf
	defer buf.reset()

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slot := buf.slot()
		if slot == nil {
			c.errs.Set(MsgReadBufferFull)
			c.metrics.ReadOverflows.Inc()
			c.log.Warn().Str("port", c.Port()).Int("capacity", FrameSize).Msg("read frame full before terminator")
			return "", ErrFrameOverflow
		}

		n, err := h.Read(slot)
		if n == 1 {
			count := buf.Len() + 1
			if stop(buf.commit(), count) {
				line := string(buf.Bytes())
				c.metrics.SuccessfulReads.Inc()
				c.metrics.BytesRead.Add(int64(len(line)))
				return line, nil
			}
			continue
		}
		if err == nil {
			c.metrics.TransientRetries.Inc()
			continue
		}

		code := codeOf(err)
		if code.Transient() {
			c.metrics.TransientRetries.Inc()
			continue
		}
		if !c.IsConnected() {
			// Disconnect was called while this read was blocked.
			return "", ErrNotConnected
		}

		rerr := &ReadError{Code: code, Err: err}
		c.errs.Set(rerr.message())
		c.metrics.ReadErrors.Inc()
		c.log.Error().Err(err).Str("port", c.Port()).Stringer("code", code).Msg("serial read failed")
		c.disconnect()
		return "", rerr
	}
}
