package serialcom

import (
	"context"
	"fmt"
)

// WriteLine sends line followed by '\n' in a single write and verifies the
// byte count the driver accepted.
//
// An IO_PENDING result is accepted as success without waiting for the bytes
// to drain.
func (c *Conn) WriteLine(ctx context.Context, line string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.writeLine(ctx, line)
}

// Exec writes line and reads the reply up to and including terminator. No
// other operation can run between the write and the read.
func (c *Conn) Exec(ctx context.Context, line string, terminator byte) (string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.writeLine(ctx, line); err != nil {
		return "", err
	}
	return c.readLocked(ctx, untilTerminator(terminator))
}

func (c *Conn) writeLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h := c.current()
	if h == nil {
		c.errs.Set(MsgNotConnected)
		return ErrNotConnected
	}

	buf := &c.writeBuf
	defer buf.reset()

	if !buf.fill(line, '\n') {
		c.errs.Set(MsgLineTooLong)
		return fmt.Errorf("%w: %d bytes, capacity %d", ErrLineTooLong, len(line)+1, FrameSize)
	}

	c.metrics.WriteOperations.Inc()
	toWrite := buf.Len()
	n, err := h.Write(buf.Bytes())
	if err != nil {
		code := codeOf(err)
		if code == CodeIOPending {
			c.metrics.PendingWrites.Inc()
			c.log.Warn().Str("port", c.Port()).Int("bytes", toWrite).Msg("write pending, not waiting for completion")
			return nil
		}
		if !c.IsConnected() {
			return ErrNotConnected
		}
		return c.failWrite(&WriteError{Code: code, Err: err})
	}
	if n != toWrite {
		return c.failWrite(&WriteError{Missing: toWrite - n})
	}

	c.metrics.SuccessfulWrites.Inc()
	c.metrics.BytesWritten.Add(int64(n))
	return nil
}

func (c *Conn) failWrite(werr *WriteError) error {
	c.errs.Set(werr.message())
	if werr.Missing > 0 {
		c.metrics.IncompleteWrites.Inc()
	} else {
		c.metrics.WriteErrors.Inc()
	}
	c.log.Error().Err(werr).Str("port", c.Port()).Msg("serial write failed")
	c.disconnect()
	return werr
}

// Write is reserved for a chunked write that resumes short writes. It does
// nothing yet.
func (c *Conn) Write(line string, bytesToWrite int) error {
	return ErrNotImplemented
}
