package serialcom

// FrameSize is the capacity of each frame buffer.
const FrameSize = 128

// FrameBuffer assembles one line or record at a time. The cursor only moves
// forward through commit, so retrying a slot is simply not committing it.
type FrameBuffer struct {
	buf [FrameSize]byte
	n   int
}

// slot returns the one-byte window at the cursor, or nil when the buffer is full.
func (f *FrameBuffer) slot() []byte {
	if f.n >= len(f.buf) {
		return nil
	}
	return f.buf[f.n : f.n+1]
}

// commit accepts the byte in the current slot and returns it.
func (f *FrameBuffer) commit() byte {
	b := f.buf[f.n]
	f.n++
	return b
}

// fill copies p into the buffer followed by tail. It fails when the result
// would exceed the capacity.
func (f *FrameBuffer) fill(p string, tail byte) bool {
	if len(p)+1 > len(f.buf) {
		return false
	}
	f.n = copy(f.buf[:], p)
	f.buf[f.n] = tail
	f.n++
	return true
}

func (f *FrameBuffer) Len() int { return f.n }

func (f *FrameBuffer) Bytes() []byte { return f.buf[:f.n] }

// reset zero-fills the whole buffer, not just the used prefix.
func (f *FrameBuffer) reset() {
	clear(f.buf[:])
	f.n = 0
}

// IsZero reports whether the buffer is empty and every byte is zero.
func (f *FrameBuffer) IsZero() bool {
	if f.n != 0 {
		return false
	}
	for _, b := range f.buf {
		if b != 0 {
			return false
		}
	}
	return true
}
