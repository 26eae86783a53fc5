// Package bufseekio provides a buffered io.ReadSeeker.
package bufseekio

import (
	"errors"
	"io"
)

const (
	defaultBufSize           = 4096
	maxConsecutiveEmptyReads = 100
)

var errNegativeRead = errors.New("bufseekio: reader returned negative count from Read")

// ReadSeeker adds buffering to an io.ReadSeeker. Seeking to a position
// inside the buffered window does not touch the underlying reader.
type ReadSeeker struct {
	buf  []byte
	pos  int64 // offset of buf[0] in the underlying reader
	r, w int   // read and write positions within buf
	rd   io.ReadSeeker
	err  error
}

// NewReadSeeker returns a ReadSeeker with a default buffer size.
func NewReadSeeker(rd io.ReadSeeker) *ReadSeeker {
	return NewReadSeekerSize(rd, defaultBufSize)
}

// NewReadSeekerSize returns a ReadSeeker whose buffer has at least the given
// size. The first Read starts at the current offset of rd.
func NewReadSeekerSize(rd io.ReadSeeker, size int) *ReadSeeker {
	if size < 16 {
		size = 16
	}
	b := &ReadSeeker{buf: make([]byte, size), rd: rd}
	b.pos, b.err = rd.Seek(0, io.SeekCurrent)
	return b
}

func (b *ReadSeeker) readErr() error {
	err := b.err
	b.err = nil
	return err
}

// fill reads a new chunk into the empty buffer. A reader that keeps
// returning no data and no error fails with io.ErrNoProgress.
func (b *ReadSeeker) fill() {
	b.pos += int64(b.w)
	b.r, b.w = 0, 0
	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := b.rd.Read(b.buf)
		if n < 0 {
			panic(errNegativeRead)
		}
		b.w = n
		if err != nil {
			b.err = err
			return
		}
		if n > 0 {
			return
		}
	}
	b.err = io.ErrNoProgress
}

// Read reads data into p.
func (b *ReadSeeker) Read(p []byte) (int, error) {
	if len(p) == 0 {
		if b.r < b.w {
			return 0, nil
		}
		return 0, b.readErr()
	}
	if b.r == b.w {
		if b.err != nil {
			return 0, b.readErr()
		}
		if len(p) >= len(b.buf) {
			// Large read into p directly.
			b.pos += int64(b.w)
			b.r, b.w = 0, 0
			n, err := b.rd.Read(p)
			if n < 0 {
				panic(errNegativeRead)
			}
			b.pos += int64(n)
			return n, err
		}
		b.fill()
		if b.r == b.w {
			return 0, b.readErr()
		}
	}
	n := copy(p, b.buf[b.r:b.w])
	b.r += n
	return n, nil
}

// ReadByte reads a single byte.
func (b *ReadSeeker) ReadByte() (byte, error) {
	for b.r == b.w {
		if b.err != nil {
			return 0, b.readErr()
		}
		b.fill()
	}
	c := b.buf[b.r]
	b.r++
	return c, nil
}

// Seek sets the offset for the next Read. A target inside the buffered
// window is served from the buffer.
func (b *ReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + int64(b.r) + offset
	default:
		b.r, b.w = 0, 0
		b.err = nil
		n, err := b.rd.Seek(offset, whence)
		b.pos = n
		return n, err
	}

	if abs >= b.pos && abs <= b.pos+int64(b.w) {
		b.r = int(abs - b.pos)
		return abs, nil
	}

	n, err := b.rd.Seek(abs, io.SeekStart)
	if err != nil {
		return n, err
	}
	b.pos = n
	b.r, b.w = 0, 0
	b.err = nil
	return n, nil
}
