// Package splice replaces a byte range of an open file with data of a
// different length, shifting the rest of the file in fixed-size chunks.
//
// The file is modified in place and the operation is not atomic: an I/O
// failure part way through leaves the file inconsistent.
package splice

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the copy buffer size used when none is given.
const DefaultChunkSize = 512 * 1024

var (
	// ErrInvalidRange indicates from/to are not within the file.
	ErrInvalidRange = errors.New("splice: invalid file range")

	// ErrInvalidSlice indicates the replacement slice is not within its buffer.
	ErrInvalidSlice = errors.New("splice: invalid buffer slice")
)

// File is a random access file that can be shortened. *os.File satisfies it.
type File interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
}

// Splicer moves file data with a buffer of a fixed size.
type Splicer struct {
	buf []byte
}

// New returns a Splicer copying chunkSize bytes at a time
// (DefaultChunkSize if chunkSize <= 0).
func New(chunkSize int) *Splicer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Splicer{buf: make([]byte, chunkSize)}
}

// Replace replaces the bytes [from, to) of f with data.
func (s *Splicer) Replace(f File, from, to int64, data []byte) error {
	return s.ReplaceSlice(f, from, to, data, 0, len(data))
}

// ReplaceSlice replaces the bytes [from, to) of f with buf[off:off+n].
// Arguments are checked before the file is touched.
func (s *Splicer) ReplaceSlice(f File, from, to int64, buf []byte, off, n int) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	if from < 0 || from > to || to > size {
		return fmt.Errorf("%w: [%d, %d) in %d bytes", ErrInvalidRange, from, to, size)
	}
	if off < 0 || n < 0 || off > len(buf) || n > len(buf)-off {
		return fmt.Errorf("%w: [%d, %d+%d) of %d bytes", ErrInvalidSlice, off, off, n, len(buf))
	}

	excess := int64(n) - (to - from)
	switch {
	case excess > 0:
		if err := s.moveBackward(f, to, size, excess); err != nil {
			return err
		}
	case excess < 0:
		if err := s.moveForward(f, to, size, excess); err != nil {
			return err
		}
		if err := f.Truncate(size + excess); err != nil {
			return err
		}
	}

	if n > 0 {
		if _, err := f.WriteAt(buf[off:off+n], from); err != nil {
			return err
		}
	}
	return nil
}

// moveBackward shifts [start, end) by excess > 0 bytes, starting with the
// chunk at end of file so no chunk is overwritten before it is read.
func (s *Splicer) moveBackward(f File, start, end, excess int64) error {
	for pos := end; pos > start; {
		size := int64(len(s.buf))
		if pos-start < size {
			size = pos - start
		}
		pos -= size
		if err := s.copyChunk(f, pos, pos+excess, int(size)); err != nil {
			return err
		}
	}
	return nil
}

// moveForward shifts [start, end) by excess < 0 bytes, starting with the
// chunk at start.
func (s *Splicer) moveForward(f File, start, end, excess int64) error {
	for pos := start; pos < end; {
		size := int64(len(s.buf))
		if end-pos < size {
			size = end - pos
		}
		if err := s.copyChunk(f, pos, pos+excess, int(size)); err != nil {
			return err
		}
		pos += size
	}
	return nil
}

func (s *Splicer) copyChunk(f File, src, dst int64, n int) error {
	chunk := s.buf[:n]
	if _, err := f.ReadAt(chunk, src); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	_, err := f.WriteAt(chunk, dst)
	return err
}
