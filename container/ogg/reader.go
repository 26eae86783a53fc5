package ogg

import (
	"errors"
	"fmt"
	"io"
)

// PageReader is a source of Ogg pages.
// Next returns io.EOF once there are no more pages.
type PageReader interface {
	Next() (*Page, error)
}

// PhysicalReader reads successive pages from a byte stream.
// Pages may belong to different logical streams. It does not tolerate any
// corruption; wrap the source with a TolerantReader for error recovery.
type PhysicalReader struct {
	r        io.Reader
	captured bool  // positioned directly after "OggS"
	pos      int64 // source offset of the next unread byte
	header   [HeaderSize]byte
	one      [1]byte
}

// NewPhysicalReader creates a page reader over r.
// If r is an io.Seeker, page offsets are absolute positions in r; otherwise
// they count from the first byte read.
func NewPhysicalReader(r io.Reader) *PhysicalReader {
	pr := &PhysicalReader{r: r}
	if s, ok := r.(io.Seeker); ok {
		if off, err := s.Seek(0, io.SeekCurrent); err == nil {
			pr.pos = off
		}
	}
	return pr
}

// SetCaptured tells the reader whether the capture pattern of the next page
// has already been consumed from the source.
func (pr *PhysicalReader) SetCaptured(captured bool) {
	pr.captured = captured
}

// Offset returns the source offset of the next unread byte.
func (pr *PhysicalReader) Offset() int64 {
	return pr.pos
}

// Next reads one page.
//
// Returns io.EOF only if the source is exhausted exactly at a page start.
// Returns ErrTruncated if the source ends inside a page, ErrInvalidHeader if
// the header is malformed and ErrChecksumMismatch if the page was read
// completely but its checksum is wrong. These three are recoverable (see
// IsRecoverable). Other errors come from the source unchanged.
func (pr *PhysicalReader) Next() (*Page, error) {
	captured := pr.captured
	pr.captured = false

	start := pr.pos
	hdr := pr.header[:]
	if captured {
		hdr = hdr[len(oggMagic):]
		start -= int64(len(oggMagic))
	}

	if err := pr.readFull(hdr); err != nil {
		if err == io.EOF && !captured {
			return nil, io.EOF
		}
		return nil, short(start, "header", err)
	}

	page := &Page{Offset: start}
	nsegs, err := page.DecodeHeader(hdr)
	if err != nil {
		return nil, withOffset(start, err)
	}

	table := make([]byte, nsegs)
	if err := pr.readFull(table); err != nil {
		return nil, short(start, "segment table", err)
	}
	contentSize := page.ParseLacing(table)

	page.Content = make([]byte, contentSize)
	if err := pr.readFull(page.Content); err != nil {
		return nil, short(start, "content", err)
	}

	crc := uint32(0)
	if captured {
		crc = oggCRCUpdate(crc, []byte(oggMagic))
	}
	zeroed := checksumOffset
	if captured {
		zeroed -= len(oggMagic)
	}
	hdr[zeroed], hdr[zeroed+1], hdr[zeroed+2], hdr[zeroed+3] = 0, 0, 0, 0
	crc = oggCRCUpdate(crc, hdr)
	crc = oggCRCUpdate(crc, table)
	crc = oggCRCUpdate(crc, page.Content)

	if crc != page.Checksum {
		return nil, withOffset(start, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x",
			ErrChecksumMismatch, page.Checksum, crc))
	}
	return page, nil
}

// readFull reads exactly len(b) bytes. It returns io.EOF if nothing was
// read and io.ErrUnexpectedEOF on a short read.
func (pr *PhysicalReader) readFull(b []byte) error {
	n, err := io.ReadFull(pr.r, b)
	pr.pos += int64(n)
	return err
}

// readByte reads a single byte from the source.
func (pr *PhysicalReader) readByte() (byte, error) {
	if br, ok := pr.r.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if err == nil {
			pr.pos++
		}
		return b, err
	}
	if err := pr.readFull(pr.one[:]); err != nil {
		return 0, err
	}
	return pr.one[0], nil
}

// short maps a short read at the page starting at offset to ErrTruncated.
// Other errors from the source pass through unchanged.
func short(offset int64, stage string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return withOffset(offset, fmt.Errorf("%w: partial %s: %w", ErrTruncated, stage, io.ErrUnexpectedEOF))
	}
	return err
}
