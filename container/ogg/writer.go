package ogg

import (
	"io"
)

// Writer writes the pages of one logical stream.
// It stamps every page with the stream serial number and consecutive
// sequence numbers before encoding it.
type Writer struct {
	w        io.Writer
	serial   uint32
	sequence uint32
	written  int64
}

// NewWriter creates a page writer for the logical stream with the given
// serial number. firstSequence is the sequence number of the first page
// written.
func NewWriter(w io.Writer, serial, firstSequence uint32) *Writer {
	return &Writer{w: w, serial: serial, sequence: firstSequence}
}

// WritePage stamps p and writes it.
// The continuation flag already on p is kept; flags adds the first/last
// flags (FlagFirst, FlagLast). Header pages use granule position 0.
func (ow *Writer) WritePage(p *Page, flags byte, granulePos int64) error {
	p.Version = 0
	p.Serial = ow.serial
	p.Sequence = ow.sequence
	p.GranulePos = granulePos
	p.Flags = p.Flags&FlagContinued | flags&^FlagContinued

	n, err := p.WriteTo(ow.w)
	ow.written += n
	if err != nil {
		return err
	}
	ow.sequence++
	return nil
}

// WritePackets lays packets out with Paginate and writes the pages.
// flags is applied to every page. When the packets span several pages and
// flags contains FlagFirst, only the first page is flagged first; FlagLast
// likewise goes to the final page only.
func (ow *Writer) WritePackets(packets [][]byte, maxSegments int, flags byte, granulePos int64) error {
	pages := Paginate(packets, maxSegments)
	for i, p := range pages {
		f := flags
		if i > 0 {
			f &^= FlagFirst
		}
		if i < len(pages)-1 {
			f &^= FlagLast
		}
		if err := ow.WritePage(p, f, granulePos); err != nil {
			return err
		}
	}
	return nil
}

// Serial returns the bitstream serial number.
func (ow *Writer) Serial() uint32 {
	return ow.serial
}

// Sequence returns the sequence number of the next page to be written.
func (ow *Writer) Sequence() uint32 {
	return ow.sequence
}

// BytesWritten returns the number of bytes written so far.
func (ow *Writer) BytesWritten() int64 {
	return ow.written
}
