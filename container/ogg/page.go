package ogg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Page header flag constants.
const (
	// FlagContinued indicates this page starts with data from a packet
	// that began on a previous page.
	FlagContinued = 0x01

	// FlagFirst (beginning of stream) marks the first page of a logical
	// bitstream.
	FlagFirst = 0x02

	// FlagLast (end of stream) marks the last page of a logical bitstream.
	FlagLast = 0x04
)

// Page size constants.
const (
	// HeaderSize is the fixed portion of the page header, including the
	// capture pattern and excluding the segment table.
	HeaderSize = 27

	// MaxSegmentSize is the largest lacing value. A segment of this size
	// never ends a packet.
	MaxSegmentSize = 255

	// MaxPageSize is the largest possible encoded page: the fixed header,
	// 255 lacing values and 255 full segments.
	MaxPageSize = HeaderSize + 255 + 255*255

	// checksumOffset is the position of the checksum within the header.
	checksumOffset = 22

	// oggMagic is the capture pattern that identifies an Ogg page.
	oggMagic = "OggS"
)

// Page represents a single Ogg page.
type Page struct {
	// Version is the stream structure version (always 0).
	Version byte

	// Flags contains the header type flags (continued, first, last).
	Flags byte

	// GranulePos is the codec-defined absolute position at the end of the
	// page. -1 means no packet finishes on this page.
	GranulePos int64

	// Serial identifies the logical bitstream.
	Serial uint32

	// Sequence is the page counter within the logical bitstream.
	Sequence uint32

	// Checksum is the stored CRC as read, or the value computed by the
	// last Encode.
	Checksum uint32

	// Lacing is the segment table. Each entry is a segment size (0-255).
	Lacing []byte

	// Content contains the concatenated segment data.
	Content []byte

	// Offset is the byte position of the page in the source it was read
	// from, or -1 when unknown.
	Offset int64
}

// Segment is a chunk of packet data stored on a page.
// It refers to its page and is only meaningful while the page is.
type Segment struct {
	Page   *Page
	Index  int // position in the page's segment table
	Offset int // byte offset within Page.Content
	Size   int
}

// IsLast reports whether the segment ends its packet (size < 255).
func (s Segment) IsLast() bool {
	return s.Size < MaxSegmentSize
}

// Bytes returns the segment data. The slice aliases the page content.
func (s Segment) Bytes() []byte {
	return s.Page.Content[s.Offset : s.Offset+s.Size]
}

// IsFirst returns true if this is the first page of a logical stream.
func (p *Page) IsFirst() bool {
	return p.Flags&FlagFirst != 0
}

// IsLast returns true if this is the last page of a logical stream.
func (p *Page) IsLast() bool {
	return p.Flags&FlagLast != 0
}

// IsContinued returns true if this page continues a packet from a previous page.
func (p *Page) IsContinued() bool {
	return p.Flags&FlagContinued != 0
}

// Segments returns the segment descriptors of the page in order.
func (p *Page) Segments() []Segment {
	segs := make([]Segment, len(p.Lacing))
	offset := 0
	for i, l := range p.Lacing {
		segs[i] = Segment{Page: p, Index: i, Offset: offset, Size: int(l)}
		offset += int(l)
	}
	return segs
}

// Size returns the encoded size of the page: header, segment table and content.
func (p *Page) Size() int {
	return HeaderSize + len(p.Lacing) + len(p.Content)
}

// DecodeHeader populates the fixed header fields from b and returns the
// number of segments in the segment table that follows.
//
// b is either the full 27-byte header starting with "OggS", or the 23 bytes
// that follow the capture pattern when the caller already consumed it.
// Returns ErrInvalidHeader if the capture pattern or version is wrong.
func (p *Page) DecodeHeader(b []byte) (int, error) {
	switch len(b) {
	case HeaderSize:
		if string(b[0:4]) != oggMagic {
			return 0, fmt.Errorf("%w: missing capture pattern", ErrInvalidHeader)
		}
		b = b[4:]
	case HeaderSize - len(oggMagic):
	default:
		return 0, fmt.Errorf("%w: header is %d bytes", ErrInvalidHeader, len(b))
	}

	if b[0] != 0 {
		return 0, fmt.Errorf("%w: stream structure version %d", ErrInvalidHeader, b[0])
	}
	p.Version = b[0]
	p.Flags = b[1]
	p.GranulePos = int64(binary.LittleEndian.Uint64(b[2:10]))
	p.Serial = binary.LittleEndian.Uint32(b[10:14])
	p.Sequence = binary.LittleEndian.Uint32(b[14:18])
	p.Checksum = binary.LittleEndian.Uint32(b[18:22])
	return int(b[22]), nil
}

// ParseLacing stores the segment table and returns the content size it
// describes.
func (p *Page) ParseLacing(table []byte) int {
	p.Lacing = make([]byte, len(table))
	copy(p.Lacing, table)
	size := 0
	for _, l := range table {
		size += int(l)
	}
	return size
}

// ContentSize returns the content size described by the segment table.
func (p *Page) ContentSize() int {
	size := 0
	for _, l := range p.Lacing {
		size += int(l)
	}
	return size
}

// headerBytes encodes the fixed header with the given checksum.
func (p *Page) headerBytes(dst []byte, checksum uint32) {
	copy(dst[0:4], oggMagic)
	dst[4] = p.Version
	dst[5] = p.Flags
	binary.LittleEndian.PutUint64(dst[6:14], uint64(p.GranulePos))
	binary.LittleEndian.PutUint32(dst[14:18], p.Serial)
	binary.LittleEndian.PutUint32(dst[18:22], p.Sequence)
	binary.LittleEndian.PutUint32(dst[22:26], checksum)
	dst[26] = byte(len(p.Lacing))
}

// Encode serializes the page and updates p.Checksum.
// The output format is:
//   - 27-byte header
//   - Segment table
//   - Content
//
// The checksum is computed over the whole page with the checksum field
// zeroed. Returns ErrInvalidSegmentation if the segment table does not
// describe the content.
func (p *Page) Encode() ([]byte, error) {
	if len(p.Lacing) > 255 {
		return nil, fmt.Errorf("%w: %d segments", ErrInvalidSegmentation, len(p.Lacing))
	}
	if n := p.ContentSize(); n != len(p.Content) {
		return nil, fmt.Errorf("%w: segments describe %d bytes, content has %d",
			ErrInvalidSegmentation, n, len(p.Content))
	}

	headerSize := HeaderSize + len(p.Lacing)
	data := make([]byte, headerSize+len(p.Content))
	p.headerBytes(data, 0)
	copy(data[HeaderSize:], p.Lacing)
	copy(data[headerSize:], p.Content)

	p.Checksum = oggCRC(data)
	binary.LittleEndian.PutUint32(data[checksumOffset:checksumOffset+4], p.Checksum)
	return data, nil
}

// WriteTo encodes the page and writes it to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	data, err := p.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Equal compares the header fields, segment table and content of two pages.
// The source offset is never compared.
func (p *Page) Equal(q *Page, ignoreChecksum, ignoreSequence bool) bool {
	return p.Version == q.Version &&
		p.Flags == q.Flags &&
		p.GranulePos == q.GranulePos &&
		p.Serial == q.Serial &&
		(ignoreSequence || p.Sequence == q.Sequence) &&
		(ignoreChecksum || p.Checksum == q.Checksum) &&
		bytes.Equal(p.Lacing, q.Lacing) &&
		bytes.Equal(p.Content, q.Content)
}

// BuildSegmentTable creates the lacing values for a single packet of the
// given length. Packets larger than 255 bytes span multiple segments; a
// packet whose length is a multiple of 255 is terminated by a zero-length
// segment.
func BuildSegmentTable(packetLen int) []byte {
	full := packetLen / MaxSegmentSize
	segments := make([]byte, full+1)
	for i := 0; i < full; i++ {
		segments[i] = MaxSegmentSize
	}
	segments[full] = byte(packetLen % MaxSegmentSize)
	return segments
}
