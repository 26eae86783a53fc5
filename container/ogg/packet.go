package ogg

import (
	"fmt"
	"io"
)

// Packet is a codec-level unit of data made of one or more segments,
// possibly drawn from consecutive pages.
//
// A packet always has at least one segment, though that segment may be
// empty: "A packet size may well consist only of the trailing fractional
// segment, and a fractional segment may be zero length."
type Packet struct {
	Segments []Segment
	data     []byte
}

// Bytes returns the packet data: the concatenation of its segments.
func (p *Packet) Bytes() []byte {
	if p.data == nil {
		p.data = make([]byte, 0, p.Len())
		for _, s := range p.Segments {
			p.data = append(p.data, s.Bytes()...)
		}
	}
	return p.data
}

// Len returns the packet size in bytes.
func (p *Packet) Len() int {
	n := 0
	for _, s := range p.Segments {
		n += s.Size
	}
	return n
}

// StartPage returns the page holding the first segment of the packet.
func (p *Packet) StartPage() *Page {
	return p.Segments[0].Page
}

// EndPage returns the page the packet finishes on. Its granule position
// counts this packet.
func (p *Packet) EndPage() *Page {
	return p.LastSegment().Page
}

// LastSegment returns the final segment of the packet.
func (p *Packet) LastSegment() Segment {
	return p.Segments[len(p.Segments)-1]
}

// FinishesOnPageBoundary reports whether the packet ends with the last
// segment of its ending page, so that the next page starts a new packet.
func (p *Packet) FinishesOnPageBoundary() bool {
	last := p.LastSegment()
	return last.Index == len(last.Page.Lacing)-1
}

// PacketReader reassembles packets from the segments of a logical stream.
type PacketReader struct {
	src      PageReader
	segs     []Segment
	idx      int
	prev     Segment
	havePrev bool
}

// NewPacketReader creates a packet reader over a single logical stream.
func NewPacketReader(src PageReader) *PacketReader {
	return &PacketReader{src: src}
}

// Next returns the next complete packet.
//
// Returns io.EOF when the pages run out; an unfinished trailing packet is
// dropped. Returns ErrFraming if a page that should continue a packet is
// not flagged as a continuation, or if the first page of the stream is.
func (pr *PacketReader) Next() (*Packet, error) {
	pkt := &Packet{Segments: make([]Segment, 0, 4)}
	for {
		seg, err := pr.nextSegment()
		if err != nil {
			return nil, err
		}

		if pr.havePrev {
			if pr.prev.Page != seg.Page && !pr.prev.IsLast() && !seg.Page.IsContinued() {
				return nil, withOffset(seg.Page.Offset, fmt.Errorf(
					"%w: page %d does not continue the unfinished packet", ErrFraming, seg.Page.Sequence))
			}
		} else if seg.Page.IsContinued() {
			return nil, withOffset(seg.Page.Offset, fmt.Errorf(
				"%w: first page %d is marked as a continuation", ErrFraming, seg.Page.Sequence))
		}

		pr.prev = seg
		pr.havePrev = true
		pkt.Segments = append(pkt.Segments, seg)
		if seg.IsLast() {
			return pkt, nil
		}
	}
}

// nextSegment returns the next segment, reading pages as needed.
// Pages without segments are passed over.
func (pr *PacketReader) nextSegment() (Segment, error) {
	for pr.idx >= len(pr.segs) {
		page, err := pr.src.Next()
		if err != nil {
			if err == io.EOF {
				return Segment{}, io.EOF
			}
			return Segment{}, err
		}
		pr.segs = page.Segments()
		pr.idx = 0
	}
	seg := pr.segs[pr.idx]
	pr.idx++
	return seg, nil
}
