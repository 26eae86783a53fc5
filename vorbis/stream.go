package vorbis

import (
	"fmt"
	"io"

	"github.com/thesyncim/vorbiscomment/container/ogg"
)

// PacketStream reads the packets of a Vorbis logical stream, validating the
// three header packets as they go by.
type PacketStream struct {
	src     *ogg.PacketReader
	n       int
	id      *IDHeader
	idPkt   *ogg.Packet
	comment *ogg.Packet
	setup   *ogg.Packet
}

// NewPacketStream creates a packet stream over pr.
func NewPacketStream(pr *ogg.PacketReader) *PacketStream {
	return &PacketStream{src: pr}
}

// Next returns the next packet. The first three packets must be the
// identification, comment and setup headers, in that order.
// Returns ErrMissingHeaders if the stream ends before all three were read.
func (s *PacketStream) Next() (*ogg.Packet, error) {
	p, err := s.src.Next()
	if err == io.EOF {
		if s.n < 3 {
			return nil, fmt.Errorf("%w: missing %d of the 3 required header packets", ErrMissingHeaders, 3-s.n)
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	switch s.n {
	case 0:
		if err := ValidateHeader(p, PacketID); err != nil {
			return nil, err
		}
		id, err := ParseIDHeader(p.Bytes())
		if err != nil {
			return nil, err
		}
		s.id = id
		s.idPkt = p
	case 1:
		if err := ValidateHeader(p, PacketComment); err != nil {
			return nil, err
		}
		s.comment = p
	case 2:
		if err := ValidateHeader(p, PacketSetup); err != nil {
			return nil, err
		}
		s.setup = p
	}
	s.n++
	return p, nil
}

// ReadHeaders reads up to and including the setup header.
func (s *PacketStream) ReadHeaders() error {
	for s.n < 3 {
		if _, err := s.Next(); err != nil {
			return err
		}
	}
	return nil
}

// IDHeader returns the identification header, reading it if necessary.
func (s *PacketStream) IDHeader() (*IDHeader, error) {
	for s.n < 1 {
		if _, err := s.Next(); err != nil {
			return nil, err
		}
	}
	return s.id, nil
}

// IDPacket returns the raw identification header packet.
func (s *PacketStream) IDPacket() (*ogg.Packet, error) {
	if _, err := s.IDHeader(); err != nil {
		return nil, err
	}
	return s.idPkt, nil
}

// CommentPacket returns the raw comment header packet, reading up to it if
// necessary.
func (s *PacketStream) CommentPacket() (*ogg.Packet, error) {
	for s.n < 2 {
		if _, err := s.Next(); err != nil {
			return nil, err
		}
	}
	return s.comment, nil
}

// CommentHeader returns the decoded comment header.
func (s *PacketStream) CommentHeader() (*CommentHeader, error) {
	p, err := s.CommentPacket()
	if err != nil {
		return nil, err
	}
	return ParseCommentHeader(p.Bytes())
}

// SetupPacket returns the raw setup header packet, reading up to it if
// necessary.
func (s *PacketStream) SetupPacket() (*ogg.Packet, error) {
	if err := s.ReadHeaders(); err != nil {
		return nil, err
	}
	return s.setup, nil
}
