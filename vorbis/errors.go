package vorbis

import (
	"errors"
	"fmt"
)

// Package-level errors for Vorbis header parsing.
var (
	// ErrPacketTooSmall indicates a packet cannot hold the type byte, the
	// "vorbis" magic and a framing byte.
	ErrPacketTooSmall = errors.New("vorbis: packet too small for a header")

	// ErrHeaderType indicates the packet type byte is not the expected one.
	ErrHeaderType = errors.New("vorbis: unexpected header type")

	// ErrMagic indicates the packet does not contain "vorbis" after the type.
	ErrMagic = errors.New("vorbis: missing \"vorbis\" signature")

	// ErrFramingBit indicates the header framing bit is not set correctly.
	ErrFramingBit = errors.New("vorbis: bad framing bit")

	// ErrGranule indicates a header packet on a page whose granule
	// position is neither 0 nor -1.
	ErrGranule = errors.New("vorbis: header with non-zero granule position")

	// ErrCommentContinued indicates the comment header does not start a
	// fresh page.
	ErrCommentContinued = errors.New("vorbis: comment header must start a fresh page")

	// ErrSetupNotFinal indicates the setup header does not finish its page.
	ErrSetupNotFinal = errors.New("vorbis: setup header must finish on a page boundary")

	// ErrIDHeader indicates the identification header values are invalid.
	ErrIDHeader = errors.New("vorbis: invalid identification header")

	// ErrCommentTruncated indicates the comment structure runs past the
	// end of the packet.
	ErrCommentTruncated = errors.New("vorbis: comment header is incomplete")

	// ErrInvalidUTF8 indicates a vendor string or comment is not UTF-8.
	ErrInvalidUTF8 = errors.New("vorbis: invalid UTF-8 in comment header")

	// ErrInvalidField indicates a comment header that cannot be written
	// and read back unchanged: a field name containing '=' or a string
	// that is not UTF-8.
	ErrInvalidField = errors.New("vorbis: invalid comment field")

	// ErrMissingHeaders indicates the stream ended before the three
	// required header packets were read. This is usually caused by reading
	// something that is not an Ogg Vorbis stream.
	ErrMissingHeaders = errors.New("vorbis: incomplete stream")

	// ErrSetupDecode indicates a full decode of the header packets failed.
	ErrSetupDecode = errors.New("vorbis: headers rejected by decoder")
)

// HeaderError reports which header packet broke which rule.
type HeaderError struct {
	Type byte
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("vorbis: %s header: %v", headerName(e.Type), e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

func headerName(t byte) string {
	switch t {
	case PacketID:
		return "identification"
	case PacketComment:
		return "comment"
	case PacketSetup:
		return "setup"
	}
	return fmt.Sprintf("type %d", t)
}
