package vorbis

import (
	"fmt"
	"math/bits"

	"github.com/thesyncim/vorbiscomment/container/ogg"
)

// Header packet types.
const (
	PacketID      = 1
	PacketComment = 3
	PacketSetup   = 5
)

// magic follows the type byte of every header packet.
const magic = "vorbis"

// commonHeaderSize is the type byte plus the "vorbis" magic.
const commonHeaderSize = 1 + len(magic)

// ValidateHeader checks that p is a well formed header packet of type typ.
//
// Every header must carry the type byte, "vorbis" and a framing bit, and
// must sit on a page with granule position 0 or -1. The comment header must
// start a fresh page and the setup header must finish its page.
//
// For the identification and comment headers the framing byte must be
// exactly 1. The comment framing byte is the one right after the comment
// structure, since padding may follow it. The setup header's framing bit
// position depends on bit-level parsing of the whole setup packet, so only
// the approximation "exactly one bit of the last byte is set" is checked
// here; CheckHeaders performs a full decode.
func ValidateHeader(p *ogg.Packet, typ byte) error {
	data := p.Bytes()
	if len(data) < commonHeaderSize+1 {
		return &HeaderError{Type: typ, Err: fmt.Errorf("%w: %d bytes", ErrPacketTooSmall, len(data))}
	}
	if err := checkCommon(data, typ); err != nil {
		return err
	}

	framing := data[len(data)-1]
	if typ == PacketComment {
		switch end := CommentStructureLength(data); {
		case end == len(data):
			return &HeaderError{Type: typ, Err: fmt.Errorf("%w: missing after comment list", ErrFramingBit)}
		case end >= 0:
			framing = data[end]
		}
	}
	if typ == PacketSetup {
		if bits.OnesCount8(framing) != 1 {
			return &HeaderError{Type: typ, Err: fmt.Errorf("%w: last byte 0x%02x", ErrFramingBit, framing)}
		}
	} else if framing != 1 {
		return &HeaderError{Type: typ, Err: fmt.Errorf("%w: framing byte 0x%02x", ErrFramingBit, framing)}
	}

	start := p.StartPage()
	if start.GranulePos != 0 && start.GranulePos != -1 {
		return &HeaderError{Type: typ, Err: fmt.Errorf("%w: %d", ErrGranule, start.GranulePos)}
	}
	if typ == PacketComment && start.IsContinued() {
		return &HeaderError{Type: typ, Err: ErrCommentContinued}
	}
	if typ == PacketSetup && !p.FinishesOnPageBoundary() {
		return &HeaderError{Type: typ, Err: ErrSetupNotFinal}
	}
	return nil
}

// checkCommon verifies the type byte and the "vorbis" magic.
func checkCommon(data []byte, typ byte) error {
	if len(data) < commonHeaderSize {
		return &HeaderError{Type: typ, Err: fmt.Errorf("%w: %d bytes", ErrPacketTooSmall, len(data))}
	}
	if data[0] != typ {
		return &HeaderError{Type: typ, Err: fmt.Errorf("%w: got %d, expected %d", ErrHeaderType, data[0], typ)}
	}
	if string(data[1:commonHeaderSize]) != magic {
		return &HeaderError{Type: typ, Err: ErrMagic}
	}
	return nil
}

// IsHeader reports whether data looks like a Vorbis header packet of any
// type.
func IsHeader(data []byte) bool {
	if len(data) < commonHeaderSize {
		return false
	}
	switch data[0] {
	case PacketID, PacketComment, PacketSetup:
		return string(data[1:commonHeaderSize]) == magic
	}
	return false
}
