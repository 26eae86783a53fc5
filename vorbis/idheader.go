package vorbis

import (
	"encoding/binary"
	"fmt"
)

// idHeaderSize is the fixed size of the identification header packet.
const idHeaderSize = 30

// IDHeader is the identification header: the first packet of a Vorbis
// stream, describing the audio format.
type IDHeader struct {
	Version        uint32
	Channels       uint8
	SampleRate     uint32
	BitrateMax     int32
	BitrateNominal int32
	BitrateMin     int32
	BlockSize0     int // short window size in samples
	BlockSize1     int // long window size in samples
}

// ParseIDHeader parses and checks an identification header packet, which
// is exactly 30 bytes long.
func ParseIDHeader(data []byte) (*IDHeader, error) {
	if err := checkCommon(data, PacketID); err != nil {
		return nil, err
	}
	switch {
	case len(data) < idHeaderSize:
		return nil, &HeaderError{Type: PacketID, Err: fmt.Errorf("%w: %d bytes", ErrPacketTooSmall, len(data))}
	case len(data) > idHeaderSize:
		return nil, &HeaderError{Type: PacketID, Err: fmt.Errorf("%w: %d bytes, want %d", ErrIDHeader, len(data), idHeaderSize)}
	}

	h := &IDHeader{
		Version:        binary.LittleEndian.Uint32(data[7:]),
		Channels:       data[11],
		SampleRate:     binary.LittleEndian.Uint32(data[12:]),
		BitrateMax:     int32(binary.LittleEndian.Uint32(data[16:])),
		BitrateNominal: int32(binary.LittleEndian.Uint32(data[20:])),
		BitrateMin:     int32(binary.LittleEndian.Uint32(data[24:])),
		BlockSize0:     1 << (data[28] & 0x0f),
		BlockSize1:     1 << (data[28] >> 4),
	}

	switch {
	case h.Version != 0:
		return nil, &HeaderError{Type: PacketID, Err: fmt.Errorf("%w: version %d", ErrIDHeader, h.Version)}
	case h.Channels == 0:
		return nil, &HeaderError{Type: PacketID, Err: fmt.Errorf("%w: zero channels", ErrIDHeader)}
	case h.SampleRate == 0:
		return nil, &HeaderError{Type: PacketID, Err: fmt.Errorf("%w: zero sample rate", ErrIDHeader)}
	case h.BlockSize0 < 64 || h.BlockSize1 >= 8192 || h.BlockSize0 > h.BlockSize1:
		return nil, &HeaderError{Type: PacketID, Err: fmt.Errorf("%w: block sizes %d/%d", ErrIDHeader, h.BlockSize0, h.BlockSize1)}
	}
	if data[29]&1 == 0 {
		return nil, &HeaderError{Type: PacketID, Err: ErrFramingBit}
	}
	return h, nil
}

// Encode serializes the identification header packet. Block sizes are
// stored as powers of two and are rounded down if they are not.
func (h *IDHeader) Encode() []byte {
	data := make([]byte, 0, idHeaderSize)
	data = append(data, PacketID)
	data = append(data, magic...)
	data = binary.LittleEndian.AppendUint32(data, h.Version)
	data = append(data, h.Channels)
	data = binary.LittleEndian.AppendUint32(data, h.SampleRate)
	data = binary.LittleEndian.AppendUint32(data, uint32(h.BitrateMax))
	data = binary.LittleEndian.AppendUint32(data, uint32(h.BitrateNominal))
	data = binary.LittleEndian.AppendUint32(data, uint32(h.BitrateMin))
	data = append(data, log2(h.BlockSize0)|log2(h.BlockSize1)<<4)
	data = append(data, 1)
	return data
}

func log2(n int) byte {
	var e byte
	for n > 1 && e < 15 {
		n >>= 1
		e++
	}
	return e
}
