package vorbis

import (
	"fmt"

	"github.com/jfreymuth/vorbis"
)

// CheckHeaders runs the three header packets through a full Vorbis decoder.
//
// ValidateHeader only approximates the setup header framing bit; the decoder
// parses the codebooks, floors, residues and modes, so a setup packet that
// passes here is structurally complete.
func CheckHeaders(id, comment, setup []byte) error {
	var dec vorbis.Decoder
	for _, h := range [][]byte{id, comment, setup} {
		if err := dec.ReadHeader(h); err != nil {
			return fmt.Errorf("%w: %v", ErrSetupDecode, err)
		}
	}
	if !dec.HeadersRead() {
		return fmt.Errorf("%w: decoder still expects header packets", ErrSetupDecode)
	}
	return nil
}
