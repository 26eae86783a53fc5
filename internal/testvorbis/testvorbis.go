// Package testvorbis builds synthetic Ogg Vorbis files for tests.
//
// The header packets are structurally valid but the setup packet is filler,
// so the files parse but cannot be decoded.
package testvorbis

import (
	"bytes"
	"encoding/binary"

	"github.com/thesyncim/vorbiscomment/container/ogg"
)

// Stream describes a synthetic file. Zero fields take the defaults below.
type Stream struct {
	Serial   uint32
	Vendor   string
	Comments []string // "NAME=value" entries

	// Padding is appended after the comment framing byte.
	Padding int

	// SetupSize is the setup packet length (default 300).
	SetupSize int

	// DecodableSetup uses DecodableSetupPacket instead of filler, so the
	// headers pass a full decoder. SetupSize is ignored.
	DecodableSetup bool

	// HeaderSegments caps the segments per comment/setup page
	// (default ogg.NominalSegments).
	HeaderSegments int

	// AudioPages is the number of audio pages (default 3).
	AudioPages int

	// AudioPacketSize and PacketsPerPage shape the audio pages
	// (defaults 100 and 4).
	AudioPacketSize int
	PacketsPerPage  int
}

func (s Stream) withDefaults() Stream {
	if s.SetupSize == 0 {
		s.SetupSize = 300
	}
	if s.HeaderSegments == 0 {
		s.HeaderSegments = ogg.NominalSegments
	}
	if s.AudioPages == 0 {
		s.AudioPages = 3
	}
	if s.AudioPacketSize == 0 {
		s.AudioPacketSize = 100
	}
	if s.PacketsPerPage == 0 {
		s.PacketsPerPage = 4
	}
	return s
}

// IDPacket returns an identification header for 2 channels at 44100 Hz
// with 256/2048 sample blocks.
func IDPacket() []byte {
	data := []byte{1, 'v', 'o', 'r', 'b', 'i', 's'}
	data = binary.LittleEndian.AppendUint32(data, 0)     // version
	data = append(data, 2)                               // channels
	data = binary.LittleEndian.AppendUint32(data, 44100) // sample rate
	data = binary.LittleEndian.AppendUint32(data, 0)     // bitrate max
	data = binary.LittleEndian.AppendUint32(data, 128000)
	data = binary.LittleEndian.AppendUint32(data, 0) // bitrate min
	data = append(data, 8|11<<4)
	data = append(data, 1)
	return data
}

// CommentPacket returns a comment header followed by padding zero bytes.
func CommentPacket(vendor string, comments []string, padding int) []byte {
	data := []byte{3, 'v', 'o', 'r', 'b', 'i', 's'}
	data = binary.LittleEndian.AppendUint32(data, uint32(len(vendor)))
	data = append(data, vendor...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(comments)))
	for _, c := range comments {
		data = binary.LittleEndian.AppendUint32(data, uint32(len(c)))
		data = append(data, c...)
	}
	data = append(data, 1)
	return append(data, make([]byte, padding)...)
}

// SetupPacket returns a setup header of n bytes (at least 8) whose last
// byte carries the framing bit.
func SetupPacket(n int) []byte {
	if n < 8 {
		n = 8
	}
	data := make([]byte, n)
	copy(data, []byte{5, 'v', 'o', 'r', 'b', 'i', 's'})
	for i := 7; i < n-1; i++ {
		data[i] = byte(i * 31)
	}
	data[n-1] = 1
	return data
}

// DecodableSetupPacket returns the smallest complete setup header: one
// two-entry codebook, a floor 1 without partitions, a type 0 residue over
// an empty range, one mapping and one short-block mode.
func DecodableSetupPacket() []byte {
	w := &bitWriter{data: []byte{5, 'v', 'o', 'r', 'b', 'i', 's'}}
	w.put(0, 8) // one codebook
	w.put(0x564342, 24)
	w.put(1, 16) // dimensions
	w.put(2, 24) // entries
	w.put(0, 1)  // not ordered
	w.put(0, 1)  // not sparse
	w.put(0, 5)  // entry 0: length 1
	w.put(0, 5)  // entry 1: length 1
	w.put(0, 4)  // no lookup table
	w.put(0, 6)  // one time domain transform
	w.put(0, 16) // transform type 0
	w.put(0, 6)  // one floor
	w.put(1, 16) // floor type 1
	w.put(0, 5)  // no partitions
	w.put(0, 3)  // class 0 dimension 1
	w.put(0, 2)  // no subclasses
	w.put(0, 8)  // subclass book (none)
	w.put(1, 2)  // multiplier 2
	w.put(7, 4)  // range bits
	w.put(0, 6)  // one residue
	w.put(0, 16) // residue type 0
	w.put(0, 24) // begin
	w.put(0, 24) // end
	w.put(0, 24) // partition size 1
	w.put(0, 6)  // one classification
	w.put(0, 8)  // classbook
	w.put(0, 3)  // cascade low bits
	w.put(0, 1)  // no cascade high bits
	w.put(0, 6)  // one mapping
	w.put(0, 16) // mapping type 0
	w.put(0, 1)  // one submap
	w.put(0, 1)  // no coupling
	w.put(0, 2)  // reserved
	w.put(0, 8)  // submap time config
	w.put(0, 8)  // submap floor
	w.put(0, 8)  // submap residue
	w.put(0, 6)  // one mode
	w.put(0, 1)  // short blocks
	w.put(0, 16) // window type
	w.put(0, 16) // transform type
	w.put(0, 8)  // mapping
	w.put(1, 1)  // framing bit
	return w.data
}

// bitWriter packs values least significant bit first, as Vorbis does.
type bitWriter struct {
	data []byte
	n    uint // bits written after the initial bytes
}

func (w *bitWriter) put(v uint32, bits uint) {
	for i := uint(0); i < bits; i++ {
		if w.n%8 == 0 {
			w.data = append(w.data, 0)
		}
		if v>>i&1 != 0 {
			w.data[len(w.data)-1] |= 1 << (w.n % 8)
		}
		w.n++
	}
}

// AudioPacket returns filler audio data for packet index i.
func AudioPacket(i, n int) []byte {
	data := make([]byte, n)
	for j := range data {
		data[j] = byte(i + j*3)
	}
	if n > 0 {
		data[0] &^= 1 // audio packets have a zero type bit
	}
	return data
}

// Pages lays the stream out as stamped pages:
// the identification header alone on a first page, the comment and setup
// headers packed together, then the audio pages, the last flagged last.
func (s Stream) Pages() []*ogg.Page {
	s = s.withDefaults()

	var pages []*ogg.Page
	add := func(p *ogg.Page, flags byte, granule int64) {
		p.Version = 0
		p.Serial = s.Serial
		p.Sequence = uint32(len(pages))
		p.GranulePos = granule
		p.Flags = p.Flags&ogg.FlagContinued | flags
		if _, err := p.Encode(); err != nil {
			panic(err)
		}
		pages = append(pages, p)
	}

	for _, p := range ogg.Paginate([][]byte{IDPacket()}, ogg.MaxSegments) {
		add(p, ogg.FlagFirst, 0)
	}
	setup := SetupPacket(s.SetupSize)
	if s.DecodableSetup {
		setup = DecodableSetupPacket()
	}
	headers := [][]byte{CommentPacket(s.Vendor, s.Comments, s.Padding), setup}
	for _, p := range ogg.Paginate(headers, s.HeaderSegments) {
		add(p, 0, 0)
	}

	granule := int64(0)
	for i := 0; i < s.AudioPages; i++ {
		packets := make([][]byte, s.PacketsPerPage)
		for j := range packets {
			packets[j] = AudioPacket(i*s.PacketsPerPage+j, s.AudioPacketSize)
		}
		var flags byte
		if i == s.AudioPages-1 {
			flags = ogg.FlagLast
		}
		granule += int64(s.PacketsPerPage) * 1024
		for _, p := range ogg.Paginate(packets, ogg.MaxSegments) {
			add(p, flags, granule)
		}
	}
	return pages
}

// Bytes returns the encoded file.
func (s Stream) Bytes() []byte {
	return Concat(s.Pages())
}

// Concat encodes pages back to back without restamping them.
func Concat(pages []*ogg.Page) []byte {
	var buf bytes.Buffer
	for _, p := range pages {
		if _, err := p.WriteTo(&buf); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// Offsets returns the byte offset of each page in Concat(pages).
func Offsets(pages []*ogg.Page) []int64 {
	offs := make([]int64, len(pages))
	var pos int64
	for i, p := range pages {
		offs[i] = pos
		pos += int64(p.Size())
	}
	return offs
}
