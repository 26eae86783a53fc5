package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// TestOggCRC checks the 0x04C11DB7 checksum. The capture pattern value
// matches libogg; an IEEE CRC-32 would differ.
func TestOggCRC(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"OggS", 0x5fb0a94f},
	}
	for _, tc := range tests {
		if got := oggCRC([]byte(tc.in)); got != tc.want {
			t.Errorf("oggCRC(%q) = 0x%08x, want 0x%08x", tc.in, got, tc.want)
		}
	}

	data := []byte("OggS test data for CRC")
	if full, split := oggCRC(data), oggCRCUpdate(oggCRC(data[:5]), data[5:]); full != split {
		t.Errorf("incremental checksum 0x%08x, want 0x%08x", split, full)
	}
	for i := range data {
		flipped := append([]byte(nil), data...)
		flipped[i] ^= 0x01
		if oggCRC(flipped) == oggCRC(data) {
			t.Errorf("bit flip at byte %d not detected", i)
		}
	}
}

func TestBuildSegmentTable(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{254, []byte{254}},
		{255, []byte{255, 0}},
		{256, []byte{255, 1}},
		{510, []byte{255, 255, 0}},
		{600, []byte{255, 255, 90}},
		{1000, []byte{255, 255, 255, 235}},
	}
	for _, tc := range tests {
		if got := BuildSegmentTable(tc.n); !bytes.Equal(got, tc.want) {
			t.Errorf("BuildSegmentTable(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}

	// Only the last value is below 255 and the values sum to the length.
	for _, n := range []int{0, 1, 254, 255, 256, 510, 511, 2000} {
		table := BuildSegmentTable(n)
		sum := 0
		for i, v := range table {
			sum += int(v)
			if (v < MaxSegmentSize) != (i == len(table)-1) {
				t.Errorf("BuildSegmentTable(%d) = %v: value %d at %d", n, table, v, i)
			}
		}
		if sum != n {
			t.Errorf("BuildSegmentTable(%d) sums to %d", n, sum)
		}
	}
}

// makePage builds a page holding the given complete packets.
func makePage(serial, seq uint32, flags byte, granule int64, packets ...[]byte) *Page {
	p := &Page{Flags: flags, GranulePos: granule, Serial: serial, Sequence: seq, Offset: -1}
	for _, pkt := range packets {
		p.Lacing = append(p.Lacing, BuildSegmentTable(len(pkt))...)
		p.Content = append(p.Content, pkt...)
	}
	return p
}

// encodePages concatenates the encoded pages.
func encodePages(t *testing.T, pages ...*Page) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, p := range pages {
		if _, err := p.WriteTo(&buf); err != nil {
			t.Fatalf("WriteTo: %v", err)
		}
	}
	return buf.Bytes()
}

// TestPageEncode verifies the encoded header layout.
func TestPageEncode(t *testing.T) {
	p := makePage(0x12345678, 7, FlagFirst, 0x0102030405060708, []byte("vorbis header"))

	encoded, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if string(encoded[0:4]) != "OggS" {
		t.Errorf("encoded page missing OggS magic")
	}
	if encoded[4] != 0 {
		t.Errorf("encoded page version = %d, want 0", encoded[4])
	}
	if encoded[5] != FlagFirst {
		t.Errorf("encoded page flags = 0x%02x, want 0x%02x", encoded[5], FlagFirst)
	}
	if got := binary.LittleEndian.Uint64(encoded[6:14]); got != 0x0102030405060708 {
		t.Errorf("granule = 0x%x, want 0x0102030405060708", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[14:18]); got != 0x12345678 {
		t.Errorf("serial = 0x%08x, want 0x12345678", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[18:22]); got != 7 {
		t.Errorf("sequence = %d, want 7", got)
	}
	if encoded[26] != 1 {
		t.Errorf("segment count = %d, want 1", encoded[26])
	}
	if len(encoded) != p.Size() || p.Size() != 27+1+13 {
		t.Errorf("encoded len = %d, Size() = %d, want %d", len(encoded), p.Size(), 27+1+13)
	}

	// Checksum covers the page with the checksum field zeroed.
	stored := binary.LittleEndian.Uint32(encoded[22:26])
	zeroed := append([]byte(nil), encoded...)
	copy(zeroed[22:26], []byte{0, 0, 0, 0})
	if got := Checksum(zeroed); got != stored || p.Checksum != stored {
		t.Errorf("checksum = 0x%08x, stored 0x%08x, page 0x%08x", got, stored, p.Checksum)
	}
}

func TestPageEncodeInvalidSegmentation(t *testing.T) {
	tests := []struct {
		name string
		page *Page
	}{
		{"content longer than lacing", &Page{Lacing: []byte{3}, Content: []byte("abcd")}},
		{"content shorter than lacing", &Page{Lacing: []byte{255, 1}, Content: []byte("ab")}},
		{"too many segments", &Page{Lacing: make([]byte, 256)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.page.Encode(); !errors.Is(err, ErrInvalidSegmentation) {
				t.Errorf("Encode() error = %v, want ErrInvalidSegmentation", err)
			}
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	p := makePage(0xDEADBEEF, 42, FlagContinued|FlagLast, -1, []byte("xyz"))
	encoded, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	t.Run("with capture pattern", func(t *testing.T) {
		var q Page
		n, err := q.DecodeHeader(encoded[:HeaderSize])
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		if n != 1 {
			t.Errorf("segments = %d, want 1", n)
		}
		if q.Serial != 0xDEADBEEF || q.Sequence != 42 || q.GranulePos != -1 || q.Flags != FlagContinued|FlagLast {
			t.Errorf("decoded %+v", q)
		}
		if q.Checksum != p.Checksum {
			t.Errorf("Checksum = 0x%08x, want 0x%08x", q.Checksum, p.Checksum)
		}
	})

	t.Run("capture already consumed", func(t *testing.T) {
		var q Page
		n, err := q.DecodeHeader(encoded[4:HeaderSize])
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		if n != 1 || q.Sequence != 42 {
			t.Errorf("DecodeHeader = %d segments, sequence %d", n, q.Sequence)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), encoded[:HeaderSize]...)
		bad[0] = 'X'
		var q Page
		if _, err := q.DecodeHeader(bad); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("DecodeHeader() error = %v, want ErrInvalidHeader", err)
		}
	})

	t.Run("bad version", func(t *testing.T) {
		bad := append([]byte(nil), encoded[:HeaderSize]...)
		bad[4] = 1
		var q Page
		if _, err := q.DecodeHeader(bad); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("DecodeHeader() error = %v, want ErrInvalidHeader", err)
		}
	})
}

func TestPageSegments(t *testing.T) {
	big := make([]byte, 300)
	p := makePage(1, 0, 0, 0, []byte("ab"), big, nil)

	segs := p.Segments()
	wantSizes := []int{2, 255, 45, 0}
	if len(segs) != len(wantSizes) {
		t.Fatalf("Segments() len = %d, want %d", len(segs), len(wantSizes))
	}
	offset := 0
	for i, s := range segs {
		if s.Size != wantSizes[i] || s.Index != i || s.Offset != offset || s.Page != p {
			t.Errorf("segment %d = {Index %d, Offset %d, Size %d}, want {%d, %d, %d}",
				i, s.Index, s.Offset, s.Size, i, offset, wantSizes[i])
		}
		if s.IsLast() != (wantSizes[i] < 255) {
			t.Errorf("segment %d IsLast() = %v", i, s.IsLast())
		}
		offset += s.Size
	}
	if string(segs[0].Bytes()) != "ab" {
		t.Errorf("segment 0 bytes = %q", segs[0].Bytes())
	}
}

func TestPageFlags(t *testing.T) {
	tests := []struct {
		flags                  byte
		first, last, continued bool
	}{
		{0, false, false, false},
		{FlagContinued, false, false, true},
		{FlagFirst, true, false, false},
		{FlagLast, false, true, false},
		{FlagFirst | FlagLast, true, true, false},
	}
	for _, tc := range tests {
		p := &Page{Flags: tc.flags}
		if p.IsFirst() != tc.first || p.IsLast() != tc.last || p.IsContinued() != tc.continued {
			t.Errorf("flags 0x%02x: first=%v last=%v continued=%v", tc.flags, p.IsFirst(), p.IsLast(), p.IsContinued())
		}
	}
}

func TestPageEqual(t *testing.T) {
	a := makePage(1, 5, 0, 10, []byte("data"))
	b := makePage(1, 6, 0, 10, []byte("data"))
	a.Encode()
	b.Encode()

	if a.Equal(b, false, false) {
		t.Errorf("pages with different sequence compare equal")
	}
	if !a.Equal(b, true, true) {
		t.Errorf("pages differing only in sequence and checksum compare unequal")
	}
	c := makePage(1, 5, 0, 10, []byte("datb"))
	if a.Equal(c, true, true) {
		t.Errorf("pages with different content compare equal")
	}
}
