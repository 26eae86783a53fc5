package ogg

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func threePages() []*Page {
	return []*Page{
		makePage(9, 0, FlagFirst, 0, []byte("first page")),
		makePage(9, 1, 0, 100, []byte("second"), []byte("page")),
		makePage(9, 2, FlagLast, 200, bytes.Repeat([]byte{0xAB}, 600)),
	}
}

func TestPhysicalReader(t *testing.T) {
	pages := threePages()
	data := encodePages(t, pages...)

	pr := NewPhysicalReader(bytes.NewReader(data))
	var offset int64
	for i, want := range pages {
		got, err := pr.Next()
		if err != nil {
			t.Fatalf("page %d: Next: %v", i, err)
		}
		if !got.Equal(want, false, false) {
			t.Errorf("page %d: decoded %+v, want %+v", i, got, want)
		}
		if got.Offset != offset {
			t.Errorf("page %d: Offset = %d, want %d", i, got.Offset, offset)
		}
		offset += int64(want.Size())
	}
	if _, err := pr.Next(); err != io.EOF {
		t.Errorf("Next() after last page error = %v, want io.EOF", err)
	}
	if pr.Offset() != int64(len(data)) {
		t.Errorf("Offset() = %d, want %d", pr.Offset(), len(data))
	}
}

func TestPhysicalReaderEmpty(t *testing.T) {
	pr := NewPhysicalReader(bytes.NewReader(nil))
	if _, err := pr.Next(); err != io.EOF {
		t.Errorf("Next() on empty source error = %v, want io.EOF", err)
	}
}

func TestPhysicalReaderTruncated(t *testing.T) {
	data := encodePages(t, makePage(1, 0, FlagFirst, 0, []byte("0123456789")))

	tests := []struct {
		name string
		n    int
	}{
		{"inside header", 10},
		{"inside segment table", HeaderSize},
		{"inside content", len(data) - 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pr := NewPhysicalReader(bytes.NewReader(data[:tc.n]))
			_, err := pr.Next()
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("Next() error = %v, want ErrTruncated", err)
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("Next() error = %v, want it to wrap io.ErrUnexpectedEOF", err)
			}
			var oe *OffsetError
			if !errors.As(err, &oe) || oe.Offset != 0 {
				t.Errorf("Next() error = %v, want offset 0", err)
			}
			if !IsRecoverable(err) {
				t.Errorf("IsRecoverable(%v) = false", err)
			}
		})
	}
}

// TestPhysicalReaderChecksum flips every content byte in turn.
func TestPhysicalReaderChecksum(t *testing.T) {
	page := makePage(3, 0, 0, 0, []byte("checksummed content"))
	data := encodePages(t, page)
	contentStart := HeaderSize + len(page.Lacing)

	for i := contentStart; i < len(data); i++ {
		corrupt := append([]byte(nil), data...)
		corrupt[i] ^= 0x40
		_, err := NewPhysicalReader(bytes.NewReader(corrupt)).Next()
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("byte %d flipped: error = %v, want ErrChecksumMismatch", i, err)
		}
	}
}

func TestPhysicalReaderSourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	pr := NewPhysicalReader(io.MultiReader(bytes.NewReader([]byte("OggS")), &errReader{boom}))
	if _, err := pr.Next(); !errors.Is(err, boom) || IsRecoverable(err) {
		t.Errorf("Next() error = %v, want source error unchanged", err)
	}
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }

func TestPhysicalReaderSeekerOffset(t *testing.T) {
	data := append([]byte("junk"), encodePages(t, threePages()...)...)
	r := bytes.NewReader(data)
	r.Seek(4, io.SeekStart)

	p, err := NewPhysicalReader(r).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if p.Offset != 4 {
		t.Errorf("Offset = %d, want 4", p.Offset)
	}
}

func TestTolerantReaderNotSeekable(t *testing.T) {
	if _, err := NewTolerantReader(io.MultiReader()); !errors.Is(err, ErrNotSeekable) {
		t.Errorf("NewTolerantReader() error = %v, want ErrNotSeekable", err)
	}
}

func TestTolerantReaderSkipsCorruptPage(t *testing.T) {
	pages := threePages()
	data := encodePages(t, pages...)
	// Corrupt the content of the middle page.
	mid := pages[0].Size() + HeaderSize + len(pages[1].Lacing) + 2
	data[mid] ^= 0xFF

	tr, err := NewTolerantReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewTolerantReader: %v", err)
	}
	var got []*Page
	for {
		p, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, p)
	}

	if len(got) != 2 {
		t.Fatalf("read %d pages, want 2", len(got))
	}
	if !got[0].Equal(pages[0], false, false) || !got[1].Equal(pages[2], false, false) {
		t.Errorf("pages around the corrupt one changed")
	}
	if want := int64(pages[0].Size() + pages[1].Size()); got[1].Offset != want {
		t.Errorf("third page Offset = %d, want %d", got[1].Offset, want)
	}
	if tr.Resyncs() != 1 {
		t.Errorf("Resyncs() = %d, want 1", tr.Resyncs())
	}
}

func TestTolerantReaderGarbage(t *testing.T) {
	pages := threePages()
	var data []byte
	data = append(data, "garbage OggS-ish Og"...)
	data = append(data, encodePages(t, pages[0])...)
	data = append(data, "OggOggS"...) // broken capture then a bad header
	data = append(data, encodePages(t, pages[1], pages[2])...)
	data = append(data, "trailing"...)

	tr, err := NewTolerantReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewTolerantReader: %v", err)
	}
	for i, want := range pages {
		got, err := tr.Next()
		if err != nil {
			t.Fatalf("page %d: Next: %v", i, err)
		}
		if !got.Equal(want, false, false) {
			t.Errorf("page %d differs", i)
		}
	}
	if _, err := tr.Next(); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestTolerantReaderTruncatedTail(t *testing.T) {
	pages := threePages()
	data := encodePages(t, pages...)
	data = data[:len(data)-10]

	tr, _ := NewTolerantReader(bytes.NewReader(data))
	for i := 0; i < 2; i++ {
		if _, err := tr.Next(); err != nil {
			t.Fatalf("page %d: Next: %v", i, err)
		}
	}
	if _, err := tr.Next(); err != io.EOF {
		t.Errorf("Next() on truncated page error = %v, want io.EOF", err)
	}
}
