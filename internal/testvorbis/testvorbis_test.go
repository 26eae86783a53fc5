package testvorbis

import (
	"bytes"
	"io"
	"testing"

	"github.com/thesyncim/vorbiscomment/container/ogg"
)

func TestStreamPages(t *testing.T) {
	tests := []struct {
		name  string
		s     Stream
		pages int
	}{
		{"defaults", Stream{}, 5},
		{"separate header pages", Stream{HeaderSegments: 1}, 7},
		{"large setup", Stream{SetupSize: 6000}, 6},
		{"one audio page", Stream{AudioPages: 1}, 3},
		{"decodable setup", Stream{DecodableSetup: true}, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pages := tc.s.Pages()
			data := Concat(pages)
			offs := Offsets(pages)

			v := ogg.NewValidator(ogg.NewPhysicalReader(bytes.NewReader(data)), nil)
			n := 0
			for {
				p, err := v.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("page %d: %v", n, err)
				}
				if p.Offset != offs[n] {
					t.Errorf("page %d at offset %d, want %d", n, p.Offset, offs[n])
				}
				n++
			}
			if n != tc.pages {
				t.Errorf("read %d pages, want %d", n, tc.pages)
			}
		})
	}
}
