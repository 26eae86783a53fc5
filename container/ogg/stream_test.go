package ogg

import (
	"errors"
	"io"
	"testing"
)

// sliceReader serves pages from memory.
type sliceReader struct {
	pages []*Page
}

func (r *sliceReader) Next() (*Page, error) {
	if len(r.pages) == 0 {
		return nil, io.EOF
	}
	p := r.pages[0]
	r.pages = r.pages[1:]
	return p, nil
}

func readAll(t *testing.T, r PageReader) ([]*Page, error) {
	t.Helper()
	var pages []*Page
	for {
		p, err := r.Next()
		if err == io.EOF {
			return pages, nil
		}
		if err != nil {
			return pages, err
		}
		pages = append(pages, p)
	}
}

func mixedStream() []*Page {
	return []*Page{
		makePage(1, 0, FlagFirst, 0, []byte("a0")),
		makePage(2, 0, FlagFirst, 0, []byte("b0")),
		makePage(1, 1, 0, 0, []byte("a1")),
		makePage(2, 1, FlagLast, 0, []byte("b1")),
		makePage(1, 2, FlagLast, 0, []byte("a2")),
	}
}

func TestStreamFilter(t *testing.T) {
	t.Run("locks onto first serial", func(t *testing.T) {
		var skipped []uint32
		f := NewStreamFilter(&sliceReader{mixedStream()}, false)
		f.OnForeign = func(p *Page) { skipped = append(skipped, p.Serial) }

		pages, err := readAll(t, f)
		if err != nil {
			t.Fatalf("readAll: %v", err)
		}
		if len(pages) != 3 {
			t.Fatalf("got %d pages, want 3", len(pages))
		}
		for i, p := range pages {
			if p.Serial != 1 || p.Sequence != uint32(i) {
				t.Errorf("page %d: serial %d sequence %d", i, p.Serial, p.Sequence)
			}
		}
		if len(skipped) != 2 {
			t.Errorf("OnForeign called %d times, want 2", len(skipped))
		}
		if s, ok := f.Serial(); !ok || s != 1 {
			t.Errorf("Serial() = %d, %v, want 1, true", s, ok)
		}
	})

	t.Run("explicit serial", func(t *testing.T) {
		f := NewStreamFilterSerial(&sliceReader{mixedStream()}, false, 2)
		pages, err := readAll(t, f)
		if err != nil {
			t.Fatalf("readAll: %v", err)
		}
		if len(pages) != 2 || pages[0].Serial != 2 || pages[1].Serial != 2 {
			t.Errorf("got %d pages of stream 2, want 2", len(pages))
		}
	})

	t.Run("strict", func(t *testing.T) {
		f := NewStreamFilter(&sliceReader{mixedStream()}, true)
		pages, err := readAll(t, f)
		if !errors.Is(err, ErrForeignPage) {
			t.Fatalf("error = %v, want ErrForeignPage", err)
		}
		if len(pages) != 1 {
			t.Errorf("read %d pages before the failure, want 1", len(pages))
		}
	})
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name  string
		pages []*Page
		want  Warning
	}{
		{
			name: "clean",
			pages: []*Page{
				makePage(1, 0, FlagFirst, 0, nil),
				makePage(1, 1, 0, 0, nil),
				makePage(1, 2, FlagLast, 0, nil),
			},
		},
		{
			name: "missing first",
			pages: []*Page{
				makePage(1, 0, 0, 0, nil),
				makePage(1, 1, FlagLast, 0, nil),
			},
			want: WarnMissingFirst,
		},
		{
			name: "unexpected first",
			pages: []*Page{
				makePage(1, 0, FlagFirst, 0, nil),
				makePage(1, 1, FlagFirst|FlagLast, 0, nil),
			},
			want: WarnUnexpectedFirst,
		},
		{
			name: "out of sequence",
			pages: []*Page{
				makePage(1, 0, FlagFirst, 0, nil),
				makePage(1, 2, FlagLast, 0, nil),
			},
			want: WarnOutOfSequence,
		},
		{
			name: "after last",
			pages: []*Page{
				makePage(1, 0, FlagFirst|FlagLast, 0, nil),
				makePage(1, 1, 0, 0, nil),
			},
			want: WarnAfterLast,
		},
		{
			name: "missing last",
			pages: []*Page{
				makePage(1, 0, FlagFirst, 0, nil),
				makePage(1, 1, 0, 0, nil),
			},
			want: WarnMissingLast,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Default policy fails on the warning.
			_, err := readAll(t, NewValidator(&sliceReader{append([]*Page(nil), tc.pages...)}, nil))
			if tc.want == 0 {
				if err != nil {
					t.Fatalf("clean stream: %v", err)
				}
			} else {
				var we *WarningError
				if !errors.As(err, &we) {
					t.Fatalf("error = %v, want *WarningError", err)
				}
				if !we.Warnings.Has(tc.want) {
					t.Errorf("Warnings = %v, want %v", we.Warnings, tc.want)
				}
			}

			// A permissive policy sees the same warnings but reads every page.
			var seen Warning
			policy := func(w Warning, _ *Page) bool {
				seen |= w
				return true
			}
			pages, err := readAll(t, NewValidator(&sliceReader{append([]*Page(nil), tc.pages...)}, policy))
			if err != nil {
				t.Fatalf("permissive policy: %v", err)
			}
			if len(pages) != len(tc.pages) {
				t.Errorf("read %d pages, want %d", len(pages), len(tc.pages))
			}
			if seen != tc.want {
				t.Errorf("policy saw %v, want %v", seen, tc.want)
			}
		})
	}
}

func TestWarningErrorIs(t *testing.T) {
	err := error(&WarningError{Warnings: WarnOutOfSequence | WarnAfterLast})
	if !errors.Is(err, ErrOutOfSequence) || !errors.Is(err, ErrAfterLast) {
		t.Errorf("errors.Is does not match carried warnings: %v", err)
	}
	if errors.Is(err, ErrMissingFirst) {
		t.Errorf("errors.Is matches a warning that is not carried")
	}
}

func TestValidatorAt(t *testing.T) {
	src := &sliceReader{[]*Page{
		makePage(1, 5, 0, 0, nil),
		makePage(1, 6, FlagLast, 0, nil),
	}}
	if _, err := readAll(t, NewValidatorAt(src, nil, 5)); err != nil {
		t.Errorf("mid-stream validation: %v", err)
	}
}
