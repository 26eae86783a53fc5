package ogg

// Segment-count caps for Paginate.
const (
	// NominalSegments keeps pages near the ~4 KB nominal size the Ogg
	// framing documentation recommends. Some hardware players cannot
	// handle larger pages.
	NominalSegments = 17

	// MaxSegments packs as much as possible on each page (~64 KB).
	MaxSegments = 255
)

// Paginate lays out packets on the minimum number of pages holding at most
// maxSegments segments each (MaxSegments if out of range).
//
// Packing is greedy and in order: each packet is split into full 255-byte
// segments followed by one terminal segment shorter than 255 bytes (zero
// bytes when the length is a multiple of 255). A page is closed when it
// holds maxSegments segments, and the next page is flagged as a
// continuation if the closed page ended inside a packet. A trailing page is
// produced only if it holds at least one segment.
//
// Only Flags, Lacing and Content are set on the returned pages; the caller
// stamps serial, sequence and granule position.
func Paginate(packets [][]byte, maxSegments int) []*Page {
	if maxSegments <= 0 || maxSegments > MaxSegments {
		maxSegments = MaxSegments
	}

	var pages []*Page
	page := &Page{Offset: -1}

	for _, pkt := range packets {
		off := 0
		for _, size := range BuildSegmentTable(len(pkt)) {
			if len(page.Lacing) == maxSegments {
				pages = append(pages, page)
				next := &Page{Offset: -1}
				if page.Lacing[len(page.Lacing)-1] == MaxSegmentSize {
					next.Flags = FlagContinued
				}
				page = next
			}

			page.Lacing = append(page.Lacing, size)
			page.Content = append(page.Content, pkt[off:off+int(size)]...)
			off += int(size)
		}
	}

	if len(page.Lacing) > 0 {
		pages = append(pages, page)
	}
	return pages
}
