package ogg

import (
	"io"
)

// TolerantReader reads pages like PhysicalReader but skips corruption.
//
// When a page fails with a recoverable error (see IsRecoverable) the source
// is rewound to where the failed page started, one byte is discarded so
// the search always makes progress, and the source is scanned for the next
// "OggS" capture pattern. If none is found the stream simply ends.
type TolerantReader struct {
	rs      io.ReadSeeker
	pr      *PhysicalReader
	resyncs int
}

// NewTolerantReader creates an error tolerant page reader.
// Recovery requires rewinding, so r must implement io.Seeker; otherwise
// ErrNotSeekable is returned.
func NewTolerantReader(r io.Reader) (*TolerantReader, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, ErrNotSeekable
	}
	return &TolerantReader{rs: rs, pr: NewPhysicalReader(rs)}, nil
}

// Next returns the next intact page, or io.EOF when no more can be found.
// Errors from the source that are not page corruption are returned as is.
func (tr *TolerantReader) Next() (*Page, error) {
	// The previous page, if any, ended exactly where the next one starts.
	captured := false

	for {
		// A failed attempt after a resync started at its capture pattern.
		mark := tr.pr.Offset()
		if captured {
			mark -= int64(len(oggMagic))
		}
		tr.pr.SetCaptured(captured)

		page, err := tr.pr.Next()
		if err == nil || err == io.EOF {
			return page, err
		}
		if !IsRecoverable(err) {
			return nil, err
		}

		tr.resyncs++
		if _, err := tr.rs.Seek(mark, io.SeekStart); err != nil {
			return nil, err
		}
		tr.pr.pos = mark

		if _, err := tr.pr.readByte(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}

		found, err := tr.findCapture()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, io.EOF
		}
		captured = true
	}
}

// Resyncs returns the number of times the reader had to search for a page
// boundary because of corruption.
func (tr *TolerantReader) Resyncs() int {
	return tr.resyncs
}

// findCapture consumes bytes up to and including the next capture pattern.
// "OggS" has no proper prefix that is also a suffix, so a mismatch only
// needs to check whether the byte restarts the pattern.
func (tr *TolerantReader) findCapture() (bool, error) {
	matched := 0
	for matched < len(oggMagic) {
		b, err := tr.pr.readByte()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return false, nil
			}
			return false, err
		}
		switch {
		case b == oggMagic[matched]:
			matched++
		case b == oggMagic[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return true, nil
}
