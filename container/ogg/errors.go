package ogg

import (
	"errors"
	"fmt"
)

// Package-level errors for Ogg parsing and encoding.
var (
	// ErrInvalidHeader indicates a page header is malformed: the capture
	// pattern is not "OggS" or the stream structure version is not 0.
	// Usually the reader is not positioned at a real page.
	ErrInvalidHeader = errors.New("ogg: invalid page header")

	// ErrChecksumMismatch indicates the stored page checksum does not match
	// the computed value. The page was fully read; its content is corrupt.
	ErrChecksumMismatch = errors.New("ogg: checksum mismatch")

	// ErrTruncated indicates the source ended in the middle of a page.
	ErrTruncated = errors.New("ogg: truncated page")

	// ErrInvalidSegmentation indicates the lacing values of a page do not
	// describe its content, or a page has more than 255 segments.
	ErrInvalidSegmentation = errors.New("ogg: invalid page segmentation")

	// ErrNotSeekable indicates error recovery was requested on a source
	// that cannot rewind.
	ErrNotSeekable = errors.New("ogg: source does not support seeking")

	// ErrForeignPage indicates a page from a different logical stream was
	// found while the stream filter was in strict mode.
	ErrForeignPage = errors.New("ogg: page from a foreign logical stream")

	// ErrFraming indicates packets cross a page boundary without the
	// continuation flag, or the first page of a stream is a continuation.
	ErrFraming = errors.New("ogg: packet framing error")
)

// Stream warnings. A *WarningError matches each warning it carries.
var (
	ErrMissingFirst    = errors.New("ogg: first page of stream not marked as first")
	ErrMissingLast     = errors.New("ogg: last page of stream not marked as last")
	ErrUnexpectedFirst = errors.New("ogg: page in mid stream marked as first")
	ErrAfterLast       = errors.New("ogg: pages found after the page marked as last")
	ErrOutOfSequence   = errors.New("ogg: page out of sequence or stream missing pages")
)

// IsRecoverable reports whether err is a page-level failure that an error
// tolerant reader may skip over by resynchronising on the next capture
// pattern.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrChecksumMismatch) ||
		errors.Is(err, ErrInvalidHeader) ||
		errors.Is(err, ErrTruncated)
}

// OffsetError records the source byte offset of the page an error refers to.
type OffsetError struct {
	Offset int64
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%v (at byte %d)", e.Err, e.Offset)
}

func (e *OffsetError) Unwrap() error { return e.Err }

// withOffset wraps err with the page offset when the offset is known.
func withOffset(offset int64, err error) error {
	if err == nil || offset < 0 {
		return err
	}
	return &OffsetError{Offset: offset, Err: err}
}
