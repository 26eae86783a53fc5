package vorbiscomment

import "errors"

var (
	// ErrInterleaved indicates a page of another logical stream lies between
	// the comment and setup header pages. Replacing that range would drop
	// the foreign page, so the file is left untouched.
	ErrInterleaved = errors.New("vorbiscomment: foreign page inside the header pages")

	// ErrSharedPage indicates the comment header starts on the page that
	// carries the identification header, which must be alone on its page.
	ErrSharedPage = errors.New("vorbiscomment: comment header shares the identification page")
)
