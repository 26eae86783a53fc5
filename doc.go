// Package vorbiscomment reads and rewrites the comments of Ogg Vorbis files
// without touching the audio.
//
// Comments live in the second of the three Vorbis header packets. Reading
// walks the file page by page, selects the first logical stream and decodes
// the comment header. Rewriting re-lays the comment and setup header packets
// on new pages and splices them over the old ones in place, so only the
// header region of the file moves:
//
//	f, _ := os.OpenFile("song.ogg", os.O_RDWR, 0)
//	defer f.Close()
//	changed, err := vorbiscomment.UpdateComments(f, func(c *vorbis.CommentHeader) bool {
//		c.Set("TITLE", "New title")
//		return true
//	})
//
// To make most edits fit in the space already used, the vendor string is
// padded with up to 128 trailing spaces. If the new headers need a different
// number of pages, the sequence numbers of every later page of the stream are
// rewritten.
//
// A rewrite is not atomic. An I/O error part way through can leave the file
// damaged, so callers that need safety should work on a copy.
package vorbiscomment
