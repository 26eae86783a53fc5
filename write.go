package vorbiscomment

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thesyncim/vorbiscomment/container/ogg"
	"github.com/thesyncim/vorbiscomment/internal/bufseekio"
	"github.com/thesyncim/vorbiscomment/internal/splice"
	"github.com/thesyncim/vorbiscomment/vorbis"
)

// DefaultPadThreshold is the most trailing spaces added to the vendor string.
// Readers that show the vendor without trimming it should not be flooded.
const DefaultPadThreshold = 128

// File is an open Ogg Vorbis file that can be rewritten in place.
// *os.File satisfies it.
type File interface {
	io.ReadSeeker
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
}

// UpdateFunc edits comments in place. Returning false leaves the file
// untouched.
type UpdateFunc func(c *vorbis.CommentHeader) bool

// Rewriter replaces the comment header of Ogg Vorbis files.
// The zero value is ready to use.
type Rewriter struct {
	// ChunkSize is the copy buffer used to shift the rest of the file
	// (splice.DefaultChunkSize if zero).
	ChunkSize int

	// PadThreshold is the most spaces appended to the vendor string
	// (DefaultPadThreshold if zero, no padding if negative).
	PadThreshold int

	// MaxPageSize packs the new header pages with up to 255 segments.
	// Otherwise pages keep near the ~4 KB nominal size, unless only full
	// pages preserve the original header page count.
	MaxPageSize bool

	// Strict reads the file with the validating pipeline instead of
	// skipping corrupt and foreign pages.
	Strict bool
}

// WriteComments replaces the comments of f with c.
func WriteComments(f File, c *vorbis.CommentHeader) error {
	var rw Rewriter
	_, err := rw.Write(f, c)
	return err
}

// UpdateComments lets fn edit the comments of f and writes the result. It
// reports whether the file was modified.
func UpdateComments(f File, fn UpdateFunc) (bool, error) {
	var rw Rewriter
	return rw.Update(f, fn)
}

// WriteFile replaces the comments of the existing file at path.
func WriteFile(path string, c *vorbis.CommentHeader) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := WriteComments(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// UpdateFile runs UpdateComments on the existing file at path.
func UpdateFile(path string, fn UpdateFunc) (bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false, err
	}
	changed, err := UpdateComments(f, fn)
	if err != nil {
		f.Close()
		return false, err
	}
	return changed, f.Close()
}

// Write replaces the comments of f with c and reports whether the file
// changed. It does not change if the encoded header is identical.
func (rw *Rewriter) Write(f File, c *vorbis.CommentHeader) (bool, error) {
	return rw.rewrite(f, func([]byte) (*vorbis.CommentHeader, bool, error) {
		return c, true, nil
	})
}

// Update decodes the comments of f, lets fn edit them and writes them back.
// Unlike Write it fails if the existing comment list cannot be decoded.
func (rw *Rewriter) Update(f File, fn UpdateFunc) (bool, error) {
	return rw.rewrite(f, func(packet []byte) (*vorbis.CommentHeader, bool, error) {
		old, err := vorbis.ParseCommentHeader(packet)
		if err != nil {
			return nil, false, err
		}
		return old, fn(old), nil
	})
}

// headerRegion is the comment and setup header pages as found in the file.
type headerRegion struct {
	serial   uint32
	firstSeq uint32 // sequence of the identification page
	from, to int64  // byte range of the comment and setup pages
	pages    int    // number of pages in the range
	comment  []byte
	setup    []byte
}

// rewrite runs edit on the raw comment packet of f and writes the comments
// it returns. Nothing is written if edit declines or the comments are
// invalid.
func (rw *Rewriter) rewrite(f File, edit func(packet []byte) (*vorbis.CommentHeader, bool, error)) (bool, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	src, filter, err := openStream(bufseekio.NewReadSeeker(f), !rw.Strict, nil)
	if err != nil {
		return false, err
	}
	var foreign []*ogg.Page
	filter.OnForeign = func(p *ogg.Page) { foreign = append(foreign, p) }
	ps := vorbis.NewPacketStream(ogg.NewPacketReader(src))

	idPkt, err := ps.IDPacket()
	if err != nil {
		return false, err
	}
	commentPkt, err := ps.CommentPacket()
	if err != nil {
		return false, err
	}
	if commentPkt.StartPage() == idPkt.EndPage() {
		return false, ErrSharedPage
	}

	c, ok, err := edit(commentPkt.Bytes())
	if err != nil || !ok {
		return false, err
	}
	if err := c.Validate(); err != nil {
		return false, err
	}

	data := rw.encodeComments(c, len(commentPkt.Bytes()))
	if bytes.Equal(data, commentPkt.Bytes()) {
		return false, nil
	}

	setupPkt, err := ps.SetupPacket()
	if err != nil {
		return false, err
	}
	serial, _ := filter.Serial()
	end := setupPkt.EndPage()
	region := headerRegion{
		serial:   serial,
		firstSeq: idPkt.StartPage().Sequence,
		from:     commentPkt.StartPage().Offset,
		to:       end.Offset + int64(end.Size()),
		pages:    int(end.Sequence-commentPkt.StartPage().Sequence) + 1,
		comment:  data,
		setup:    setupPkt.Bytes(),
	}
	for _, p := range foreign {
		if p.Offset >= region.from && p.Offset < region.to {
			return false, fmt.Errorf("%w: serial %d at byte %d", ErrInterleaved, p.Serial, p.Offset)
		}
	}

	if err := rw.replace(f, &region); err != nil {
		return false, err
	}
	return true, nil
}

// encodeComments encodes c with the vendor string padded so the packet is
// as close to oldSize as the threshold allows. When the new packet is
// larger, or smaller by more than the threshold, the full threshold is
// used to leave room for later edits.
func (rw *Rewriter) encodeComments(c *vorbis.CommentHeader, oldSize int) []byte {
	threshold := rw.PadThreshold
	if threshold == 0 {
		threshold = DefaultPadThreshold
	}
	data := c.Encode()
	if threshold < 0 {
		return data
	}

	pad := threshold
	if diff := oldSize - len(data); diff >= 0 && diff <= threshold {
		pad = diff
	}
	if pad == 0 {
		return data
	}
	padded := *c
	padded.Vendor = c.Vendor + strings.Repeat(" ", pad)
	return padded.Encode()
}

// paginate lays out the new comment and setup packets.
func (rw *Rewriter) paginate(r *headerRegion) []*ogg.Page {
	packets := [][]byte{r.comment, r.setup}
	if rw.MaxPageSize {
		return ogg.Paginate(packets, ogg.MaxSegments)
	}
	pages := ogg.Paginate(packets, ogg.NominalSegments)
	if len(pages) != r.pages {
		if full := ogg.Paginate(packets, ogg.MaxSegments); len(full) == r.pages {
			return full
		}
	}
	return pages
}

// replace splices the new header pages over the old ones and renumbers the
// rest of the stream if the page count changed.
func (rw *Rewriter) replace(f File, r *headerRegion) error {
	pages := rw.paginate(r)

	var buf bytes.Buffer
	w := ogg.NewWriter(&buf, r.serial, r.firstSeq+1)
	for _, p := range pages {
		if err := w.WritePage(p, 0, 0); err != nil {
			return err
		}
	}

	if err := splice.New(rw.ChunkSize).Replace(f, r.from, r.to, buf.Bytes()); err != nil {
		return err
	}

	delta := uint32(len(pages) - r.pages)
	if delta == 0 {
		return nil
	}
	return rw.renumber(f, r.from+int64(buf.Len()), r.serial, delta)
}

// renumber adds delta to the sequence number of every page of the stream
// starting at offset and rewrites each page where it was found.
func (rw *Rewriter) renumber(f File, offset int64, serial, delta uint32) error {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	br := bufseekio.NewReadSeeker(f)

	var src ogg.PageReader
	if rw.Strict {
		src = ogg.NewPhysicalReader(br)
	} else {
		tr, err := ogg.NewTolerantReader(br)
		if err != nil {
			return err
		}
		src = tr
	}
	src = ogg.NewStreamFilterSerial(src, false, serial)

	for {
		p, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		p.Sequence += delta
		data, err := p.Encode()
		if err != nil {
			return err
		}
		if _, err := f.WriteAt(data, p.Offset); err != nil {
			return err
		}
	}
}
