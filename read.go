package vorbiscomment

import (
	"io"
	"os"

	"github.com/thesyncim/vorbiscomment/container/ogg"
	"github.com/thesyncim/vorbiscomment/internal/bufseekio"
	"github.com/thesyncim/vorbiscomment/vorbis"
)

// ReadOptions configures Read.
type ReadOptions struct {
	// Tolerant skips corrupt pages and pages of other logical streams.
	// Otherwise any corruption fails, as do foreign pages and flag or
	// sequence problems rejected by Policy.
	Tolerant bool

	// Policy decides which stream warnings to ignore in strict mode.
	// Nil fails on every warning.
	Policy ogg.WarningPolicy

	// VerifySetup runs the header packets through a full decoder
	// (vorbis.CheckHeaders).
	VerifySetup bool
}

// Info is the header information of a Vorbis stream.
type Info struct {
	ID       *vorbis.IDHeader
	Comments *vorbis.CommentHeader
	Serial   uint32
}

// openStream builds the page pipeline for the first logical stream of r.
//
// Tolerant: TolerantReader, then a non-strict StreamFilter.
// Strict: PhysicalReader, a strict StreamFilter, then a Validator.
func openStream(r io.ReadSeeker, tolerant bool, policy ogg.WarningPolicy) (ogg.PageReader, *ogg.StreamFilter, error) {
	if tolerant {
		tr, err := ogg.NewTolerantReader(r)
		if err != nil {
			return nil, nil, err
		}
		filter := ogg.NewStreamFilter(tr, false)
		return filter, filter, nil
	}
	filter := ogg.NewStreamFilter(ogg.NewPhysicalReader(r), true)
	return ogg.NewValidator(filter, policy), filter, nil
}

// ReadComments reads the comment header of the first logical stream in r,
// starting at its current offset.
func ReadComments(r io.ReadSeeker, tolerant bool) (*vorbis.CommentHeader, error) {
	info, err := Read(r, ReadOptions{Tolerant: tolerant})
	if err != nil {
		return nil, err
	}
	return info.Comments, nil
}

// Read reads the identification and comment headers of the first logical
// stream in r, starting at its current offset.
func Read(r io.ReadSeeker, opts ReadOptions) (*Info, error) {
	src, filter, err := openStream(bufseekio.NewReadSeeker(r), opts.Tolerant, opts.Policy)
	if err != nil {
		return nil, err
	}
	ps := vorbis.NewPacketStream(ogg.NewPacketReader(src))

	id, err := ps.IDHeader()
	if err != nil {
		return nil, err
	}
	comments, err := ps.CommentHeader()
	if err != nil {
		return nil, err
	}

	if opts.VerifySetup {
		if err := verifySetup(ps); err != nil {
			return nil, err
		}
	}

	serial, _ := filter.Serial()
	return &Info{ID: id, Comments: comments, Serial: serial}, nil
}

func verifySetup(ps *vorbis.PacketStream) error {
	id, err := ps.IDPacket()
	if err != nil {
		return err
	}
	comment, err := ps.CommentPacket()
	if err != nil {
		return err
	}
	setup, err := ps.SetupPacket()
	if err != nil {
		return err
	}
	return vorbis.CheckHeaders(id.Bytes(), comment.Bytes(), setup.Bytes())
}

// ReadFile reads the comments of the Ogg Vorbis file at path.
func ReadFile(path string, tolerant bool) (*vorbis.CommentHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadComments(f, tolerant)
}
