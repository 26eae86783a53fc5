// Command vorbiscomment lists and edits the comments of Ogg Vorbis files.
//
// Usage:
//
//	vorbiscomment file.ogg
//	vorbiscomment -w -t TITLE=Song -t ARTIST=Band file.ogg
//	vorbiscomment -a -t GENRE=Jazz file.ogg
//	vorbiscomment -d COMMENT file.ogg
//	vorbiscomment -a -charset latin1 -t "ARTIST=Bj\xf6rk" file.ogg
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"golang.org/x/text/encoding/charmap"

	"github.com/thesyncim/vorbiscomment"
	"github.com/thesyncim/vorbiscomment/vorbis"
)

// tagList collects repeated -t flags.
type tagList []vorbis.CommentField

func (l *tagList) String() string {
	parts := make([]string, len(*l))
	for i, f := range *l {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

func (l *tagList) Set(s string) error {
	f := vorbis.ParseField(s)
	if f.Name == "" {
		return fmt.Errorf("tag %q is not NAME=VALUE", s)
	}
	*l = append(*l, f)
	return nil
}

var charsets = map[string]*charmap.Charmap{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"koi8-r":       charmap.KOI8R,
	"cp437":        charmap.CodePage437,
}

func main() {
	list := flag.Bool("l", false, "List the comments (default action)")
	write := flag.Bool("w", false, "Replace all comments with the -t tags")
	appendTags := flag.Bool("a", false, "Append the -t tags to the existing comments")
	del := flag.String("d", "", "Delete every comment with this name")
	strict := flag.Bool("strict", false, "Fail on corrupt pages and stream warnings")
	verify := flag.Bool("verify", false, "Re-read the file with an independent tag reader after writing")
	verifySetup := flag.Bool("verify-setup", false, "Fully decode the header packets")
	charset := flag.String("charset", "", "Decode -t values from this charset (latin1, windows-1252, ...)")
	var tags tagList
	flag.Var(&tags, "t", "Comment as NAME=VALUE (repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vorbiscomment [flags] file.ogg")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *write && *appendTags {
		log.Fatalf("-w and -a are mutually exclusive")
	}
	if *charset != "" {
		if err := decodeTags(tags, *charset); err != nil {
			log.Fatalf("Decode tags: %v", err)
		}
	}

	if *verifySetup {
		if _, err := readInfo(path, !*strict, true); err != nil {
			log.Fatalf("Verify headers: %v", err)
		}
		fmt.Println("Header packets decode correctly")
	}

	rw := vorbiscomment.Rewriter{Strict: *strict}
	var changed bool
	var err error
	switch {
	case *write:
		// The old comment list may be unreadable; only its vendor is kept.
		c := &vorbis.CommentHeader{Fields: tags}
		if info, err := readInfo(path, !*strict, false); err == nil {
			c.Vendor = info.Comments.Vendor
		}
		changed, err = replaceFile(path, c, &rw)
	case *appendTags || *del != "":
		changed, err = rewriteFile(path, func(c *vorbis.CommentHeader) bool {
			n := 0
			if *del != "" {
				n = c.Delete(*del)
			}
			c.Fields = append(c.Fields, tags...)
			return n > 0 || len(tags) > 0
		}, &rw)
	default:
		*list = true
	}
	if errors.Is(err, vorbis.ErrInvalidUTF8) && *charset == "" {
		log.Fatalf("Write comments: %v (use -charset for tags that are not UTF-8)", err)
	}
	if err != nil {
		log.Fatalf("Write comments: %v", err)
	}
	if *write || *appendTags || *del != "" {
		if changed {
			fmt.Printf("Updated %s\n", path)
		} else {
			fmt.Printf("%s unchanged\n", path)
		}
	}

	if changed && *verify {
		if err := verifyFile(path, !*strict); err != nil {
			log.Fatalf("Verify: %v", err)
		}
		fmt.Println("Verified with github.com/dhowden/tag")
	}

	if *list {
		info, err := readInfo(path, !*strict, false)
		if err != nil {
			log.Fatalf("Read comments: %v", err)
		}
		printInfo(info)
	}
}

func rewriteFile(path string, fn vorbiscomment.UpdateFunc, rw *vorbiscomment.Rewriter) (bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return rw.Update(f, fn)
}

func replaceFile(path string, c *vorbis.CommentHeader, rw *vorbiscomment.Rewriter) (bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return rw.Write(f, c)
}

func readInfo(path string, tolerant, verifySetup bool) (*vorbiscomment.Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return vorbiscomment.Read(f, vorbiscomment.ReadOptions{Tolerant: tolerant, VerifySetup: verifySetup})
}

func decodeTags(tags tagList, name string) error {
	cm, ok := charsets[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown charset %q", name)
	}
	dec := cm.NewDecoder()
	for i := range tags {
		v, err := dec.String(tags[i].Value)
		if err != nil {
			return fmt.Errorf("%s: %w", tags[i].Name, err)
		}
		tags[i].Value = v
	}
	return nil
}

// verifyFile checks that an independent reader sees the same title and
// artist as this package.
func verifyFile(path string, tolerant bool) error {
	info, err := readInfo(path, tolerant, false)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return err
	}
	if m.Format() != tag.VORBIS {
		return fmt.Errorf("detected format %s, want %s", m.Format(), tag.VORBIS)
	}
	checks := []struct {
		name, got string
	}{
		{"TITLE", m.Title()},
		{"ARTIST", m.Artist()},
	}
	for _, c := range checks {
		if want := last(info.Comments.Get(c.name)); c.got != want {
			return fmt.Errorf("%s = %q, want %q", c.name, c.got, want)
		}
	}
	return nil
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func printInfo(info *vorbiscomment.Info) {
	id := info.ID
	fmt.Printf("Serial: %d\n", info.Serial)
	fmt.Printf("Channels: %d, sample rate: %d Hz, nominal bitrate: %d\n",
		id.Channels, id.SampleRate, id.BitrateNominal)
	fmt.Printf("Vendor: %s\n", info.Comments.Vendor)
	for _, f := range info.Comments.Fields {
		fmt.Println(f.String())
	}
}
