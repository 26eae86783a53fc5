package vorbiscomment_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/thesyncim/vorbiscomment"
	"github.com/thesyncim/vorbiscomment/internal/testvorbis"
	"github.com/thesyncim/vorbiscomment/vorbis"
)

func ExampleUpdateFile() {
	dir, err := os.MkdirTemp("", "vorbiscomment")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "song.ogg")
	s := testvorbis.Stream{Vendor: "encoder", Comments: []string{"TITLE=Draft", "ARTIST=Someone"}}
	if err := os.WriteFile(path, s.Bytes(), 0o644); err != nil {
		log.Fatal(err)
	}

	changed, err := vorbiscomment.UpdateFile(path, func(c *vorbis.CommentHeader) bool {
		c.Set("TITLE", "Final")
		c.Add("GENRE", "Ambient")
		return true
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("changed:", changed)

	c, err := vorbiscomment.ReadFile(path, false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("vendor:", c.Vendor)
	for _, f := range c.Fields {
		fmt.Println(f)
	}
	// Output:
	// changed: true
	// vendor: encoder
	// TITLE=Final
	// ARTIST=Someone
	// GENRE=Ambient
}
