package vorbis

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// CommentField is one name/value pair of a comment header.
//
// Standard field names include TITLE, VERSION, ALBUM, TRACKNUMBER, ARTIST,
// PERFORMER, COPYRIGHT, LICENSE, ORGANIZATION, DESCRIPTION, GENRE, DATE,
// LOCATION, CONTACT and ISRC. The name may be empty: some files carry
// entries without a "name=" part.
type CommentField struct {
	Name  string
	Value string
}

// ParseField splits a "name=value" string on the first '='.
// A string without '=', or starting with '=', yields an empty name.
func ParseField(s string) CommentField {
	i := strings.IndexByte(s, '=')
	switch {
	case i < 0:
		return CommentField{Value: s}
	case i == 0:
		return CommentField{Value: s[1:]}
	}
	return CommentField{Name: s[:i], Value: s[i+1:]}
}

// String returns name and value separated by '='.
func (f CommentField) String() string {
	return f.Name + "=" + f.Value
}

// CommentHeader is the user metadata of a Vorbis stream: a vendor string and
// an ordered list of fields. Order is significant and names may repeat; a
// song can have a primary and an alternate TITLE, the primary first.
type CommentHeader struct {
	Vendor string
	Fields []CommentField
}

// Add appends a field.
func (c *CommentHeader) Add(name, value string) {
	c.Fields = append(c.Fields, CommentField{Name: name, Value: value})
}

// Get returns the values of every field with the given name, in order.
// Field names compare case-insensitively.
func (c *CommentHeader) Get(name string) []string {
	var values []string
	for _, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Delete removes every field with the given name and reports how many
// were removed.
func (c *CommentHeader) Delete(name string) int {
	kept := c.Fields[:0]
	for _, f := range c.Fields {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	n := len(c.Fields) - len(kept)
	c.Fields = kept
	return n
}

// Set replaces the fields named name with the given values. The first
// replacement takes the position of the first existing field; otherwise the
// values are appended.
func (c *CommentHeader) Set(name string, values ...string) {
	pos := -1
	for i, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			pos = i
			break
		}
	}
	c.Delete(name)
	if pos < 0 || pos > len(c.Fields) {
		pos = len(c.Fields)
	}
	added := make([]CommentField, len(values))
	for i, v := range values {
		added[i] = CommentField{Name: name, Value: v}
	}
	c.Fields = append(c.Fields[:pos], append(added, c.Fields[pos:]...)...)
}

// Validate reports whether c survives Encode and ParseCommentHeader
// unchanged. Field names must not contain '=' and every string must be
// valid UTF-8.
func (c *CommentHeader) Validate() error {
	if !utf8.ValidString(c.Vendor) {
		return fmt.Errorf("%w: %w: vendor string", ErrInvalidField, ErrInvalidUTF8)
	}
	for i, f := range c.Fields {
		if strings.IndexByte(f.Name, '=') >= 0 {
			return fmt.Errorf("%w: field %d: name %q contains '='", ErrInvalidField, i, f.Name)
		}
		if !utf8.ValidString(f.Name) || !utf8.ValidString(f.Value) {
			return fmt.Errorf("%w: %w: field %d", ErrInvalidField, ErrInvalidUTF8, i)
		}
	}
	return nil
}

// Encode serializes the comment header packet: type 3, "vorbis", the
// length-prefixed vendor string, the field count, each length-prefixed
// "name=value" string, and the framing byte.
func (c *CommentHeader) Encode() []byte {
	size := commonHeaderSize + 4 + len(c.Vendor) + 4 + 1
	for _, f := range c.Fields {
		size += 4 + len(f.Name) + 1 + len(f.Value)
	}

	data := make([]byte, 0, size)
	data = append(data, PacketComment)
	data = append(data, magic...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(c.Vendor)))
	data = append(data, c.Vendor...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(c.Fields)))
	for _, f := range c.Fields {
		data = binary.LittleEndian.AppendUint32(data, uint32(len(f.Name)+1+len(f.Value)))
		data = append(data, f.Name...)
		data = append(data, '=')
		data = append(data, f.Value...)
	}
	data = append(data, 1)
	return data
}

// ParseCommentHeader parses a comment header packet.
//
// Trailing spaces are trimmed from the vendor string because they are used
// as padding when comments are rewritten in place. Bytes after the comment
// structure are ignored; the framing bit is checked by ValidateHeader.
func ParseCommentHeader(data []byte) (*CommentHeader, error) {
	if err := checkCommon(data, PacketComment); err != nil {
		return nil, err
	}

	c := &CommentHeader{}
	i := commonHeaderSize

	vendor, i, err := readString(data, i)
	if err != nil {
		return nil, fmt.Errorf("%w: vendor string", err)
	}
	c.Vendor = strings.TrimRight(vendor, " ")

	if i+4 > len(data) {
		return nil, fmt.Errorf("%w: field count", ErrCommentTruncated)
	}
	n := binary.LittleEndian.Uint32(data[i:])
	i += 4

	// Each field needs at least its 4-byte length.
	if uint64(n) > uint64(len(data)-i)/4 {
		return nil, fmt.Errorf("%w: %d fields declared", ErrCommentTruncated, n)
	}
	c.Fields = make([]CommentField, 0, n)
	for j := uint32(0); j < n; j++ {
		var s string
		s, i, err = readString(data, i)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d", err, j)
		}
		c.Fields = append(c.Fields, ParseField(s))
	}
	return c, nil
}

// readString reads a 32-bit length-prefixed UTF-8 string at data[i:].
func readString(data []byte, i int) (string, int, error) {
	if i+4 > len(data) {
		return "", i, ErrCommentTruncated
	}
	n := int64(binary.LittleEndian.Uint32(data[i:]))
	i += 4
	if int64(i)+n > int64(len(data)) {
		return "", i, ErrCommentTruncated
	}
	b := data[i : i+int(n)]
	if !utf8.Valid(b) {
		return "", i, ErrInvalidUTF8
	}
	return string(b), i + int(n), nil
}

// CommentStructureLength returns the offset just past the comment list of a
// comment header packet, where the framing byte belongs. Only the lengths
// are parsed. Returns -1 if the structure runs past the end of the packet.
func CommentStructureLength(data []byte) int {
	i := int64(commonHeaderSize)
	size := int64(len(data))

	if i+4 > size {
		return -1
	}
	i += 4 + int64(binary.LittleEndian.Uint32(data[i:]))

	if i+4 > size {
		return -1
	}
	n := binary.LittleEndian.Uint32(data[i:])
	i += 4

	for j := uint32(0); j < n; j++ {
		if i+4 > size {
			return -1
		}
		i += 4 + int64(binary.LittleEndian.Uint32(data[i:]))
	}
	if i > size {
		return -1
	}
	return int(i)
}
