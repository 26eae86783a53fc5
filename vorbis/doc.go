// Package vorbis validates the three Vorbis header packets and encodes and
// decodes the comment header.
//
// A Vorbis stream starts with three header packets:
//
//	1  identification  audio format (channels, sample rate, block sizes)
//	3  comment         vendor string and NAME=value user fields
//	5  setup           codebooks and decoder configuration
//
// Each starts with its type byte followed by "vorbis". The comment header may
// carry padding after its framing byte, which lets comments be rewritten in
// place without moving the rest of the file.
//
// Reference: https://xiph.org/vorbis/doc/Vorbis_I_spec.html
package vorbis
