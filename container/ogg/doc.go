// Package ogg implements the Ogg container format at the page and packet
// level, independent of the codec carried inside.
//
// This package provides low-level primitives for reading, validating,
// reassembling and writing Ogg bitstreams as specified in RFC 3533
// (The Ogg Encapsulation Format).
//
// The Ogg format uses pages as atomic units of data, where each page contains:
//   - A 27-byte header with magic signature "OggS"
//   - A segment table describing packet boundaries
//   - Content data holding the segments of one or more packets
//   - CRC-32 checksum for data integrity verification
//
// # Page Structure
//
// An Ogg page has the following structure:
//
//	Bytes 0-3:   "OggS" capture pattern (magic signature)
//	Byte 4:      Stream structure version (always 0)
//	Byte 5:      Header type flags (continued, first, last)
//	Bytes 6-13:  Granule position (-1: no packet finishes on this page)
//	Bytes 14-17: Bitstream serial number
//	Bytes 18-21: Page sequence number
//	Bytes 22-25: CRC checksum
//	Byte 26:     Number of segments
//	Bytes 27+:   Segment table (one byte per segment)
//	Remaining:   Page content
//
// # Segment Table
//
// Packets are split into segments of up to 255 bytes each. A segment value
// of 255 indicates the packet continues in the next segment, possibly on the
// next page. A value less than 255 marks the end of a packet, so a packet
// whose length is a multiple of 255 ends with a zero-length segment.
//
// Example: A 600-byte packet uses segments [255, 255, 90] (255+255+90=600)
//
// # Reading Pipeline
//
// Readers compose by wrapping, each implementing PageReader:
//
//	PhysicalReader   strict page decoding from an io.Reader
//	TolerantReader   resynchronises on "OggS" after corrupt pages
//	StreamFilter     selects one logical stream by serial number
//	Validator        checks first/last flags and sequence numbers
//
// PacketReader then reassembles packets from the selected pages.
//
// # CRC Calculation
//
// Ogg uses CRC-32 with polynomial 0x04C11DB7 (NOT the IEEE polynomial used
// by hash/crc32). The CRC is computed over the entire page with the CRC
// field set to zero.
//
// # References
//
//   - RFC 3533: The Ogg Encapsulation Format Version 0
//   - https://xiph.org/ogg/doc/framing.html
package ogg
