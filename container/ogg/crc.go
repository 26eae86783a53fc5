package ogg

// Ogg CRC-32: polynomial 0x04C11DB7, MSB first, initial register 0 and no
// final XOR. This is NOT the IEEE CRC-32 from hash/crc32, which is reflected.

// oggCRCTable is built once at package initialisation and never mutated.
var oggCRCTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		oggCRCTable[i] = crc
	}
}

// Checksum computes the Ogg CRC-32 of data.
// For a page checksum, data must be the encoded page with bytes 22-25 zeroed.
func Checksum(data []byte) uint32 {
	return oggCRC(data)
}

// oggCRC computes the Ogg CRC-32 checksum from scratch.
func oggCRC(data []byte) uint32 {
	return oggCRCUpdate(0, data)
}

// oggCRCUpdate updates a running CRC with additional data.
func oggCRCUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}
