package page

import "hash/crc32"

// crc32cTable is the CRC32 table for the Castagnoli polynomial used by the
// first reference checksum (spec §4.7). No third-party CRC32C
// implementation appears anywhere in the example pack (see DESIGN.md); the
// standard library's crc32.Castagnoli table is the correct, authoritative
// implementation of this polynomial, so it is used directly rather than
// hand-rolled.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32Checksum computes the first reference checksum: CRC-32C of the
// partial header and of the body, XOR-combined.
func (p *Page) CRC32Checksum() uint32 {
	h := crc32.Checksum(p.partialHeader(), crc32cTable)
	b := crc32.Checksum(p.Body(), crc32cTable)
	return h ^ b
}

// InnoDBChecksum computes the second reference checksum: InnoDB's legacy
// folded-byte hash, applied separately to the partial header and the body
// and summed (spec §4.7). It has no real-world library analogue — it is
// neither a CRC, an FNV, nor any other known hash — so it is implemented
// directly.
func (p *Page) InnoDBChecksum() uint32 {
	return foldBytes(p.partialHeader()) + foldBytes(p.Body())
}

// foldConstM1 and foldConstM2 are InnoDB's legacy fold constants.
const (
	foldConstM1 uint32 = 0x57417087
	foldConstM2 uint32 = 0x628E5B0F
)

// foldPair combines an accumulator a with the next byte b of the buffer:
// fold_pair(a, b) = ((((a ^ b ^ M2) << 8) + a) ^ M1) + b, all arithmetic
// wrapping mod 2^32 (Go's arithmetic on uint32 values wraps natively).
func foldPair(a, b uint32) uint32 {
	return ((((a ^ b ^ foldConstM2) << 8) + a) ^ foldConstM1) + b
}

// foldBytes left-folds foldPair over buf, one byte at a time, starting
// from an accumulator of 0.
func foldBytes(buf []byte) uint32 {
	var acc uint32
	for _, b := range buf {
		acc = foldPair(acc, uint32(b))
	}
	return acc
}
