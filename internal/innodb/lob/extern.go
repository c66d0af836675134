package lob

import "encoding/binary"

// ExternReferenceSize is the wire size of an inline extern reference.
const ExternReferenceSize = 20

// lengthNotOwnerBit and lengthInheritBit are the top two bits of the 8-byte
// length field; the remaining 60 bits carry the actual external length.
const (
	lengthNotOwnerBit uint64 = 1 << 63
	lengthInheritBit  uint64 = 1 << 62
	lengthMask        uint64 = 0x0FFF_FFFF_FFFF_FFFF
)

// ExternReference is the 20-byte inline pointer to an externally-stored
// value (spec §3).
type ExternReference struct {
	SpaceID    uint32
	PageNumber uint32
	Offset     uint32
	Length     uint64 // actual external length, masked out of the wire field
	Owner      bool   // !top_bit
	Inherit    bool   // next_bit
}

// ParseExternReference decodes an ExternReference from the first
// ExternReferenceSize bytes of buf.
func ParseExternReference(buf []byte) ExternReference {
	raw := binary.BigEndian.Uint64(buf[12:20])
	return ExternReference{
		SpaceID:    binary.BigEndian.Uint32(buf[0:4]),
		PageNumber: binary.BigEndian.Uint32(buf[4:8]),
		Offset:     binary.BigEndian.Uint32(buf[8:12]),
		Length:     raw & lengthMask,
		Owner:      raw&lengthNotOwnerBit == 0,
		Inherit:    raw&lengthInheritBit != 0,
	}
}

// Bytes encodes an ExternReference back to its 20-byte wire form,
// preserving the owner/inherit flags on round-trip (spec §4.5).
func (r ExternReference) Bytes() []byte {
	buf := make([]byte, ExternReferenceSize)
	binary.BigEndian.PutUint32(buf[0:4], r.SpaceID)
	binary.BigEndian.PutUint32(buf[4:8], r.PageNumber)
	binary.BigEndian.PutUint32(buf[8:12], r.Offset)
	raw := r.Length & lengthMask
	if !r.Owner {
		raw |= lengthNotOwnerBit
	}
	if r.Inherit {
		raw |= lengthInheritBit
	}
	binary.BigEndian.PutUint64(buf[12:20], raw)
	return buf
}
