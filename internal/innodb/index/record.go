package index

import (
	"encoding/binary"

	"github.com/tinyforensics/innodbrecover/internal/innodb/errs"
)

// RecordHeaderSize is the wire size of a record header, stored immediately
// before the record's payload offset.
const RecordHeaderSize = 5

// Type is the closed record-type enum carried in the record header.
type Type uint8

const (
	TypeConventional Type = 0
	TypeNodePointer  Type = 1
	TypeInfimum      Type = 2
	TypeSupremum     Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeConventional:
		return "Conventional"
	case TypeNodePointer:
		return "NodePointer"
	case TypeInfimum:
		return "Infimum"
	case TypeSupremum:
		return "Supremum"
	default:
		return "Invalid"
	}
}

// RecordHeader is the 5-byte record header (spec §3, §4.3).
type RecordHeader struct {
	MinRec       bool
	Deleted      bool
	RecordsOwned uint8 // 4-bit, 0..8 in practice
	HeapOrder    uint16
	RecordType   Type
	NextOffset   int16 // signed delta added to the record's own offset
}

func parseRecordHeader(buf []byte) (RecordHeader, error) {
	infoAndOwned := buf[0]
	infoFlags := infoAndOwned >> 4
	var h RecordHeader
	h.MinRec = infoFlags&0x1 != 0
	h.Deleted = infoFlags&0x2 != 0
	h.RecordsOwned = infoAndOwned & 0x0F

	packed := binary.BigEndian.Uint16(buf[1:3])
	h.HeapOrder = packed >> 3
	rt := packed & 0x7
	switch rt {
	case 0, 1, 2, 3:
		h.RecordType = Type(rt)
	default:
		return RecordHeader{}, errs.New(errs.InvalidPage, "record type %d outside closed enum", rt)
	}

	h.NextOffset = int16(binary.BigEndian.Uint16(buf[3:5]))
	return h, nil
}

// Record is a view over a single record: its decoded header, the absolute
// offset of its payload within the full page buffer, and a borrow of the
// page buffer it was parsed from.
type Record struct {
	Header       RecordHeader
	PayloadOffset int
	body          []byte // full page buffer (spec names this "page_body" but offsets are page-absolute)
}

// At constructs a Record view whose header occupies
// body[offset-RecordHeaderSize : offset] and whose payload begins at
// offset, within the full page buffer body.
func At(body []byte, offset int) (*Record, error) {
	if offset < RecordHeaderSize || offset > len(body) {
		return nil, errs.New(errs.InvalidPage, "record offset %d out of range", offset)
	}
	h, err := parseRecordHeader(body[offset-RecordHeaderSize : offset])
	if err != nil {
		return nil, err
	}
	return &Record{Header: h, PayloadOffset: offset, body: body}, nil
}

// Body returns the full page buffer the record was parsed from.
func (r *Record) Body() []byte { return r.body }

// Next returns the record following r in next-offset chain order, or nil
// if r is Supremum or the computed next offset is terminal (wraps to zero
// or falls outside the page buffer) — spec §4.2, §7 require treating this
// as end-of-chain rather than panicking or propagating an error.
func (r *Record) Next() (*Record, error) {
	if r.Header.RecordType == TypeSupremum {
		return nil, nil
	}
	next := uint32(int32(r.PayloadOffset) + int32(r.Header.NextOffset))
	if next == 0 || int(next) >= len(r.body) {
		return nil, nil
	}
	return At(r.body, int(next))
}
