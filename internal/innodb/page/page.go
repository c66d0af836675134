// Package page implements the 16 KiB tablespace page framing layer: header
// and trailer decode, the closed page-type enum, and the dual checksum
// functions used to validate (or knowingly tolerate) a page's stored
// checksum.
package page

import (
	"encoding/binary"
	"fmt"

	"github.com/tinyforensics/innodbrecover/internal/innodb/errs"
)

// Size is the fixed page size every tablespace page occupies.
const Size = 16384

// HeaderSize is the length of the page header (checksum, offset, chain
// pointers, LSN, page type, flush LSN, space id).
const HeaderSize = 38

// TrailerSize is the length of the page trailer (old-style checksum, low
// 32 bits of the LSN).
const TrailerSize = 8

// BodySize is the payload length between header and trailer.
const BodySize = Size - HeaderSize - TrailerSize // 16338

// Type is the closed page-type enum stored in the header. Unknown values
// decode to TypeUnknown rather than failing parse (spec §4.1).
type Type uint16

const (
	TypeAllocated Type = 0
	TypeUndoLog   Type = 2
	TypeInode     Type = 3
	TypeFspHdr    Type = 8
	TypeXdes      Type = 9
	TypeBlob      Type = 10
	TypeLobIndex  Type = 22
	TypeLobData   Type = 23
	TypeLobFirst  Type = 24
	TypeSDI       Type = 17853
	TypeRTree     Type = 17854
	TypeIndex     Type = 17855

	// TypeUnknown is the sentinel for any value outside the closed set.
	TypeUnknown Type = 0xFFFF
)

func (t Type) String() string {
	switch t {
	case TypeAllocated:
		return "Allocated"
	case TypeUndoLog:
		return "UndoLog"
	case TypeInode:
		return "Inode"
	case TypeFspHdr:
		return "FspHdr"
	case TypeXdes:
		return "Xdes"
	case TypeBlob:
		return "Blob"
	case TypeLobIndex:
		return "LobIndex"
	case TypeLobData:
		return "LobData"
	case TypeLobFirst:
		return "LobFirst"
	case TypeSDI:
		return "SDI"
	case TypeRTree:
		return "RTree"
	case TypeIndex:
		return "Index"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}

func typeFromWire(v uint16) Type {
	switch Type(v) {
	case TypeAllocated, TypeUndoLog, TypeInode, TypeFspHdr, TypeXdes, TypeBlob,
		TypeLobIndex, TypeLobData, TypeLobFirst, TypeSDI, TypeRTree, TypeIndex:
		return Type(v)
	default:
		return TypeUnknown
	}
}

// Header is the 38-byte page header.
type Header struct {
	Checksum uint32
	Offset   uint32 // page number within the tablespace
	Prev     uint32
	Next     uint32
	LSN      uint64
	PageType Type
	FlushLSN uint64
	SpaceID  uint32
}

// Trailer is the 8-byte page trailer.
type Trailer struct {
	OldChecksum uint32
	LSNLow32    uint32
}

// Page is a borrowed view over exactly Size bytes of raw page data. It does
// not copy buf; callers must not mutate buf while the Page is in use, and
// must not let the Page outlive whatever pin holds buf live (spec §9,
// "lifetime of page views").
type Page struct {
	raw    []byte
	Header Header
	Trailer Trailer
}

// TryFrom decodes buf into a Page. buf must be exactly Size bytes; any
// other length fails with an errs.InvalidLength error. The header and
// trailer always decode successfully — an out-of-enum page type simply
// becomes TypeUnknown (spec §4.1).
func TryFrom(buf []byte) (*Page, error) {
	if len(buf) != Size {
		return nil, errs.New(errs.InvalidLength, "page must be exactly %d bytes, got %d", Size, len(buf))
	}
	p := &Page{raw: buf}
	p.Header = Header{
		Checksum: binary.BigEndian.Uint32(buf[0:4]),
		Offset:   binary.BigEndian.Uint32(buf[4:8]),
		Prev:     binary.BigEndian.Uint32(buf[8:12]),
		Next:     binary.BigEndian.Uint32(buf[12:16]),
		LSN:      binary.BigEndian.Uint64(buf[16:24]),
		PageType: typeFromWire(binary.BigEndian.Uint16(buf[24:26])),
		FlushLSN: binary.BigEndian.Uint64(buf[26:34]),
		SpaceID:  binary.BigEndian.Uint32(buf[34:38]),
	}
	p.Trailer = Trailer{
		OldChecksum: binary.BigEndian.Uint32(buf[Size-TrailerSize : Size-TrailerSize+4]),
		LSNLow32:    binary.BigEndian.Uint32(buf[Size-4 : Size]),
	}
	return p, nil
}

// Raw returns the full underlying Size-byte buffer the Page borrows.
func (p *Page) Raw() []byte { return p.raw }

// Body returns the BodySize-byte payload between header and trailer.
func (p *Page) Body() []byte {
	return p.raw[HeaderSize : HeaderSize+BodySize]
}

// partialHeader returns bytes 4..(HeaderSize-12) of the page, the slice
// the checksum functions fold in place of the full header (spec §4.7
// excludes the stored checksum itself and the flush-LSN/space-id tail).
func (p *Page) partialHeader() []byte {
	return p.raw[4 : HeaderSize-12]
}

// ValidChecksum reports whether the stored header checksum equals either
// reference checksum function. Page framing never raises on mismatch
// itself (spec §4.1, §7) — callers decide whether to treat it as fatal.
// For TypeAllocated pages a zero stored checksum denotes an unused slot,
// not corruption, and is always considered valid.
func (p *Page) ValidChecksum() bool {
	if p.Header.PageType == TypeAllocated && p.Header.Checksum == 0 {
		return true
	}
	return p.Header.Checksum == p.CRC32Checksum() || p.Header.Checksum == p.InnoDBChecksum()
}
