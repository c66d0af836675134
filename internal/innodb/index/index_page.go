// Package index implements the B+tree index-page layer: the 36-byte index
// header, the infimum/supremum sentinels, and record traversal by
// following each record's next-offset delta rather than a slot directory.
package index

import (
	"encoding/binary"

	"github.com/tinyforensics/innodbrecover/internal/innodb/errs"
	"github.com/tinyforensics/innodbrecover/internal/innodb/page"
)

// HeaderSize is the wire size of the index header.
const HeaderSize = 36

// InfimumOffset and SupremumOffset are fixed absolute page offsets: the
// Compact/new-format page layout places the infimum record's payload at
// byte 99 and the supremum record's payload at byte 112, regardless of the
// index header contents (the real engine's constants; on an empty page
// the infimum's next-offset delta of 13 lands on 99 + 13 = 112).
const (
	InfimumOffset  = 99
	SupremumOffset = 112
)

// Format is the record-format flag carried in the top bit of the
// heap-record-count field.
type Format int

const (
	FormatRedundant Format = iota
	FormatCompact
)

// Header is the 36-byte index-page header (spec §3, §4.2).
type Header struct {
	NumDirSlots      uint16
	HeapTop          uint16
	Format           Format
	NumHeapRecords   uint16 // lower 15 bits of the packed field
	FirstGarbage     uint16
	GarbageSpace     uint16
	LastInsert       uint16
	PageDirection    uint16
	NumInDirection   uint16
	NumRecords       uint16
	MaxTransactionID uint64
	PageLevel        uint16 // nonzero = internal node
	IndexID          uint64
}

func parseHeader(buf []byte) Header {
	packed := binary.BigEndian.Uint16(buf[4:6])
	var h Header
	h.NumDirSlots = binary.BigEndian.Uint16(buf[0:2])
	h.HeapTop = binary.BigEndian.Uint16(buf[2:4])
	if packed&0x8000 != 0 {
		h.Format = FormatRedundant
	} else {
		h.Format = FormatCompact
	}
	h.NumHeapRecords = packed & 0x7FFF
	h.FirstGarbage = binary.BigEndian.Uint16(buf[6:8])
	h.GarbageSpace = binary.BigEndian.Uint16(buf[8:10])
	h.LastInsert = binary.BigEndian.Uint16(buf[10:12])
	h.PageDirection = binary.BigEndian.Uint16(buf[12:14])
	h.NumInDirection = binary.BigEndian.Uint16(buf[14:16])
	h.NumRecords = binary.BigEndian.Uint16(buf[16:18])
	h.MaxTransactionID = binary.BigEndian.Uint64(buf[18:26])
	h.PageLevel = binary.BigEndian.Uint16(buf[26:28])
	h.IndexID = binary.BigEndian.Uint64(buf[28:36])
	return h
}

// IsLeaf reports whether this page is a B+tree leaf (page level 0).
func (h Header) IsLeaf() bool { return h.PageLevel == 0 }

// Page wraps a page.Page already validated as an Index page and exposes
// its index header and record traversal entry points.
type Page struct {
	raw    *page.Page
	Header Header
}

// Wrap validates that p's header type is page.TypeIndex and decodes its
// index header.
func Wrap(p *page.Page) (*Page, error) {
	if p.Header.PageType != page.TypeIndex {
		return nil, errs.New(errs.InvalidPageType, "expected Index page, got %s", p.Header.PageType)
	}
	buf := p.Raw()
	h := parseHeader(buf[page.HeaderSize : page.HeaderSize+HeaderSize])
	return &Page{raw: p, Header: h}, nil
}

// Underlying returns the wrapped page.Page.
func (ip *Page) Underlying() *page.Page { return ip.raw }

// Infimum returns the distinguished first record of the page.
func (ip *Page) Infimum() (*Record, error) {
	return At(ip.raw.Raw(), InfimumOffset)
}
