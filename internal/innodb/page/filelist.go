package page

import "encoding/binary"

// FileAddressSize is the wire size of a FileAddress: a page number and an
// in-page byte offset.
const FileAddressSize = 6

// FileAddress locates a file-list node: a page number plus a byte offset
// within that page. The all-0xFFFFFFFF/0xFFFF pair denotes "no address".
type FileAddress struct {
	PageNumber uint32
	Offset     uint16
}

// IsNull reports whether addr is the sentinel "no address" value.
func (addr FileAddress) IsNull() bool {
	return addr.PageNumber == 0xFFFFFFFF && addr.Offset == 0xFFFF
}

// ParseFileAddress decodes a FileAddress from the first FileAddressSize
// bytes of buf.
func ParseFileAddress(buf []byte) FileAddress {
	return FileAddress{
		PageNumber: binary.BigEndian.Uint32(buf[0:4]),
		Offset:     binary.BigEndian.Uint16(buf[4:6]),
	}
}

// ListBaseNodeSize is the wire size of a ListBaseNode.
const ListBaseNodeSize = 16

// ListBaseNode is the head of a file-list chain: a node count plus the
// addresses of the first and last entries.
type ListBaseNode struct {
	Length uint32
	First  FileAddress
	Last   FileAddress
}

// ParseListBaseNode decodes a ListBaseNode from the first ListBaseNodeSize
// bytes of buf.
func ParseListBaseNode(buf []byte) ListBaseNode {
	return ListBaseNode{
		Length: binary.BigEndian.Uint32(buf[0:4]),
		First:  ParseFileAddress(buf[4:10]),
		Last:   ParseFileAddress(buf[10:16]),
	}
}

// ListInnerNodeSize is the wire size of a ListInnerNode.
const ListInnerNodeSize = 12

// ListInnerNode is an interior file-list node: addresses of the previous
// and next entries in the chain.
type ListInnerNode struct {
	Prev FileAddress
	Next FileAddress
}

// ParseListInnerNode decodes a ListInnerNode from the first
// ListInnerNodeSize bytes of buf.
func ParseListInnerNode(buf []byte) ListInnerNode {
	return ListInnerNode{
		Prev: ParseFileAddress(buf[0:6]),
		Next: ParseFileAddress(buf[6:12]),
	}
}
