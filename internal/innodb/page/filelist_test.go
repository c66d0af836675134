package page

import (
	"encoding/binary"
	"testing"
)

func TestFileAddressIsNull(t *testing.T) {
	null := FileAddress{PageNumber: 0xFFFFFFFF, Offset: 0xFFFF}
	if !null.IsNull() {
		t.Errorf("sentinel FileAddress reported as non-null")
	}
	real := FileAddress{PageNumber: 7, Offset: 99}
	if real.IsNull() {
		t.Errorf("real FileAddress reported as null")
	}
}

func TestParseFileAddress(t *testing.T) {
	buf := make([]byte, FileAddressSize)
	binary.BigEndian.PutUint32(buf[0:4], 42)
	binary.BigEndian.PutUint16(buf[4:6], 128)
	got := ParseFileAddress(buf)
	want := FileAddress{PageNumber: 42, Offset: 128}
	if got != want {
		t.Errorf("ParseFileAddress = %+v, want %+v", got, want)
	}
}

func TestParseListBaseNode(t *testing.T) {
	buf := make([]byte, ListBaseNodeSize)
	binary.BigEndian.PutUint32(buf[0:4], 3)
	binary.BigEndian.PutUint32(buf[4:8], 10)
	binary.BigEndian.PutUint16(buf[8:10], 20)
	binary.BigEndian.PutUint32(buf[10:14], 30)
	binary.BigEndian.PutUint16(buf[14:16], 40)

	got := ParseListBaseNode(buf)
	want := ListBaseNode{
		Length: 3,
		First:  FileAddress{PageNumber: 10, Offset: 20},
		Last:   FileAddress{PageNumber: 30, Offset: 40},
	}
	if got != want {
		t.Errorf("ParseListBaseNode = %+v, want %+v", got, want)
	}
}

func TestParseListInnerNode(t *testing.T) {
	buf := make([]byte, ListInnerNodeSize)
	binary.BigEndian.PutUint32(buf[0:4], 1)
	binary.BigEndian.PutUint16(buf[4:6], 2)
	binary.BigEndian.PutUint32(buf[6:10], 3)
	binary.BigEndian.PutUint16(buf[10:12], 4)

	got := ParseListInnerNode(buf)
	want := ListInnerNode{
		Prev: FileAddress{PageNumber: 1, Offset: 2},
		Next: FileAddress{PageNumber: 3, Offset: 4},
	}
	if got != want {
		t.Errorf("ParseListInnerNode = %+v, want %+v", got, want)
	}
}
