package index

import (
	"encoding/binary"
	"testing"
)

// writeRecordHeader writes a 5-byte record header immediately before
// payloadOffset in buf.
func writeRecordHeader(buf []byte, payloadOffset int, infoFlags, nOwned uint8, heapOrder uint16, recType Type, nextOffset int16) {
	h := buf[payloadOffset-RecordHeaderSize : payloadOffset]
	h[0] = (infoFlags << 4) | (nOwned & 0x0F)
	packed := (heapOrder << 3) | uint16(recType)
	binary.BigEndian.PutUint16(h[1:3], packed)
	binary.BigEndian.PutUint16(h[3:5], uint16(nextOffset))
}

func TestScenarioA_EmptyIndexPageInfimum(t *testing.T) {
	buf := make([]byte, 16384)
	// Infimum payload at 99, next offset = 112 - 99 = 13.
	writeRecordHeader(buf, InfimumOffset, 0, 1, 0, TypeInfimum, 13)

	rec, err := At(buf, InfimumOffset)
	if err != nil {
		t.Fatalf("At(infimum): %v", err)
	}
	if rec.Header.RecordType != TypeInfimum {
		t.Errorf("RecordType = %v, want Infimum", rec.Header.RecordType)
	}
	if rec.Header.NextOffset != 13 {
		t.Errorf("NextOffset = %d, want 13", rec.Header.NextOffset)
	}
	if rec.Header.HeapOrder != 0 {
		t.Errorf("HeapOrder = %d, want 0", rec.Header.HeapOrder)
	}
	if rec.Header.RecordsOwned != 1 {
		t.Errorf("RecordsOwned = %d, want 1", rec.Header.RecordsOwned)
	}
	if rec.Header.MinRec || rec.Header.Deleted {
		t.Errorf("MinRec/Deleted should both be false")
	}

	next, err := rec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next == nil || next.PayloadOffset != SupremumOffset {
		t.Fatalf("Next() = %v, want record at %d", next, SupremumOffset)
	}
}

func TestSupremumHasNoNext(t *testing.T) {
	buf := make([]byte, 16384)
	writeRecordHeader(buf, SupremumOffset, 0, 1, 1, TypeSupremum, 0)

	rec, err := At(buf, SupremumOffset)
	if err != nil {
		t.Fatalf("At(supremum): %v", err)
	}
	next, err := rec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next != nil {
		t.Fatalf("Supremum.Next() = %v, want nil", next)
	}
}

func TestNextOffsetWrapToZeroIsTerminal(t *testing.T) {
	buf := make([]byte, 16384)
	// A conventional record whose next-offset computes to exactly 0.
	writeRecordHeader(buf, 200, 0, 1, 5, TypeConventional, int16(-200))

	rec, err := At(buf, 200)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	next, err := rec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next != nil {
		t.Fatalf("wrap-to-zero next offset must be terminal, got %v", next)
	}
}

func TestRecordTypeOutsideClosedEnumIsInvalidPage(t *testing.T) {
	buf := make([]byte, 16384)
	h := buf[200-RecordHeaderSize : 200]
	h[0] = 0x01
	// type field = 7, outside {0,1,2,3}.
	binary.BigEndian.PutUint16(h[1:3], 7)
	binary.BigEndian.PutUint16(h[3:5], 0)

	if _, err := At(buf, 200); err == nil {
		t.Fatalf("expected InvalidPage error for out-of-enum record type")
	}
}
