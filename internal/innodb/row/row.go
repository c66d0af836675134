// Package row implements the row reconstructor and its field codec: the
// backward null-bitmap/variable-length prescan, the forward field decode
// (integers with sign-flip, dates, enums, char/text), and extern-
// reference recovery through a buffer manager.
package row

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/tinyforensics/innodbrecover/internal/diag"
	"github.com/tinyforensics/innodbrecover/internal/innodb/buffer"
	"github.com/tinyforensics/innodbrecover/internal/innodb/errs"
	"github.com/tinyforensics/innodbrecover/internal/innodb/index"
	"github.com/tinyforensics/innodbrecover/internal/innodb/lob"
	"github.com/tinyforensics/innodbrecover/internal/innodb/table"
)

// HiddenColumnsSize is the width of the hidden system columns inserted
// between cluster and data columns: a 6-byte transaction id plus a
// 7-byte roll pointer.
const HiddenColumnsSize = 13

// Value is one decoded field. Exactly the member matching the column's
// Kind is meaningful unless Null or Skipped is set.
type Value struct {
	Null    bool
	Skipped bool // extern recovery failed; other fields remain decodable

	Int     int64
	Uint    uint64
	Float32 float32
	Float64 float64
	Str     string
}

// Row is the decoded, ordered field values of one conventional clustered
// record: cluster columns followed by data columns.
type Row struct {
	Values []Value
}

// Decoder reconstructs Rows from conventional records against a fixed
// table.Definition, pinning LOB pages through Manager when a field is
// externally stored.
type Decoder struct {
	Manager buffer.Manager
	SpaceID uint32
	Log     *diag.Logger
}

// NewDecoder constructs a Decoder. log may be nil, in which case a
// discarding logger is used.
func NewDecoder(mgr buffer.Manager, spaceID uint32, log *diag.Logger) *Decoder {
	if log == nil {
		log = diag.Discard()
	}
	return &Decoder{Manager: mgr, SpaceID: spaceID, Log: log}
}

// prescan holds the backward-scan results: per-field null flag and
// per-field decoded variable-length (for variable-length fields only).
type prescan struct {
	null   []bool
	varLen []int
}

// Decode builds a Row from a conventional record against def (spec §4.4).
func (d *Decoder) Decode(def *table.Definition, rec *index.Record) (*Row, error) {
	if rec.Header.RecordType != index.TypeConventional {
		return nil, errs.New(errs.InvalidPage, "cannot decode a %s record as a row", rec.Header.RecordType)
	}
	cols := def.AllColumns()
	body := rec.Body()

	ps, err := backwardScan(body, rec.PayloadOffset, cols)
	if err != nil {
		return nil, err
	}

	values := make([]Value, len(cols))
	pos := rec.PayloadOffset
	for i, col := range cols {
		if i == len(def.ClusterColumns) {
			pos += HiddenColumnsSize
		}
		v, n, err := d.decodeField(body, pos, col, ps, i)
		if err != nil {
			return nil, err
		}
		values[i] = v
		pos += n
	}

	return &Row{Values: values}, nil
}

// backwardScan performs the null-bitmap then variable-length-header
// prescan, walking backwards from recordHeaderStart = payloadOffset -
// index.RecordHeaderSize (spec §4.4 steps 1-2).
func backwardScan(body []byte, payloadOffset int, cols []table.Column) (prescan, error) {
	nullableCount := 0
	for _, c := range cols {
		if c.Nullable {
			nullableCount++
		}
	}
	bitmapBytes := (nullableCount + 7) / 8

	cursor := payloadOffset - index.RecordHeaderSize

	nullFlags := make([]bool, nullableCount)
	for i := 0; i < bitmapBytes; i++ {
		bytePos := cursor - 1 - i
		if bytePos < 0 {
			return prescan{}, errs.New(errs.InvalidPage, "null bitmap reaches before start of page body")
		}
		b := body[bytePos]
		for bit := 0; bit < 8; bit++ {
			idx := i*8 + bit
			if idx >= nullableCount {
				break
			}
			nullFlags[idx] = (b>>uint(bit))&1 != 0
		}
	}
	cursor -= bitmapBytes

	null := make([]bool, len(cols))
	ni := 0
	for i, c := range cols {
		if c.Nullable {
			null[i] = nullFlags[ni]
			ni++
		}
	}

	varLen := make([]int, len(cols))
	for i, c := range cols {
		if !c.Type.IsVariableLength() || null[i] {
			continue
		}
		if cursor-1 < 0 {
			return prescan{}, errs.New(errs.InvalidPage, "variable-length header reaches before start of page body")
		}
		b1 := body[cursor-1]
		cursor--
		var length int
		if c.Type.MaxLen() > 255 && b1&0x80 != 0 {
			if cursor-1 < 0 {
				return prescan{}, errs.New(errs.InvalidPage, "variable-length header reaches before start of page body")
			}
			b2 := body[cursor-1]
			cursor--
			tmp := uint16(b1)<<8 | uint16(b2)
			length = int(tmp & 0x3FFF)
			// The externally-stored flag (tmp&0x4000) is folded into
			// varLen here; isExtern below decodes it.
			varLen[i] = length
			if tmp&0x4000 != 0 {
				varLen[i] = -length - 1 // sentinel-encode "extern" without a parallel bool slice
			}
			continue
		}
		length = int(b1)
		varLen[i] = length
	}

	return prescan{null: null, varLen: varLen}, nil
}

func isExtern(v int) (length int, extern bool) {
	if v < 0 {
		return -v - 1, true
	}
	return v, false
}

// decodeField decodes the value of cols[i] at body[pos:], returning the
// number of bytes consumed on the forward pass.
func (d *Decoder) decodeField(body []byte, pos int, col table.Column, ps prescan, i int) (Value, int, error) {
	if ps.null[i] {
		return Value{Null: true}, 0, nil
	}

	switch col.Type.Kind {
	case table.KindInt:
		w := col.Type.IntWidth
		if pos+w > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "integer field %q overruns record", col.Name)
		}
		raw := body[pos : pos+w]
		if col.Type.Signed {
			return Value{Int: decodeSignedInt(raw)}, w, nil
		}
		return Value{Uint: decodeUnsignedInt(raw)}, w, nil

	case table.KindFloat32:
		if pos+4 > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "float32 field %q overruns record", col.Name)
		}
		bits := binary.BigEndian.Uint32(body[pos : pos+4])
		return Value{Float32: math.Float32frombits(bits)}, 4, nil

	case table.KindFloat64:
		if pos+8 > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "float64 field %q overruns record", col.Name)
		}
		bits := binary.BigEndian.Uint64(body[pos : pos+8])
		return Value{Float64: math.Float64frombits(bits)}, 8, nil

	case table.KindChar:
		n := col.Type.Len
		if pos+n > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "char field %q overruns record", col.Name)
		}
		raw := trimTrailingSpace(body[pos : pos+n])
		s, err := col.Type.Charset.Decode(raw)
		if err != nil {
			return Value{}, 0, fmt.Errorf("decode char field %q: %w", col.Name, err)
		}
		if !utf8.ValidString(s) {
			return Value{}, 0, errs.New(errs.InvalidPage, "char field %q is not valid UTF-8", col.Name)
		}
		return Value{Str: s}, n, nil

	case table.KindText:
		length, extern := isExtern(ps.varLen[i])
		if extern {
			if pos+lob.ExternReferenceSize > len(body) {
				return Value{}, 0, errs.New(errs.InvalidPage, "extern reference for %q overruns record", col.Name)
			}
			ref := lob.ParseExternReference(body[pos : pos+lob.ExternReferenceSize])
			raw, err := lob.Follow(d.Manager, ref.SpaceID, ref.PageNumber, int(ref.Length))
			if err != nil {
				d.Log.Printf("extern field %q recovery failed: %v", col.Name, err)
				return Value{Skipped: true}, lob.ExternReferenceSize, nil
			}
			s, derr := col.Type.Charset.Decode(raw)
			if derr != nil {
				return Value{}, 0, fmt.Errorf("decode text field %q: %w", col.Name, derr)
			}
			return Value{Str: s}, lob.ExternReferenceSize, nil
		}
		if pos+length > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "text field %q overruns record", col.Name)
		}
		raw := body[pos : pos+length]
		s, err := col.Type.Charset.Decode(raw)
		if err != nil {
			return Value{}, 0, fmt.Errorf("decode text field %q: %w", col.Name, err)
		}
		if !utf8.ValidString(s) {
			return Value{}, 0, errs.New(errs.InvalidPage, "text field %q is not valid UTF-8", col.Name)
		}
		return Value{Str: s}, length, nil

	case table.KindEnum:
		w := col.Type.FixedWidth()
		if pos+w > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "enum field %q overruns record", col.Name)
		}
		var v uint64
		for _, b := range body[pos : pos+w] {
			v = v<<8 | uint64(b)
		}
		if v == 0 {
			return Value{Str: ""}, w, nil
		}
		idx := int(v) - 1
		if idx < 0 || idx >= len(col.Type.Labels) {
			return Value{}, 0, errs.New(errs.InvalidPage, "enum field %q value %d outside label set", col.Name, v)
		}
		return Value{Str: col.Type.Labels[idx]}, w, nil

	case table.KindDate:
		if pos+3 > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "date field %q overruns record", col.Name)
		}
		return Value{Str: decodeDate(body[pos : pos+3])}, 3, nil

	case table.KindDateTime:
		if pos+8 > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "datetime field %q overruns record", col.Name)
		}
		return Value{Str: decodeDateTime(body[pos : pos+8])}, 8, nil

	case table.KindTimestamp:
		if pos+4 > len(body) {
			return Value{}, 0, errs.New(errs.InvalidPage, "timestamp field %q overruns record", col.Name)
		}
		return Value{Str: decodeTimestamp(body[pos : pos+4])}, 4, nil

	default:
		return Value{}, 0, errs.New(errs.InvalidPage, "field %q has unrecognised type kind %s", col.Name, col.Type.Kind)
	}
}

func trimTrailingSpace(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return b[:end]
}

// decodeUnsignedInt reads raw as a plain big-endian unsigned integer.
func decodeUnsignedInt(raw []byte) uint64 {
	var u uint64
	for _, b := range raw {
		u = u<<8 | uint64(b)
	}
	return u
}

// decodeSignedInt implements the sign-flip rule of spec §4.4: XOR the
// sign bit, then reinterpret the result as a two's-complement integer of
// the same width.
func decodeSignedInt(raw []byte) int64 {
	width := len(raw)
	u := decodeUnsignedInt(raw)
	signBit := uint64(1) << uint(width*8-1)
	flipped := u ^ signBit
	if flipped&signBit != 0 {
		return int64(flipped) - int64(uint64(1)<<uint(width*8))
	}
	return int64(flipped)
}

// decodeDate decodes a 3-byte signed Date: sign-flip, then extract
// day (bits 0..4), month (bits 5..8), year (bits 9+) — spec §4.4.
func decodeDate(raw []byte) string {
	u := uint32(raw[0])<<16 | uint32(raw[1])<<8 | uint32(raw[2])
	v := u ^ (1 << 23)
	day := v & 0x1F
	month := (v >> 5) & 0xF
	year := v >> 9
	if year == 0 && month == 0 && day == 0 {
		return "0000-00-00"
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// decodeDateTime decodes an 8-byte DateTime per the shifts of spec §4.4.
func decodeDateTime(raw []byte) string {
	u := binary.BigEndian.Uint64(raw)
	v := u ^ (1 << 63)
	yd := v >> 46
	year := yd / 13
	month := yd - year*13
	day := (v >> 41) & 0x1F
	hour := (v >> 36) & 0x1F
	minute := (v >> 30) & 0x3F
	second := (v >> 24) & 0x3F
	if year == 0 && month == 0 && day == 0 && hour == 0 && minute == 0 && second == 0 {
		return "0000-00-00 00:00:00"
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second)
}

// decodeTimestamp decodes a 4-byte unsigned UNIX epoch. 0 is the literal
// zero timestamp, not an error (spec §4.4).
func decodeTimestamp(raw []byte) string {
	epoch := binary.BigEndian.Uint32(raw)
	if epoch == 0 {
		return "0000-00-00 00:00:00"
	}
	t := unixUTC(int64(epoch))
	return t
}
