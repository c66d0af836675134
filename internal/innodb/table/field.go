// Package table defines the closed field-type enum and table/column
// metadata the row decoder consumes. A SQL CREATE TABLE parser populating
// a Definition is out of this module's scope (spec §1); this package only
// describes the shape such a parser fills in.
package table

import "fmt"

// Kind is the closed set of field types a column may have (spec §3).
type Kind int

const (
	KindInt Kind = iota
	KindFloat32
	KindFloat64
	KindChar
	KindText
	KindEnum
	KindDate
	KindDateTime
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindChar:
		return "Char"
	case KindText:
		return "Text"
	case KindEnum:
		return "Enum"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindTimestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type fully describes a column's wire encoding.
type Type struct {
	Kind Kind

	// Int: width in bytes, one of {1,2,3,4,6,8}; Signed selects the
	// sign-flip decoding of spec §4.4.
	IntWidth int
	Signed   bool

	// Char/Text: Len is the declared character length; Charset supplies
	// max_bytes_per_char. MaxLen = Len * Charset.MaxBytesPerChar.
	Len     int
	Charset Charset

	// Enum: the ordered label list; wire value k>0 maps to Labels[k-1].
	Labels []string
}

// IsVariableLength reports whether this type's wire length is read from
// the variable-length field header rather than being fixed (spec §4.4
// step 2: Text is variable-length; Char is fixed).
func (t Type) IsVariableLength() bool {
	return t.Kind == KindText
}

// MaxLen is the maximum wire byte length for Char/Text fields.
func (t Type) MaxLen() int {
	return t.Len * t.Charset.MaxBytesPerChar
}

// FixedWidth returns the fixed wire byte width of non-variable-length
// types, or 0 for variable-length types (Text) whose width is read from
// the variable-length header instead.
func (t Type) FixedWidth() int {
	switch t.Kind {
	case KindInt:
		return t.IntWidth
	case KindFloat32:
		return 4
	case KindFloat64:
		return 8
	case KindChar:
		return t.Len
	case KindDate:
		return 3
	case KindDateTime:
		return 8
	case KindTimestamp:
		return 4
	case KindEnum:
		if len(t.Labels) <= 255 {
			return 1
		}
		return 2
	default:
		return 0
	}
}

// Column is one named, typed, nullable field of a Definition.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Definition is the schema a raw clustered-index record is decoded
// against: an ordered clustering key plus an ordered list of non-key
// columns (spec §3).
type Definition struct {
	Name           string
	ClusterColumns []Column
	DataColumns    []Column
}

// AllColumns returns cluster columns followed by data columns, the order
// values are decoded and reported in (spec §4.4 step 3).
func (d *Definition) AllColumns() []Column {
	out := make([]Column, 0, len(d.ClusterColumns)+len(d.DataColumns))
	out = append(out, d.ClusterColumns...)
	out = append(out, d.DataColumns...)
	return out
}

// NewInt builds an Int Type of the given width and signedness.
func NewInt(width int, signed bool) Type {
	return Type{Kind: KindInt, IntWidth: width, Signed: signed}
}

// NewChar builds a fixed-width Char Type.
func NewChar(length int, cs Charset) Type {
	return Type{Kind: KindChar, Len: length, Charset: cs}
}

// NewText builds a variable-width Text Type.
func NewText(length int, cs Charset) Type {
	return Type{Kind: KindText, Len: length, Charset: cs}
}

// NewEnum builds an Enum Type over the given ordered labels.
func NewEnum(labels []string) Type {
	return Type{Kind: KindEnum, Labels: labels}
}
