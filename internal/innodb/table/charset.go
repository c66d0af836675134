package table

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Charset describes one column character set: how many bytes its widest
// character can occupy (used to compute Type.MaxLen) and, when it isn't
// already UTF-8, the real x/text encoding used to transcode stored bytes
// into UTF-8 before the strict UTF-8 validation spec §4.4 requires.
type Charset struct {
	Name            string
	MaxBytesPerChar int
	enc             encoding.Encoding // nil means the charset already is UTF-8
}

// Decode transcodes raw bytes in this charset into a UTF-8 string. For
// charsets that are already UTF-8 (utf8, utf8mb4) it is a pass-through;
// callers still apply strict UTF-8 validation afterwards.
func (c Charset) Decode(raw []byte) (string, error) {
	if c.enc == nil {
		return string(raw), nil
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// The default table-level charset is ASCII (spec §6).
var (
	ASCII   = Charset{Name: "ascii", MaxBytesPerChar: 1, enc: charmap.ISO8859_1}
	Latin1  = Charset{Name: "latin1", MaxBytesPerChar: 1, enc: charmap.ISO8859_1}
	UTF8    = Charset{Name: "utf8", MaxBytesPerChar: 3} // MySQL's historical 3-byte "utf8"
	UTF8MB4 = Charset{Name: "utf8mb4", MaxBytesPerChar: 4}
	UCS2    = Charset{Name: "ucs2", MaxBytesPerChar: 2, enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
)

var byName = map[string]Charset{
	ASCII.Name:   ASCII,
	Latin1.Name:  Latin1,
	UTF8.Name:    UTF8,
	UTF8MB4.Name: UTF8MB4,
	UCS2.Name:    UCS2,
}

// LookupCharset resolves a charset by its SQL name, defaulting to ASCII
// (spec §6: "default is ASCII") when name is empty or unrecognised.
func LookupCharset(name string) Charset {
	if cs, ok := byName[name]; ok {
		return cs
	}
	return ASCII
}
