package fsx

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "windows-1252"

// Charset maps stream bytes to runes. FSX text is single byte per character,
// anything which does not map to exactly one rune becomes utf8.RuneError.
type Charset struct {
	name  string
	table [256]rune
}

// NewCharset builds byte table for the encoding.
func NewCharset(name string, enc encoding.Encoding) *Charset {
	cs := &Charset{name: name}
	dec := enc.NewDecoder()
	for i := range cs.table {
		cs.table[i] = utf8.RuneError
		out, err := dec.Bytes([]byte{byte(i)})
		if err != nil {
			continue
		}
		if r, size := utf8.DecodeRune(out); size == len(out) && size > 0 {
			cs.table[i] = r
		}
	}
	return cs
}

// LookupCharset finds encoding by its WHATWG/IANA label, empty label selects
// DefaultEncoding.
func LookupCharset(label string) (*Charset, error) {
	label = strings.TrimSpace(label)
	if len(label) == 0 || strings.EqualFold(label, DefaultEncoding) {
		return NewCharset(DefaultEncoding, charmap.Windows1252), nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", label)
	}
	return NewCharset(name, enc), nil
}

// Name returns canonical name of the encoding.
func (cs *Charset) Name() string {
	return cs.name
}

// Rune returns character for byte.
func (cs *Charset) Rune(b byte) rune {
	return cs.table[b]
}

// Decode converts bytes to string one byte at a time.
func (cs *Charset) Decode(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(cs.table[b])
	}
	return sb.String()
}
