package codec

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Package codec converts structured values to and from the single string
// payload a record carries. Each codec is pure: it holds no state and never
// touches storage.

var (
	// ErrDecode reports a payload that is not valid for the codec's format.
	ErrDecode = errors.New("decode error")
	// ErrEncode reports a value the codec's format cannot represent.
	ErrEncode = errors.New("encode error")
)

// Codec encodes values into record content and decodes them back.
type Codec interface {
	// Encode serializes v. It returns an error wrapping ErrEncode when v
	// cannot be represented in the format.
	Encode(v any) (string, error)
	// Decode parses s after sanitizing it. It returns an error wrapping
	// ErrDecode on invalid input and never returns partial data.
	Decode(s string) (any, error)
	// MediaType is the MIME type of encoded content.
	MediaType() string
}

const bom = "\uFEFF"

// Sanitize strips what upstream editors tend to inject into stored payloads:
// a leading UTF-8 byte order mark, ASCII control characters (0-31 and 127)
// and invalid UTF-8. Input that is not valid UTF-8 is reinterpreted as
// Windows-1252 before the result is NFC-normalized.
//
// When keepLineBreaks is set, tab, line feed and carriage return survive so
// that line-oriented formats keep their structure.
func Sanitize(s string, keepLineBreaks bool) string {
	s = strings.TrimPrefix(s, bom)
	if !utf8.ValidString(s) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
			s = decoded
		} else {
			s = strings.ToValidUTF8(s, "")
		}
		s = strings.TrimPrefix(s, bom)
	}
	s = norm.NFC.String(s)

	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			if keepLineBreaks && (r == '\t' || r == '\n' || r == '\r') {
				return r
			}
			return -1
		}
		return r
	}, s)
}
