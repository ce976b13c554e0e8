package ocrad

import (
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/ocrkit/textline"
	"github.com/wudi/ocrkit/ucs"
)

// renderLine renders a Textline's first guess per character as text, either
// UTF-8 or a single-byte charset encoding (spec §6 "Text output").
func renderLine(tl *textline.Textline, utf8 bool) (string, error) {
	var runes []rune
	for i := 0; i < tl.Characters(); i++ {
		c := tl.Character(i)
		if len(c.Guesses) == 0 {
			continue
		}
		runes = append(runes, c.Guesses[0].Code)
	}

	if utf8 {
		var sb strings.Builder
		for _, r := range runes {
			sb.WriteString(ucs.ToUTF8(r))
		}
		return sb.String(), nil
	}
	return encodeSingleByte(runes)
}

// encodeSingleByte writes runes below 0x80 as ASCII and every other rune
// through the ISO-8859-15 table, whatever charset produced it; a rune that
// table cannot encode is written as ucs.MapToByte's substitute.
func encodeSingleByte(runes []rune) (string, error) {
	buf := make([]byte, 0, len(runes))
	for _, r := range runes {
		if r < 0x80 {
			buf = append(buf, byte(r))
			continue
		}
		enc, err := encodeISO885915(r)
		if err != nil {
			buf = append(buf, ucs.MapToByte(r))
			continue
		}
		buf = append(buf, enc)
	}
	return string(buf), nil
}

// encodeISO885915 maps a Unicode code point to its ISO-8859-15 byte value
// using the charmap encoder table, falling back to an error the caller
// turns into ucs.MapToByte's best-effort substitution.
func encodeISO885915(r rune) (byte, error) {
	b, ok := charmap.ISO8859_15.EncodeRune(r)
	if !ok {
		return 0, errUnencodable
	}
	return b, nil
}

var errUnencodable = unencodableError{}

type unencodableError struct{}

func (unencodableError) Error() string { return "code point has no single-byte encoding" }
