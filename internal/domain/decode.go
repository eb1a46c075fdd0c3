package domain

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errInvalidUTF8 = errors.New("invalid utf-8")

// headerDecoder converts raw header bytes to text or rejects them.
type headerDecoder struct {
	name   string
	decode func([]byte) (string, error)
}

// headerDecoders are tried in order; the first success wins.
var headerDecoders = []headerDecoder{
	{name: "utf-8", decode: decodeUTF8},
	{name: "iso-8859-1", decode: decodeLatin1},
}

// DecodeHeader converts fetched header bytes to text. It never fails: when no
// candidate encoding accepts the input, invalid sequences are replaced.
func DecodeHeader(raw []byte) string {
	text, _ := DecodeHeaderWithEncoding(raw)
	return text
}

// DecodeHeaderWithEncoding is DecodeHeader that also reports which encoding
// produced the text ("lossy" for the replacement fallback).
func DecodeHeaderWithEncoding(raw []byte) (string, string) {
	for _, d := range headerDecoders {
		if text, err := d.decode(raw); err == nil {
			return text, d.name
		}
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), "lossy"
}

// decodeUTF8 accepts strict UTF-8 with an optional BOM. A multi-byte rune cut
// off by the byte budget at the very end is dropped rather than rejected.
func decodeUTF8(raw []byte) (string, error) {
	b := bytes.TrimPrefix(raw, utf8BOM)
	b = trimPartialRune(b)
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return string(b), nil
}

func decodeLatin1(raw []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of b.
func trimPartialRune(b []byte) []byte {
	// A rune is at most 4 bytes, so only the last 3 can start a cut sequence.
	for i := 1; i <= 3 && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < utf8.RuneSelf {
			return b
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}
