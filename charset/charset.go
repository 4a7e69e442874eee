/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package charset provides the single-byte fallback text decoder used when
// a FontResolver cannot answer UnicodeFor for a glyph code: WinAnsiEncoding,
// the PDF encoding nearest to CP1252.
//
// This is the one place in pdfredact that looks like a global mutable
// singleton (a decode table built once via sync.Once), by design: a
// stateless decode(bytes) -> string free function is the right shape for a
// fixed, read-only, 256-entry table, and hiding it behind a function keeps
// every caller from having to thread encoder state through the dispatcher.
package charset

import (
	"sync"

	"golang.org/x/text/encoding/charmap"
)

const bullet = '•'

var (
	once       sync.Once
	codeToRune [256]rune
)

// bullet replacements for WinAnsiEncoding code points that CP1252 leaves
// unused or non-visual; PDF 32000-1:2008 Annex D.2 maps these to '•'.
var replace = map[byte]rune{
	127: bullet,
	129: bullet,
	141: bullet,
	143: bullet,
	144: bullet,
	157: bullet,
	160: ' ', // non-breaking space -> space
	173: '-', // soft hyphen -> hyphen
}

func initTable() {
	enc := charmap.Windows1252
	for i := 0; i < 256; i++ {
		b := byte(i)
		r := enc.DecodeByte(b)
		if rp, ok := replace[b]; ok {
			r = rp
		}
		codeToRune[i] = r
	}
}

// Decode returns the rune WinAnsiEncoding assigns to byte code `b`.
func Decode(b byte) rune {
	once.Do(initTable)
	return codeToRune[b]
}

// DecodeString decodes each byte of `data` as a WinAnsiEncoding code point,
// the fallback path used when a font has no ToUnicode CMap and no named
// base encoding the FontResolver recognizes.
func DecodeString(data []byte) string {
	once.Do(initTable)
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = codeToRune[b]
	}
	return string(runes)
}
