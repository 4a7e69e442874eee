/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package simplefont is a minimal fontres.Resolver used only by this
// module's own tests: a handful of named fonts with explicit per-byte (or,
// for CID fonts, per-byte-pair) widths, enough to exercise glyph-level
// redaction and CID hex-string preservation end to end without embedding a
// real font program.
package simplefont

import (
	"github.com/pdfredact/pdfredact/fontres"
)

// Font is one simulated font: either a simple, single-byte-per-glyph font
// with a Widths table keyed by byte value, or a CID font addressed two
// bytes per glyph under the Identity encoding (codepoint == code).
type Font struct {
	CID    bool
	Widths map[rune]float64 // keyed by codepoint; default 500 if absent
}

// Resolver is a fontres.Resolver backed by a fixed table of Fonts.
type Resolver struct {
	Fonts map[string]Font
}

// New returns a Resolver over `fonts`, keyed by resource name (the operand
// of the Tf operator that selects them).
func New(fonts map[string]Font) *Resolver {
	return &Resolver{Fonts: fonts}
}

func (r *Resolver) font(fontID string) (Font, error) {
	f, ok := r.Fonts[fontID]
	if !ok {
		return Font{}, fontres.ErrUnknownFont
	}
	return f, nil
}

// Letters implements fontres.Resolver.
func (r *Resolver) Letters(fontID string, data []byte) ([]fontres.Letter, error) {
	f, err := r.font(fontID)
	if err != nil {
		return nil, err
	}
	if f.CID {
		var out []fontres.Letter
		for i := 0; i+1 < len(data); i += 2 {
			code := rune(data[i])<<8 | rune(data[i+1])
			out = append(out, fontres.Letter{
				Codepoint:  code,
				ByteOffset: i,
				ByteLength: 2,
				Width0:     f.widthOf(code),
				IsSpace:    false,
			})
		}
		return out, nil
	}
	out := make([]fontres.Letter, len(data))
	for i, b := range data {
		cp := rune(b)
		out[i] = fontres.Letter{
			Codepoint:  cp,
			ByteOffset: i,
			ByteLength: 1,
			Width0:     f.widthOf(cp),
			IsSpace:    b == ' ',
		}
	}
	return out, nil
}

func (f Font) widthOf(cp rune) float64 {
	if w, ok := f.Widths[cp]; ok {
		return w
	}
	return 500
}

// UnicodeFor implements fontres.Resolver.
func (r *Resolver) UnicodeFor(fontID string, data []byte) (string, error) {
	letters, err := r.Letters(fontID, data)
	if err != nil {
		return "", err
	}
	runes := make([]rune, len(letters))
	for i, l := range letters {
		runes[i] = l.Codepoint
	}
	return string(runes), nil
}

// IsCIDFont implements fontres.Resolver.
func (r *Resolver) IsCIDFont(fontID string) bool {
	f, err := r.font(fontID)
	return err == nil && f.CID
}

// AdvanceWidth implements fontres.Resolver.
func (r *Resolver) AdvanceWidth(fontID string, codepoint rune) (float64, error) {
	f, err := r.font(fontID)
	if err != nil {
		return 0, err
	}
	return f.widthOf(codepoint), nil
}
