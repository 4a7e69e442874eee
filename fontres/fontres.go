/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package fontres declares the font-metrics collaborator the redaction
// core consults to turn show-text operands into positioned glyphs. A host
// application owns real font programs and embeds its own implementation;
// this package only defines the interface and a couple of simple value
// types shared across it.
package fontres

// Letter is one decoded glyph FontResolver.Letters reports for a run of
// show-text bytes.
type Letter struct {
	// Codepoint is the Unicode code point this glyph represents.
	Codepoint rune
	// ByteOffset is the glyph's starting offset within the source bytes
	// passed to Letters.
	ByteOffset int
	// ByteLength is the number of source bytes this glyph consumed (1 for
	// simple fonts, 2 for most CID fonts, more for exotic multi-byte
	// CMaps).
	ByteLength int
	// Width0 is the glyph's horizontal displacement in glyph space
	// (thousandths of text space units), the w0 term of the glyph advance
	// formula.
	Width0 float64
	// IsSpace is true iff this glyph's source bytes were the single byte
	// 0x20 -- word spacing (Tw) only ever applies to that exact code.
	IsSpace bool
}

// Resolver is the font-metrics collaborator consumed by csparse and
// redact. Implementations are expected to cache whatever embedded font
// program parsing they need; csparse calls Letters once per string
// operand of a show-text operator (a TJ array can hold several), and
// nothing in pdfredact calls the other methods.
type Resolver interface {
	// Letters decomposes `data`, the raw bytes of a Tj/TJ string operand
	// shown with font `fontID`, into its constituent glyphs in byte
	// order.
	Letters(fontID string, data []byte) ([]Letter, error)

	// UnicodeFor returns the best-effort Unicode text for `data` when a
	// caller only needs the decoded string and not per-glyph geometry
	// (e.g. to report a RedactionReport's audit trail of redacted text).
	UnicodeFor(fontID string, data []byte) (string, error)

	// IsCIDFont reports whether `fontID` is a composite (CID-keyed) font,
	// whose show-text strings are conventionally written as hex strings
	// and must not be re-encoded as literal strings by the writer.
	IsCIDFont(fontID string) bool

	// AdvanceWidth returns the glyph-space (thousandths of an em) advance
	// width of a single code in `fontID`, used when the decider needs to
	// recompute spacing for a partially-redacted run.
	AdvanceWidth(fontID string, codepoint rune) (float64, error)
}

// ErrUnknownFont is returned (or wrapped) by a Resolver implementation
// when `fontID` is not present in the page's font resources. csparse
// treats this as the UnknownFont recoverable condition: it falls back to
// charset.DecodeString and records a warning instead of aborting the page.
var ErrUnknownFont = unknownFontError("fontres: unknown font")

type unknownFontError string

func (e unknownFontError) Error() string { return string(e) }
