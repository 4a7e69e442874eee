/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package csparse implements the operator dispatcher that turns a tokenized
// content stream into a sequence of typed Operations, threading them
// through a gstate.State graphics/text-state machine exactly as a PDF
// viewer would interpret them.
package csparse

import (
	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/token"
)

// Operation is one instruction of a parsed content stream: the operator
// keyword, its operand tokens in source order, and a derived payload that
// depends on which operator it was. Exactly one of the pointer fields
// below is non-nil, except for operators that carry no extra derived
// state (most color and marked-content operators), which leave all of
// them nil and are represented purely by Operator/Operands -- the
// "Generic" case.
//
// A common header plus a derived-payload field lets the decider and
// writer both work off the resolved bounding box and graphics state a raw
// operand list does not carry on its own, without leaving all
// interpretation to downstream code.
type Operation struct {
	Operator string
	Operands []token.Token

	// StreamIndex is this operation's position in the stream it was
	// parsed from; it increases strictly monotonically. The decider keeps
	// surviving operations in this order (a rewritten operation keeps its
	// original index), and the writer emits the slice in order without
	// re-sorting.
	StreamIndex int

	// InsideTextObject is true if this operation occurred between a BT and
	// its matching ET.
	InsideTextObject bool

	// BBox is the operation's bounding box in page (device) space, when
	// one is meaningful (text-showing, path-painting, image and form
	// operators); nil otherwise.
	BBox *gstate.Rectangle

	// NeedsFontInjection is set by redact.Decide when it rewrites a ' or "
	// operation into a TJ array; cswriter.Write injects a Tf using its
	// configured fallback font before this operation, or returns
	// ErrNoFallbackFont if none was configured.
	NeedsFontInjection bool

	Text            *TextPayload
	TextState       *TextStatePayload
	TextPositioning *TextPositioningPayload
	TextBlock       *TextBlockPayload
	State           *StatePayload
	Path            *PathPayload
	Image           *ImagePayload
	Form            *FormPayload
}

// TextPayload is the derived payload for Tj/TJ/'/" (text-showing operators).
type TextPayload struct {
	// Glyphs is the per-glyph decomposition of the shown text, in source
	// byte order, with device-space positions already resolved against
	// the graphics state at the time of the show.
	Glyphs []GlyphPosition

	// Font is the resource name active when this text was shown (the
	// operand of the most recent Tf).
	Font string
	// FontSize is Tfs at the time of the show.
	FontSize float64
}

// GlyphPosition is one decoded glyph of a text-showing operation.
type GlyphPosition struct {
	// Codepoint is the Unicode code point FontResolver.UnicodeFor
	// resolved for this glyph, or the charset fallback rune.
	Codepoint rune
	// ByteOffset is this glyph's starting offset into the operator's
	// source string operand (the Nth string in a TJ array counts from
	// the start of that string, not the whole operator).
	ByteOffset int
	// ByteLength is the number of source bytes this glyph consumed (1 for
	// simple fonts, 2 for most CID fonts).
	ByteLength int
	// BBox is this glyph's bounding box in device space.
	BBox gstate.Rectangle
	// IsSpace is true if the glyph's source bytes were a single byte 0x20,
	// the only code word spacing (Tw) applies to.
	IsSpace bool
}

// TextStatePayload is the derived payload for Tc/Tw/Tz/TL/Tf/Tr/Ts.
type TextStatePayload struct {
	Param string // "Tc", "Tw", "Tz", "TL", "Tf", "Tr", "Ts"
}

// TextPositioningPayload is the derived payload for Td/TD/Tm/T*.
type TextPositioningPayload struct {
	Param string // "Td", "TD", "Tm", "T*"
}

// TextBlockPayload is the derived payload for BT/ET.
type TextBlockPayload struct {
	Begin bool // true for BT, false for ET
}

// StatePayload is the derived payload for q/Q/cm.
type StatePayload struct {
	Param string // "q", "Q", "cm"
}

// PathPayload is the derived payload for path construction and painting
// operators (m/l/c/v/y/h/re and S/s/f/F/f*/B/B*/b/b*/n).
type PathPayload struct {
	Construction bool // true for m/l/c/v/y/h/re, false for painting ops
}

// ImagePayload is the derived payload for inline images (BI...ID...EI).
type ImagePayload struct {
	// Raw holds the complete inline-image token (dictionary entries plus
	// raw data) exactly as encountered; redaction can only keep or drop an
	// inline image whole, never edit its pixels.
	Raw []byte
}

// FormPayload is the derived payload for every Do operator. The parser does
// not know whether the named XObject is a Form or an Image XObject; the
// page orchestrator looks the name up in the resources and recurses only
// into forms. (Inline images, BI...EI, carry an ImagePayload instead.)
type FormPayload struct {
	Name string // the XObject resource name

	// CTM is the graphics-state CTM active at the moment this Do was
	// executed. The page orchestrator needs it to map a redaction
	// rectangle from the invoking stream's coordinate space into the
	// form's own content-stream space (the inverse of CTM) when it
	// recurses into the form.
	CTM gstate.Matrix
}

// Stream is a parsed, ordered sequence of Operations.
type Stream struct {
	Operations []*Operation
}

// IsBalanced reports whether q/Q and BT/ET nest correctly and end fully
// closed, the round-trip invariant required of any stream this package
// emits.
func (s *Stream) IsBalanced() bool {
	qDepth, textDepth := 0, 0
	for _, op := range s.Operations {
		switch op.Operator {
		case "q":
			qDepth++
		case "Q":
			qDepth--
			if qDepth < 0 {
				return false
			}
		case "BT":
			textDepth++
		case "ET":
			textDepth--
			if textDepth < 0 {
				return false
			}
		}
	}
	return qDepth == 0 && textDepth == 0
}
