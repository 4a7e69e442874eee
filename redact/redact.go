/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package redact implements the redaction decider: given a parsed content
// stream and a set of rectangles, it removes or rewrites the operations
// that draw inside them, following one of two policies.
package redact

import (
	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/token"
)

// Policy selects how thoroughly a Request's rectangle is enforced.
type Policy int

// Policies.
const (
	// WholeOperation drops any content-drawing operation whose bounding
	// box intersects the request rectangle, whole -- coarse, but never
	// needs per-glyph font metrics.
	WholeOperation Policy = iota
	// GlyphLevel splits a text-showing operation glyph by glyph, dropping
	// only the glyphs whose centers fall inside the request rectangle
	// (a plain center test: see kernCollapseGuard) and keeping the rest,
	// renumbering TJ spacing to preserve the visual position of the kept
	// glyphs.
	GlyphLevel
)

// kernCollapseGuard is how far (in glyph widths) redactGlyphs widens a
// glyph's box on each side before the center-containment test. The
// widening is symmetric, so the box's center, and with it the outcome of
// the test, does not change: glyphs drawn close together by a negative
// CharSpace get no extra margin. Not user-tunable (see DESIGN.md Open
// Question 1).
const kernCollapseGuard = 0.5

// Request is one rectangle to redact, in page (content-stream) space.
type Request struct {
	Rect   gstate.Rectangle
	Policy Policy
}

// Options configures Decide.
type Options struct {
	// DrawVisualMarker, when true, appends a filled black rectangle over
	// each Request.Rect so the redaction is visually obvious even if the
	// caller's downstream tooling can't diff content streams. Purely
	// additive: it never changes which content was actually removed.
	DrawVisualMarker bool
}

// Report summarizes what Decide did.
type Report struct {
	OperationsRemoved     int
	OperationsRewritten   int
	GlyphsRedacted        int
	BalanceRepairsApplied int
}

// Decide applies `requests` to `stream` and returns the resulting stream
// and a report. The input stream is never mutated in place.
func Decide(stream *csparse.Stream, requests []Request, opts Options) (*csparse.Stream, Report) {
	var report Report
	out := &csparse.Stream{}

	for _, op := range stream.Operations {
		kept := decideOne(op, requests, &report)
		out.Operations = append(out.Operations, kept...)
	}

	repairBalance(out, &report)

	if opts.DrawVisualMarker {
		addVisualMarkers(out, requests)
	}

	return out, report
}

// decideOne returns the zero, one, or more operations `op` should be
// replaced by.
func decideOne(op *csparse.Operation, requests []Request, report *Report) []*csparse.Operation {
	// Operations with no bounding box are never dropped: state-changing
	// operators (q/Q/cm/Tf/Tc/...), marked content, and anything else the
	// dispatcher left as Generic carry no visible content of their own.
	if op.BBox == nil {
		return []*csparse.Operation{op}
	}

	matchWhole, matchGlyph := false, false
	for _, req := range requests {
		if req.Rect.IsZero() {
			// A zero-area rectangle (e.g. a click with no drag) denotes no
			// selection at all and must never redact anything, even an
			// operation whose own BBox happens to touch that single point.
			continue
		}
		if !op.BBox.Intersects(req.Rect) {
			continue
		}
		if op.Text != nil && req.Policy == GlyphLevel {
			matchGlyph = true
		} else {
			matchWhole = true
		}
	}

	if matchWhole {
		report.OperationsRemoved++
		return nil
	}
	if matchGlyph {
		rewritten, redactedCount := redactGlyphs(op, requests)
		report.GlyphsRedacted += redactedCount
		if rewritten == nil {
			report.OperationsRemoved++
			return nil
		}
		if redactedCount > 0 {
			report.OperationsRewritten++
		}
		return []*csparse.Operation{rewritten}
	}
	return []*csparse.Operation{op}
}

// redactGlyphs partitions op.Text.Glyphs into kept/redacted runs and
// rewrites the operation into a TJ array with spacing numbers that
// preserve the kept runs' visual position. Returns a nil operation if
// every glyph was redacted (the caller then drops the operation outright),
// along with how many glyphs were actually redacted.
func redactGlyphs(op *csparse.Operation, requests []Request) (*csparse.Operation, int) {
	glyphs := op.Text.Glyphs
	redacted := make([]bool, len(glyphs))
	anyKept := false
	redactedCount := 0
	for i, g := range glyphs {
		// The glyph box is widened equally on both sides, which leaves its
		// center where it was; GlyphPosition carries no CharSpace, so no
		// allowance is made for a negative Tc.
		box := g.BBox.Expand(g.BBox.Width()*kernCollapseGuard, 0)
		cx, cy := box.Center()
		for _, req := range requests {
			if req.Policy != GlyphLevel || req.Rect.IsZero() {
				continue
			}
			if req.Rect.Contains(cx, cy) {
				redacted[i] = true
				break
			}
		}
		if redacted[i] {
			redactedCount++
		} else {
			anyKept = true
		}
	}
	if redactedCount == 0 {
		return op, 0
	}
	if !anyKept {
		return nil, redactedCount
	}

	sourceBytes := sourceRunBytes(op)
	// ByteOffset restarts at 0 for each string of a TJ array, while
	// sourceBytes holds all of them back to back; rebase the offsets.
	offsets := make([]int, len(glyphs))
	base := 0
	for i, g := range glyphs {
		if i > 0 && g.ByteOffset == 0 {
			base = offsets[i-1] + glyphs[i-1].ByteLength
		}
		offsets[i] = base + g.ByteOffset
	}
	var array []token.Token
	runStart := -1
	flush := func(endOffset int) {
		if runStart < 0 {
			return
		}
		array = append(array, stringTokenLike(op, sourceBytes[runStart:endOffset]))
		runStart = -1
	}
	for i, g := range glyphs {
		if redacted[i] {
			flush(offsets[i])
			if i+1 < len(glyphs) {
				gap := advanceInThousandths(op, g)
				array = append(array, token.Num(-gap))
			}
			continue
		}
		if runStart < 0 {
			runStart = offsets[i]
		}
	}
	if len(glyphs) > 0 {
		last := glyphs[len(glyphs)-1]
		flush(offsets[len(glyphs)-1] + last.ByteLength)
	}

	return &csparse.Operation{
		Operator:           "TJ",
		Operands:           []token.Token{token.Array(array)},
		StreamIndex:        op.StreamIndex,
		InsideTextObject:   op.InsideTextObject,
		BBox:               remainingBBox(glyphs, redacted),
		NeedsFontInjection: op.Operator != "TJ" && op.Operator != "Tj",
		Text: &csparse.TextPayload{
			Font:     op.Text.Font,
			FontSize: op.Text.FontSize,
		},
	}, redactedCount
}

func sourceRunBytes(op *csparse.Operation) []byte {
	switch op.Operator {
	case "Tj", "'":
		if len(op.Operands) > 0 {
			return op.Operands[0].Bytes()
		}
	case `"`:
		if len(op.Operands) > 2 {
			return op.Operands[2].Bytes()
		}
	case "TJ":
		if len(op.Operands) > 0 && op.Operands[0].Kind == token.KindArray {
			var all []byte
			for _, item := range op.Operands[0].Items {
				if item.Kind == token.KindLiteralString || item.Kind == token.KindHexString {
					all = append(all, item.Bytes()...)
				}
			}
			return all
		}
	}
	return nil
}

func stringTokenLike(op *csparse.Operation, data []byte) token.Token {
	if wasHexOperation(op) {
		return token.HexString(string(data))
	}
	return token.LiteralString(string(data))
}

func wasHexOperation(op *csparse.Operation) bool {
	switch op.Operator {
	case "Tj", "'":
		return len(op.Operands) > 0 && op.Operands[0].WasHex
	case `"`:
		return len(op.Operands) > 2 && op.Operands[2].WasHex
	case "TJ":
		if len(op.Operands) > 0 && op.Operands[0].Kind == token.KindArray {
			for _, item := range op.Operands[0].Items {
				if item.Kind == token.KindHexString {
					return true
				}
				if item.Kind == token.KindLiteralString {
					return false
				}
			}
		}
	}
	return false
}

// advanceInThousandths returns the TJ spacing number (in thousandths of an
// em, the unit TJ arrays use) that reproduces glyph `g`'s device-space
// advance, so removing it from the run doesn't shift the glyphs that
// follow.
func advanceInThousandths(op *csparse.Operation, g csparse.GlyphPosition) float64 {
	if op.Text.FontSize == 0 {
		return 0
	}
	return g.BBox.Width() / op.Text.FontSize * 1000.0
}

func remainingBBox(glyphs []csparse.GlyphPosition, redacted []bool) *gstate.Rectangle {
	var box *gstate.Rectangle
	for i, g := range glyphs {
		if redacted[i] {
			continue
		}
		if box == nil {
			b := g.BBox
			box = &b
		} else {
			u := box.Union(g.BBox)
			box = &u
		}
	}
	return box
}
