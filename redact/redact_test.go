/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/fontres"
	"github.com/pdfredact/pdfredact/gstate"
)

// asciiResolver is a trivial one-byte-per-glyph FontResolver: every byte is
// its own glyph, codepoint equal to the byte value, width 500/1000 em.
type asciiResolver struct{}

func (asciiResolver) Letters(fontID string, data []byte) ([]fontres.Letter, error) {
	out := make([]fontres.Letter, len(data))
	for i, b := range data {
		out[i] = fontres.Letter{
			Codepoint:  rune(b),
			ByteOffset: i,
			ByteLength: 1,
			Width0:     500,
			IsSpace:    b == ' ',
		}
	}
	return out, nil
}

func (asciiResolver) UnicodeFor(fontID string, data []byte) (string, error) {
	return string(data), nil
}

func (asciiResolver) IsCIDFont(fontID string) bool { return false }

func (asciiResolver) AdvanceWidth(fontID string, codepoint rune) (float64, error) {
	return 500, nil
}

func parse(t *testing.T, content string) *csparse.Stream {
	t.Helper()
	p := csparse.NewParser([]byte(content), asciiResolver{})
	stream, _, err := p.Parse(context.Background())
	require.NoError(t, err)
	return stream
}

func findOp(stream *csparse.Stream, operator string) *csparse.Operation {
	for _, op := range stream.Operations {
		if op.Operator == operator {
			return op
		}
	}
	return nil
}

func TestDecideWholeOperationDropsIntersectingPath(t *testing.T) {
	stream := parse(t, "1 0 0 1 0 0 cm 10 20 100 50 re f")
	requests := []Request{{Rect: gstate.NewRectangle(0, 0, 200, 200), Policy: WholeOperation}}

	out, report := Decide(stream, requests, Options{})

	require.Nil(t, findOp(out, "re"))
	require.Nil(t, findOp(out, "f"))
	require.Equal(t, 2, report.OperationsRemoved)
}

func TestDecideWholeOperationKeepsNonIntersecting(t *testing.T) {
	stream := parse(t, "1 0 0 1 0 0 cm 10 20 100 50 re f")
	requests := []Request{{Rect: gstate.NewRectangle(500, 500, 600, 600), Policy: WholeOperation}}

	out, report := Decide(stream, requests, Options{})

	require.NotNil(t, findOp(out, "re"))
	require.NotNil(t, findOp(out, "f"))
	require.Equal(t, 0, report.OperationsRemoved)
}

func TestDecideGlyphLevelDropsOnlyCoveredGlyphs(t *testing.T) {
	stream := parse(t, "BT /F1 12 Tf (Hello World) Tj ET")
	showOp := findOp(stream, "Tj")
	require.NotNil(t, showOp)
	require.NotEmpty(t, showOp.Text.Glyphs)

	// Cover only the first glyph's box.
	first := showOp.Text.Glyphs[0]
	requests := []Request{{Rect: first.BBox, Policy: GlyphLevel}}

	out, report := Decide(stream, requests, Options{})

	rewritten := findOp(out, "TJ")
	require.NotNil(t, rewritten)
	require.Nil(t, findOp(out, "Tj"))
	require.Equal(t, 1, report.GlyphsRedacted)
	require.Equal(t, 1, report.OperationsRewritten)
	require.Equal(t, 0, report.OperationsRemoved)
}

func TestDecideGlyphLevelRemovesOperationWhenAllGlyphsCovered(t *testing.T) {
	stream := parse(t, "BT /F1 12 Tf (Hi) Tj ET")
	showOp := findOp(stream, "Tj")
	require.NotNil(t, showOp)

	requests := []Request{{Rect: showOp.BBox.Expand(100, 100), Policy: GlyphLevel}}

	out, report := Decide(stream, requests, Options{})

	require.Nil(t, findOp(out, "Tj"))
	require.Nil(t, findOp(out, "TJ"))
	require.Equal(t, 1, report.OperationsRemoved)
	require.Equal(t, 2, report.GlyphsRedacted)
}

func TestDecideGlyphLevelKeepsOperationWhenNoneCovered(t *testing.T) {
	stream := parse(t, "BT /F1 12 Tf (Hi) Tj ET")
	requests := []Request{{Rect: gstate.NewRectangle(900, 900, 1000, 1000), Policy: GlyphLevel}}

	out, report := Decide(stream, requests, Options{})

	require.NotNil(t, findOp(out, "Tj"))
	require.Equal(t, 0, report.GlyphsRedacted)
	require.Equal(t, 0, report.OperationsRewritten)
}

func TestDecideStateOperationsNeverDropped(t *testing.T) {
	stream := parse(t, "q 1 0 0 1 0 0 cm Q")
	requests := []Request{{Rect: gstate.NewRectangle(0, 0, 1000, 1000), Policy: WholeOperation}}

	out, report := Decide(stream, requests, Options{})

	require.Len(t, out.Operations, len(stream.Operations))
	require.Equal(t, 0, report.OperationsRemoved)
}

func TestDecideDrawsVisualMarkerWhenRequested(t *testing.T) {
	stream := parse(t, "10 20 100 50 re f")
	rect := gstate.NewRectangle(0, 0, 200, 200)
	requests := []Request{{Rect: rect, Policy: WholeOperation}}

	out, _ := Decide(stream, requests, Options{DrawVisualMarker: true})

	require.NotNil(t, findOp(out, "rg"))
	markerRe := findOp(out, "re")
	require.NotNil(t, markerRe)
	require.InDelta(t, rect.Llx, markerRe.Operands[0].Number, 1e-9)
}

func TestDecideWithoutVisualMarkerOptionDrawsNothing(t *testing.T) {
	stream := parse(t, "10 20 100 50 re f")
	requests := []Request{{Rect: gstate.NewRectangle(900, 900, 1000, 1000), Policy: WholeOperation}}

	out, _ := Decide(stream, requests, Options{DrawVisualMarker: false})

	require.Nil(t, findOp(out, "rg"))
}

func TestDecideZeroAreaRectangleMatchesNothing(t *testing.T) {
	stream := parse(t, "10 20 100 50 re f")
	// A zero-width rectangle sitting exactly on the path's left edge would
	// satisfy the inclusive Intersects test; it must still redact nothing.
	requests := []Request{{Rect: gstate.NewRectangle(10, 20, 10, 70), Policy: WholeOperation}}

	out, report := Decide(stream, requests, Options{})

	require.NotNil(t, findOp(out, "re"))
	require.NotNil(t, findOp(out, "f"))
	require.Equal(t, 0, report.OperationsRemoved)
}

func TestRepairBalanceDropsStrayQAndET(t *testing.T) {
	stream := &csparse.Stream{Operations: []*csparse.Operation{
		{Operator: "Q"},
		{Operator: "ET"},
	}}
	var report Report
	repairBalance(stream, &report)

	require.Empty(t, stream.Operations)
	require.Equal(t, 2, report.BalanceRepairsApplied)
}

func TestRepairBalanceClosesUnclosedBlocks(t *testing.T) {
	stream := &csparse.Stream{Operations: []*csparse.Operation{
		{Operator: "q"},
		{Operator: "BT"},
	}}
	var report Report
	repairBalance(stream, &report)

	require.True(t, stream.IsBalanced())
	require.Equal(t, 2, report.BalanceRepairsApplied)
}
