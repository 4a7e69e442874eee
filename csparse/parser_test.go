/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package csparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfredact/pdfredact/fontres"
)

// asciiResolver is a trivial one-byte-per-glyph FontResolver used by tests:
// every byte is its own glyph, codepoint equal to the byte value, width
// 500/1000 em.
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

func TestParserBalancesQAndBT(t *testing.T) {
	content := []byte("q 1 0 0 1 0 0 cm BT /F1 12 Tf (Hello) Tj ET Q")
	p := NewParser(content, asciiResolver{})
	stream, warnings, err := p.Parse(context.Background())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.True(t, stream.IsBalanced())
}

func TestParserShowTextProducesGlyphs(t *testing.T) {
	content := []byte("BT /F1 12 Tf (Hi) Tj ET")
	p := NewParser(content, asciiResolver{})
	stream, _, err := p.Parse(context.Background())
	require.NoError(t, err)

	var textOp *Operation
	for _, op := range stream.Operations {
		if op.Operator == "Tj" {
			textOp = op
		}
	}
	require.NotNil(t, textOp)
	require.NotNil(t, textOp.Text)
	require.Len(t, textOp.Text.Glyphs, 2)
	require.Equal(t, 'H', textOp.Text.Glyphs[0].Codepoint)
	require.Equal(t, 'i', textOp.Text.Glyphs[1].Codepoint)
	require.NotNil(t, textOp.BBox)
}

func TestParserUnknownFontFallsBackToCharset(t *testing.T) {
	content := []byte("BT /F1 12 Tf (Hi) Tj ET")
	p := NewParser(content, nil)
	_, warnings, err := p.Parse(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Equal(t, WarningUnknownFont, warnings[0].Kind)
}

func TestParserUnbalancedQRecordsWarning(t *testing.T) {
	content := []byte("Q")
	p := NewParser(content, asciiResolver{})
	_, warnings, err := p.Parse(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Equal(t, WarningCorruptXObject, warnings[0].Kind)
}

func TestParserRectangleBBox(t *testing.T) {
	content := []byte("1 0 0 1 0 0 cm 10 20 100 50 re f")
	p := NewParser(content, asciiResolver{})
	stream, _, err := p.Parse(context.Background())
	require.NoError(t, err)

	var reOp *Operation
	for _, op := range stream.Operations {
		if op.Operator == "re" {
			reOp = op
		}
	}
	require.NotNil(t, reOp)
	require.NotNil(t, reOp.BBox)
	require.InDelta(t, 10.0, reOp.BBox.Llx, 1e-6)
	require.InDelta(t, 20.0, reOp.BBox.Lly, 1e-6)
	require.InDelta(t, 110.0, reOp.BBox.Urx, 1e-6)
	require.InDelta(t, 70.0, reOp.BBox.Ury, 1e-6)
}

func TestParserInlineImageIsOpaque(t *testing.T) {
	content := []byte("BI /W 1 /H 1 /BPC 8 /CS /G ID \x00 EI q Q")
	p := NewParser(content, asciiResolver{})
	stream, _, err := p.Parse(context.Background())
	require.NoError(t, err)
	require.Equal(t, "BI", stream.Operations[0].Operator)
	require.NotNil(t, stream.Operations[0].Image)
}
