/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package cswriter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/token"
)

func TestWriteRoundTripsNumbersAndOperators(t *testing.T) {
	content := []byte("1 0 0 1 10.5 20 cm q Q")
	p := csparse.NewParser(content, nil)
	stream, _, err := p.Parse(context.Background())
	require.NoError(t, err)

	out, err := Write(stream, Options{})
	require.NoError(t, err)
	require.Contains(t, string(out), "1 0 0 1 10.5 20 cm")
	require.Contains(t, string(out), "q\n")
	require.Contains(t, string(out), "Q\n")
}

func TestWriteHexStringPreservesEncoding(t *testing.T) {
	op := &csparse.Operation{
		Operator: "Tj",
		Operands: []token.Token{token.HexString("Hi")},
	}
	stream := &csparse.Stream{Operations: []*csparse.Operation{op}}
	out, err := Write(stream, Options{})
	require.NoError(t, err)
	require.Contains(t, string(out), "<4869> Tj")
}

func TestWriteLiteralStringEscapesParens(t *testing.T) {
	op := &csparse.Operation{
		Operator: "Tj",
		Operands: []token.Token{token.LiteralString("a(b)c")},
	}
	stream := &csparse.Stream{Operations: []*csparse.Operation{op}}
	out, err := Write(stream, Options{})
	require.NoError(t, err)
	require.Contains(t, string(out), `(a\(b\)c) Tj`)
}

func TestWriteNeedsFontInjectionWithoutFallbackErrors(t *testing.T) {
	op := &csparse.Operation{
		Operator:           "Tj",
		Operands:           []token.Token{token.LiteralString("x")},
		NeedsFontInjection: true,
	}
	stream := &csparse.Stream{Operations: []*csparse.Operation{op}}
	_, err := Write(stream, Options{})
	require.ErrorIs(t, err, ErrNoFallbackFont)
}

func TestWriteNeedsFontInjectionWithFallback(t *testing.T) {
	op := &csparse.Operation{
		Operator:           "Tj",
		Operands:           []token.Token{token.LiteralString("x")},
		NeedsFontInjection: true,
	}
	stream := &csparse.Stream{Operations: []*csparse.Operation{op}}
	out, err := Write(stream, Options{FallbackFontID: "F1", FallbackFontSize: 12})
	require.NoError(t, err)
	require.Contains(t, string(out), "/F1 12 Tf\n(x) Tj")
}
