/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package cswriter serializes a csparse.Stream back into content-stream
// bytes, preserving hex-vs-literal string encoding and PDF's escaping
// rules exactly the way PDF expects to read them back.
package cswriter

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/token"
)

// ErrNoFallbackFont is returned by Write when a rewritten text run needs a
// Tf injected (an operation the decider flagged with NeedsFontInjection,
// i.e. a ' or " it rewrote into TJ) and the caller did not configure
// FallbackFontID. Write never silently guesses a
// font or size: a silent default here would corrupt a previously-correct
// layout.
var ErrNoFallbackFont = errors.New("cswriter: text run needs a font but no fallback font was configured")

// Options configures Write.
type Options struct {
	// FallbackFontID and FallbackFontSize are injected via a Tf operator
	// ahead of any text-showing run inside a BT block that the decider
	// rewrote into needing one. Both must be set if any rewritten stream
	// can reach that situation; leave both zero to force Write to return
	// ErrNoFallbackFont rather than guess.
	FallbackFontID   string
	FallbackFontSize float64
}

// Write serializes `stream` to content-stream bytes, in StreamIndex order,
// wrapped in an outer q...Q pair (cswriter.wrap) so appended content (such
// as a redaction visual marker) can never leak graphics state into
// whatever follows this stream.
func Write(stream *csparse.Stream, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("q\n")

	for _, op := range stream.Operations {
		if op.NeedsFontInjection {
			if opts.FallbackFontID == "" {
				return nil, ErrNoFallbackFont
			}
			buf.WriteString(writeName(opts.FallbackFontID))
			buf.WriteString(" ")
			buf.WriteString(formatNumber(opts.FallbackFontSize))
			buf.WriteString(" Tf\n")
		}

		if op.Operator == "BI" && op.Image != nil {
			buf.WriteString("BI\n")
			buf.Write(op.Image.Raw)
			if len(op.Image.Raw) == 0 || op.Image.Raw[len(op.Image.Raw)-1] != '\n' {
				buf.WriteString("\n")
			}
			continue
		}

		for _, operand := range op.Operands {
			buf.WriteString(writeToken(operand))
			buf.WriteString(" ")
		}
		buf.WriteString(op.Operator)
		buf.WriteString("\n")
	}

	buf.WriteString("Q\n")
	return buf.Bytes(), nil
}

func writeToken(t token.Token) string {
	switch t.Kind {
	case token.KindNumber:
		return formatNumber(t.Number)
	case token.KindName:
		return writeName(t.Text)
	case token.KindLiteralString:
		return writeLiteralString(t.Text)
	case token.KindHexString:
		return "<" + strings.ToUpper(hex.EncodeToString([]byte(t.Text))) + ">"
	case token.KindArray:
		var b bytes.Buffer
		b.WriteString("[")
		for i, item := range t.Items {
			b.WriteString(writeToken(item))
			if i < len(t.Items)-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("]")
		return b.String()
	case token.KindOperator:
		return t.Text
	default:
		return ""
	}
}

// formatNumber renders `v` rounded to at most 10 significant digits, in
// plain decimal notation with no trailing zeros; integral values come out
// without a decimal point.
func formatNumber(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 10, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func writeName(name string) string {
	var b bytes.Buffer
	b.WriteString("/")
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isPrintable(c) || c == '#' || isDelimiter(c) {
			b.WriteString("#")
			b.WriteString(hex.EncodeToString([]byte{c}))
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

var literalEscapes = map[byte]string{
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\b': `\b`,
	'\f': `\f`,
	'(':  `\(`,
	')':  `\)`,
	'\\': `\\`,
}

func writeLiteralString(s string) string {
	var b bytes.Buffer
	b.WriteString("(")
	for i := 0; i < len(s); i++ {
		c := s[i]
		if esc, ok := literalEscapes[c]; ok {
			b.WriteString(esc)
		} else if c < 0x20 || c >= 0x7f {
			b.WriteString("\\")
			b.WriteString(octal3(c))
		} else {
			b.WriteByte(c)
		}
	}
	b.WriteString(")")
	return b.String()
}

func octal3(b byte) string {
	s := strconv.FormatInt(int64(b), 8)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

func isPrintable(c byte) bool {
	return c > 0x20 && c < 0x7f
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
