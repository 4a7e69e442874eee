/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package csparse

import (
	"context"

	"github.com/pdfredact/pdfredact/common"
	"github.com/pdfredact/pdfredact/fontres"
	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/token"
)

// cancelCheckInterval is how often, in tokens consumed, Parse checks for
// context cancellation outside of the BT/ET/Do boundaries it always
// checks at.
const cancelCheckInterval = 4096

// Warning is a recoverable condition encountered while parsing, one entry
// of the page.Report.Warnings slice a caller receives back.
type Warning struct {
	Kind    WarningKind
	Message string
}

// WarningKind enumerates the recoverable parsing conditions. Context
// cancellation is the only condition Parse returns as an error; an
// unmatched Q is recorded as WarningCorruptXObject, and a stream that ends
// with a q or BT still open raises neither an error nor a warning.
type WarningKind int

// Recoverable warning kinds.
const (
	WarningUnknownFont WarningKind = iota
	WarningCorruptXObject
)

// handlerFunc mutates parser state for one operator occurrence and
// returns the Operation to emit; the registry owns both effects.
type handlerFunc func(p *Parser, operands []token.Token) *Operation

// dispatchTable is populated by handlers.go's init -- a registry of
// stateless-looking handler functions keyed by operator name.
var dispatchTable = map[string]handlerFunc{}

// Parser tokenizes a content stream and dispatches each operator through
// the registry above, threading a gstate.State graphics/text-state
// machine and emitting one Operation per operator. It never aborts on
// malformed operands, and an operator with the wrong operand shape still
// gets its usual payload: a missing or non-numeric number reads as 0 and a
// missing name as "", while cm and Tm with other than six operands, and re
// with other than four, leave the matrices and the path box untouched.
type Parser struct {
	lexer    *token.Lexer
	state    *gstate.State
	resolver fontres.Resolver

	operandStack []token.Token
	streamIndex  int
	tokenCount   int

	// pathBBox accumulates the bounding box of path-construction operators
	// (m/l/c/v/y/h/re) since the last painting operator; the next painting
	// operator (S/s/f/F/f*/B/B*/b/b*/n) claims it as its own BBox and
	// resets the accumulator, so a redaction rectangle that only overlaps
	// part of a multi-segment path still drops the operator that actually
	// paints it.
	pathBBox *gstate.Rectangle

	warnings []Warning
}

// NewParser returns a Parser over `content`. `resolver` may be nil, in
// which case show-text operators always fall back to one-byte-per-glyph
// charset decoding, and a WarningUnknownFont is recorded for each string
// shown while a font is selected by Tf.
func NewParser(content []byte, resolver fontres.Resolver) *Parser {
	return &Parser{
		lexer:    token.NewLexer(content),
		state:    gstate.NewState(),
		resolver: resolver,
	}
}

// Parse runs the dispatcher to completion and returns the resulting
// Stream. The only fatal conditions are context cancellation; malformed
// content degrades to Generic operations rather than failing.
func (p *Parser) Parse(ctx context.Context) (*Stream, []Warning, error) {
	stream := &Stream{}
	for {
		tok, ok := p.lexer.Next()
		if !ok {
			break
		}
		p.tokenCount++
		if p.tokenCount%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stream, p.warnings, err
			}
		}

		if tok.Kind != token.KindOperator {
			p.operandStack = append(p.operandStack, tok)
			continue
		}

		if tok.Text == "BI" {
			raw := p.lexer.ReadInlineImageRaw()
			op := p.emit("BI", nil)
			op.Image = &ImagePayload{Raw: raw}
			stream.Operations = append(stream.Operations, op)
			p.operandStack = nil
			continue
		}

		if tok.Text == "BT" || tok.Text == "ET" || tok.Text == "Do" {
			if err := ctx.Err(); err != nil {
				return stream, p.warnings, err
			}
		}

		operands := p.operandStack
		p.operandStack = nil

		handler, known := dispatchTable[tok.Text]
		var op *Operation
		if known {
			op = handler(p, operands)
			if op == nil {
				op = p.emit(tok.Text, operands)
			}
		} else {
			op = p.emit(tok.Text, operands)
		}
		op.InsideTextObject = p.state.Top().InTextObject
		stream.Operations = append(stream.Operations, op)
	}
	return stream, p.warnings, nil
}

// emit builds the common-header part of an Operation; per-operator
// handlers fill in the derived payload and BBox afterward.
func (p *Parser) emit(operator string, operands []token.Token) *Operation {
	op := &Operation{
		Operator:    operator,
		Operands:    operands,
		StreamIndex: p.streamIndex,
	}
	p.streamIndex++
	return op
}

// unionPathPoint transforms (x, y) by `ctm` and unions the resulting
// zero-area point into the in-progress path bounding box.
func (p *Parser) unionPathPoint(x, y float64, ctm gstate.Matrix) {
	dx, dy := ctm.Transform(x, y)
	p.unionPathBBox(gstate.Rectangle{Llx: dx, Lly: dy, Urx: dx, Ury: dy})
}

func (p *Parser) unionPathBBox(r gstate.Rectangle) {
	if p.pathBBox == nil {
		b := r
		p.pathBBox = &b
	} else {
		u := p.pathBBox.Union(r)
		p.pathBBox = &u
	}
}

func (p *Parser) warn(kind WarningKind, msg string) {
	p.warnings = append(p.warnings, Warning{Kind: kind, Message: msg})
	common.Log.Debug("csparse: %s", msg)
}

func numberAt(operands []token.Token, i int) float64 {
	if i < 0 || i >= len(operands) || operands[i].Kind != token.KindNumber {
		return 0
	}
	return operands[i].Number
}

func nameAt(operands []token.Token, i int) string {
	if i < 0 || i >= len(operands) || operands[i].Kind != token.KindName {
		return ""
	}
	return operands[i].Text
}
