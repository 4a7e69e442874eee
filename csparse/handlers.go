/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package csparse

import (
	"github.com/pdfredact/pdfredact/charset"
	"github.com/pdfredact/pdfredact/fontres"
	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/token"
)

func init() {
	dispatchTable["q"] = func(p *Parser, operands []token.Token) *Operation {
		op := p.emit("q", operands)
		p.state.Push()
		op.State = &StatePayload{Param: "q"}
		return op
	}
	dispatchTable["Q"] = func(p *Parser, operands []token.Token) *Operation {
		op := p.emit("Q", operands)
		if err := p.state.Pop(); err != nil {
			p.warn(WarningCorruptXObject, "Q with no matching q")
		}
		op.State = &StatePayload{Param: "Q"}
		return op
	}
	dispatchTable["cm"] = func(p *Parser, operands []token.Token) *Operation {
		op := p.emit("cm", operands)
		if len(operands) == 6 {
			m := gstate.NewMatrix(
				numberAt(operands, 0), numberAt(operands, 1),
				numberAt(operands, 2), numberAt(operands, 3),
				numberAt(operands, 4), numberAt(operands, 5))
			p.state.Top().ConcatCTM(m)
		}
		op.State = &StatePayload{Param: "cm"}
		return op
	}
	dispatchTable["BT"] = func(p *Parser, operands []token.Token) *Operation {
		p.state.Top().BeginText()
		op := p.emit("BT", operands)
		op.TextBlock = &TextBlockPayload{Begin: true}
		return op
	}
	dispatchTable["ET"] = func(p *Parser, operands []token.Token) *Operation {
		op := p.emit("ET", operands)
		op.TextBlock = &TextBlockPayload{Begin: false}
		p.state.Top().EndText()
		return op
	}

	for _, name := range []string{"Tf", "Tc", "Tw", "Tz", "TL", "Ts", "Tr"} {
		name := name
		dispatchTable[name] = func(p *Parser, operands []token.Token) *Operation {
			frame := p.state.Top()
			switch name {
			case "Tf":
				frame.FontID = nameAt(operands, 0)
				frame.FontSize = numberAt(operands, 1)
			case "Tc":
				frame.CharSpace = numberAt(operands, 0)
			case "Tw":
				frame.WordSpace = numberAt(operands, 0)
			case "Tz":
				frame.HScale = numberAt(operands, 0) / 100.0
			case "TL":
				frame.Leading = numberAt(operands, 0)
			case "Ts":
				frame.Rise = numberAt(operands, 0)
			case "Tr":
				frame.RenderMode = gstate.RenderMode(int(numberAt(operands, 0)))
			}
			op := p.emit(name, operands)
			op.TextState = &TextStatePayload{Param: name}
			return op
		}
	}

	for _, name := range []string{"Td", "TD", "Tm", "T*"} {
		name := name
		dispatchTable[name] = func(p *Parser, operands []token.Token) *Operation {
			frame := p.state.Top()
			switch name {
			case "Td":
				frame.TranslateLine(numberAt(operands, 0), numberAt(operands, 1))
			case "TD":
				ty := numberAt(operands, 1)
				frame.Leading = -ty
				frame.TranslateLine(numberAt(operands, 0), ty)
			case "Tm":
				if len(operands) == 6 {
					m := gstate.NewMatrix(
						numberAt(operands, 0), numberAt(operands, 1),
						numberAt(operands, 2), numberAt(operands, 3),
						numberAt(operands, 4), numberAt(operands, 5))
					frame.SetTextMatrix(m)
				}
			case "T*":
				frame.TranslateLine(0, -frame.Leading)
			}
			op := p.emit(name, operands)
			op.TextPositioning = &TextPositioningPayload{Param: name}
			return op
		}
	}

	for _, name := range []string{"Tj", "TJ", "'", `"`} {
		name := name
		dispatchTable[name] = func(p *Parser, operands []token.Token) *Operation {
			return handleShowTextNamed(p, name, operands)
		}
	}

	for _, name := range []string{"m", "l", "c", "v", "y", "h", "re",
		"S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n"} {
		name := name
		construction := name == "m" || name == "l" || name == "c" ||
			name == "v" || name == "y" || name == "h" || name == "re"
		dispatchTable[name] = func(p *Parser, operands []token.Token) *Operation {
			op := p.emit(name, operands)
			op.Path = &PathPayload{Construction: construction}
			ctm := p.state.Top().CTM
			switch name {
			case "m", "l":
				if len(operands) >= 2 {
					p.unionPathPoint(numberAt(operands, 0), numberAt(operands, 1), ctm)
				}
			case "c":
				if len(operands) >= 6 {
					for i := 0; i < 6; i += 2 {
						p.unionPathPoint(numberAt(operands, i), numberAt(operands, i+1), ctm)
					}
				}
			case "v", "y":
				if len(operands) >= 4 {
					for i := 0; i < 4; i += 2 {
						p.unionPathPoint(numberAt(operands, i), numberAt(operands, i+1), ctm)
					}
				}
			case "re":
				if len(operands) == 4 {
					x, y := numberAt(operands, 0), numberAt(operands, 1)
					w, h := numberAt(operands, 2), numberAt(operands, 3)
					r := gstate.NewRectangle(x, y, x+w, y+h).Transform(ctm)
					op.BBox = &r
					p.unionPathBBox(r)
				}
			default: // painting operators: claim the accumulated path bbox
				op.BBox = p.pathBBox
				p.pathBBox = nil
			}
			return op
		}
	}

	dispatchTable["Do"] = func(p *Parser, operands []token.Token) *Operation {
		op := p.emit("Do", operands)
		name := nameAt(operands, 0)
		op.Form = &FormPayload{Name: name, CTM: p.state.Top().CTM}
		unit := gstate.NewRectangle(0, 0, 1, 1).Transform(p.state.Top().CTM)
		op.BBox = &unit
		return op
	}
}

// handleShowTextNamed implements Tj/TJ/'/" : advance the text matrix and
// build the per-glyph payload, resolving glyph identities and widths via
// the Parser's FontResolver (falling back to charset.DecodeString and an
// approximate width when the resolver is nil or the font is unknown).
// This generalizes a typical text-extraction glyph walk from "accumulate
// extracted text" to "produce per-glyph device-space boxes a redaction
// decider can test against caller rectangles".
func handleShowTextNamed(p *Parser, operator string, operands []token.Token) *Operation {
	frame := p.state.Top()

	// ' and " first perform a T* (new line), " also sets Tw/Tc from its
	// first two operands.
	switch operator {
	case "'":
		frame.TranslateLine(0, -frame.Leading)
	case `"`:
		frame.WordSpace = numberAt(operands, 0)
		frame.CharSpace = numberAt(operands, 1)
		frame.TranslateLine(0, -frame.Leading)
	}

	var runs []token.Token
	switch operator {
	case "Tj", "'":
		if len(operands) > 0 && (operands[0].Kind == token.KindLiteralString || operands[0].Kind == token.KindHexString) {
			runs = []token.Token{operands[0]}
		}
	case `"`:
		if len(operands) > 2 && (operands[2].Kind == token.KindLiteralString || operands[2].Kind == token.KindHexString) {
			runs = []token.Token{operands[2]}
		}
	case "TJ":
		if len(operands) > 0 && operands[0].Kind == token.KindArray {
			runs = operands[0].Items
		}
	}

	var glyphs []GlyphPosition
	var bbox *gstate.Rectangle
	for _, run := range runs {
		if run.Kind == token.KindNumber {
			// TJ spacing adjustment: advance the text matrix by
			// -tj/1000 * Tfs * Tz unscaled text-space units, no glyph
			// emitted.
			dx := gstate.GlyphAdvance(0, run.Number, frame.FontSize, frame.HScale, 0, 0, false)
			frame.AdvanceText(dx, 0)
			continue
		}
		if run.Kind != token.KindLiteralString && run.Kind != token.KindHexString {
			// Any other TJ array element (a name, a nested array, a
			// keyword) shows nothing.
			continue
		}
		data := run.Bytes()
		letters := resolveLetters(p, frame.FontID, data)
		for _, l := range letters {
			w0 := l.Width0
			adv := gstate.GlyphAdvance(w0, 0, frame.FontSize, frame.HScale, frame.CharSpace, frame.WordSpace, l.IsSpace)
			trm := frame.TextRenderingMatrix()
			unit := gstate.NewRectangle(0, 0, w0/1000.0, 1).Transform(trm)
			glyphs = append(glyphs, GlyphPosition{
				Codepoint:  l.Codepoint,
				ByteOffset: l.ByteOffset,
				ByteLength: l.ByteLength,
				BBox:       unit,
				IsSpace:    l.IsSpace,
			})
			if bbox == nil {
				b := unit
				bbox = &b
			} else {
				u := bbox.Union(unit)
				bbox = &u
			}
			frame.AdvanceText(adv, 0)
		}
	}

	op := &Operation{
		Operator:    operator,
		Operands:    operands,
		StreamIndex: p.streamIndex,
		BBox:        bbox,
		Text: &TextPayload{
			Glyphs:   glyphs,
			Font:     frame.FontID,
			FontSize: frame.FontSize,
		},
	}
	p.streamIndex++
	return op
}

// resolveLetters decomposes `data` into glyphs using the Parser's
// FontResolver, falling back to one-byte-per-glyph WinAnsi decoding (and a
// crude 500/1000-em width guess) when the resolver is nil or reports
// ErrUnknownFont -- the UnknownFont recoverable condition.
func resolveLetters(p *Parser, fontID string, data []byte) []fontres.Letter {
	if p.resolver != nil {
		letters, err := p.resolver.Letters(fontID, data)
		if err == nil {
			return letters
		}
		p.warn(WarningUnknownFont, "unknown font "+fontID+": "+err.Error())
	} else if fontID != "" {
		p.warn(WarningUnknownFont, "no font resolver configured for "+fontID)
	}

	letters := make([]fontres.Letter, len(data))
	for i, b := range data {
		letters[i] = fontres.Letter{
			Codepoint:  charset.Decode(b),
			ByteOffset: i,
			ByteLength: 1,
			Width0:     500,
			IsSpace:    b == ' ',
		}
	}
	return letters
}
