/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redact

import (
	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/token"
)

// addVisualMarkers appends a self-contained q ... Q block per request
// rectangle that fills it with opaque black, so the redaction is visible
// even to a reader that never diffs content streams. Built as typed
// Operations appended by the decider rather than string concatenation
// against the raw stream.
func addVisualMarkers(stream *csparse.Stream, requests []Request) {
	index := 0
	for _, op := range stream.Operations {
		if op.StreamIndex >= index {
			index = op.StreamIndex + 1
		}
	}
	nextIndex := func() int {
		i := index
		index++
		return i
	}
	for _, req := range requests {
		r := req.Rect
		stream.Operations = append(stream.Operations,
			&csparse.Operation{Operator: "q", StreamIndex: nextIndex(), State: &csparse.StatePayload{Param: "q"}},
			&csparse.Operation{
				Operator:    "rg",
				Operands:    []token.Token{token.Num(0), token.Num(0), token.Num(0)},
				StreamIndex: nextIndex(),
			},
			&csparse.Operation{
				Operator: "re",
				Operands: []token.Token{
					token.Num(r.Llx), token.Num(r.Lly),
					token.Num(r.Width()), token.Num(r.Height()),
				},
				StreamIndex: nextIndex(),
				Path:        &csparse.PathPayload{Construction: true},
			},
			&csparse.Operation{
				Operator:    "f",
				StreamIndex: nextIndex(),
				Path:        &csparse.PathPayload{Construction: false},
			},
			&csparse.Operation{Operator: "Q", StreamIndex: nextIndex(), State: &csparse.StatePayload{Param: "Q"}},
		)
	}
}
