/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redact

import "github.com/pdfredact/pdfredact/csparse"

// repairBalance defensively restores q/Q and BT/ET nesting after removal.
// A correct Decide pass never actually unbalances a stream -- text-showing
// operators are never block delimiters -- but this keeps the writer's
// round-trip invariant true even if a future policy or a bug drops a
// delimiter operator, rather than emit a stream a viewer would reject.
func repairBalance(stream *csparse.Stream, report *Report) {
	if stream.IsBalanced() {
		return
	}

	var kept []*csparse.Operation
	qDepth, textDepth := 0, 0
	for _, op := range stream.Operations {
		switch op.Operator {
		case "q":
			qDepth++
		case "Q":
			if qDepth == 0 {
				report.BalanceRepairsApplied++
				continue
			}
			qDepth--
		case "BT":
			textDepth++
		case "ET":
			if textDepth == 0 {
				report.BalanceRepairsApplied++
				continue
			}
			textDepth--
		}
		kept = append(kept, op)
	}
	for ; qDepth > 0; qDepth-- {
		kept = append(kept, &csparse.Operation{Operator: "Q"})
		report.BalanceRepairsApplied++
	}
	for ; textDepth > 0; textDepth-- {
		kept = append(kept, &csparse.Operation{Operator: "ET"})
		report.BalanceRepairsApplied++
	}
	stream.Operations = kept
}
