/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package page implements the per-page orchestrator: it fetches a page's
// content stream and resources from a pdfstore.Store, parses and redacts
// the main stream and every Form XObject it (recursively) draws, and
// writes the results back.
package page

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/pdfredact/pdfredact/csparse"
	"github.com/pdfredact/pdfredact/cswriter"
	"github.com/pdfredact/pdfredact/fontres"
	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/pdfstore"
	"github.com/pdfredact/pdfredact/redact"
)

// defaultFormRecursionLimit bounds Form XObject recursion depth when the
// caller doesn't set Options.FormRecursionLimit.
const defaultFormRecursionLimit = 32

// Request is one rectangle to redact, in the page's visual space unless
// Options.Rotation is Rotate0, in which case visual space and
// content-stream space coincide.
type Request = redact.Request

// Options configures a single RedactPage call.
type Options struct {
	// FormRecursionLimit caps how deep Do-referenced Form XObjects recurse;
	// 0 means defaultFormRecursionLimit.
	FormRecursionLimit int

	// DrawVisualMarker, forwarded to redact.Options, draws a filled
	// rectangle over every redacted area in both the main stream and every
	// form it recurses into.
	DrawVisualMarker bool

	// FallbackFontID/FallbackFontSize are forwarded to cswriter.Write for
	// any operation a glyph-level redaction rewrote into a TJ array that
	// needs a font injected. Leaving both zero is valid only if no request
	// uses GlyphLevel against fonts that survive as partial matches.
	FallbackFontID   string
	FallbackFontSize float64

	// Rotation is the page's /Rotate value; MediaBox is its un-rotated
	// media box. Both are required together to map visual-space Requests
	// into content-stream space; leave Rotation at Rotate0 if requests are
	// already expressed in content-stream space.
	Rotation PageRotation
	MediaBox gstate.Rectangle
}

// WarningKind enumerates the page-level recoverable conditions, extending
// csparse.WarningKind with the two that only make sense once Form XObject
// recursion is in play.
type WarningKind int

// Page-level warning kinds.
const (
	WarningUnknownFont WarningKind = iota
	WarningCorruptXObject
	WarningCycleDetected
	WarningDepthLimit
)

// Warning is one recoverable condition recorded while redacting a page.
type Warning struct {
	Kind    WarningKind
	Message string
}

// Report aggregates redact.Report across the main stream and every form it
// recursed into, plus every Warning collected along the way.
type Report struct {
	redact.Report
	Warnings []Warning
}

func (r *Report) merge(other redact.Report) {
	r.OperationsRemoved += other.OperationsRemoved
	r.OperationsRewritten += other.OperationsRewritten
	r.GlyphsRedacted += other.GlyphsRedacted
	r.BalanceRepairsApplied += other.BalanceRepairsApplied
}

func (r *Report) recordParserWarnings(warnings []csparse.Warning) {
	for _, w := range warnings {
		kind := WarningUnknownFont
		if w.Kind == csparse.WarningCorruptXObject {
			kind = WarningCorruptXObject
		}
		r.Warnings = append(r.Warnings, Warning{Kind: kind, Message: w.Message})
	}
}

// Orchestrator ties a pdfstore.Store and a fontres.Resolver to the
// tokenizer/dispatcher/decider/writer pipeline. It holds no mutable state
// of its own, so concurrent RedactPage calls for different pages are safe
// by construction; the Store and Resolver implementations are responsible
// for their own internal synchronization if shared across goroutines.
type Orchestrator struct {
	Store    pdfstore.Store
	Resolver fontres.Resolver
}

// NewOrchestrator returns an Orchestrator backed by `store` and `resolver`.
func NewOrchestrator(store pdfstore.Store, resolver fontres.Resolver) *Orchestrator {
	return &Orchestrator{Store: store, Resolver: resolver}
}

// RedactPage fetches pageNumber's content and resources, applies `requests`
// to the main stream and every Form XObject it draws (recursively, cycle-
// and depth-guarded), and commits the result back through the Store. On a
// fatal error (a Store failure, context cancellation, or a write error such
// as cswriter.ErrNoFallbackFont) the page is left untouched -- CommitPage is
// never called. An unbalanced content stream is not fatal: it is redacted
// and committed like any other.
func (o *Orchestrator) RedactPage(ctx context.Context, pageNumber int, requests []Request, opts Options) (*Report, error) {
	limit := opts.FormRecursionLimit
	if limit <= 0 {
		limit = defaultFormRecursionLimit
	}

	content, resources, err := o.Store.GetPageContent(pageNumber)
	if err != nil {
		return nil, xerrors.Errorf("page %d: get content: %w", pageNumber, err)
	}

	contentRequests := requests
	if opts.Rotation.Normalize() != Rotate0 {
		m := RotationTransform(opts.Rotation, opts.MediaBox)
		contentRequests = make([]Request, len(requests))
		for i, r := range requests {
			contentRequests[i] = Request{Rect: r.Rect.Transform(m), Policy: r.Policy}
		}
	}

	report := &Report{}
	rn := &run{
		orch:     o,
		ctx:      ctx,
		limit:    limit,
		report:   report,
		cache:    map[string]*csparse.Stream{},
		visiting: map[string]bool{},
		redactOpts: redact.Options{
			DrawVisualMarker: opts.DrawVisualMarker,
		},
		writeOpts: cswriter.Options{
			FallbackFontID:   opts.FallbackFontID,
			FallbackFontSize: opts.FallbackFontSize,
		},
	}

	outStream, formOutputs, err := rn.process(content, resources, contentRequests, 0)
	if err != nil {
		return nil, xerrors.Errorf("page %d: %w", pageNumber, err)
	}

	body, err := cswriter.Write(outStream, rn.writeOpts)
	if err != nil {
		return nil, xerrors.Errorf("page %d: write: %w", pageNumber, err)
	}

	if err := o.Store.CommitPage(pageNumber, body, formOutputs); err != nil {
		return nil, xerrors.Errorf("page %d: commit: %w", pageNumber, err)
	}
	return report, nil
}

// run carries the per-RedactPage-call state that recursion into Form
// XObjects needs to share: the form cache (so a form Do'd twice is only
// parsed and redacted once), the cycle-detection set, and the report every
// recursive call accumulates into.
type run struct {
	orch       *Orchestrator
	ctx        context.Context
	limit      int
	report     *Report
	cache      map[string]*csparse.Stream
	visiting   map[string]bool
	redactOpts redact.Options
	writeOpts  cswriter.Options
}

// process parses `content`, redacts it against `requests`, and recurses
// into every Form XObject it draws. It returns the redacted stream and a
// map of XObject ID to redacted form content, ready to hand to
// pdfstore.Store.CommitPage.
func (rn *run) process(content []byte, resources map[string]pdfstore.XObject, requests []Request, depth int) (*csparse.Stream, map[string][]byte, error) {
	p := csparse.NewParser(content, rn.orch.Resolver)
	stream, warnings, err := p.Parse(rn.ctx)
	if err != nil {
		return nil, nil, err
	}
	rn.report.recordParserWarnings(warnings)

	// A Do that draws a Form XObject stays in this stream; the form's own
	// content is redacted below instead. Only an Image XObject's Do is a
	// candidate for whole-operation removal.
	for _, op := range stream.Operations {
		if op.Form != nil && resources[op.Form.Name].IsForm {
			op.BBox = nil
		}
	}

	out, rpt := redact.Decide(stream, requests, rn.redactOpts)
	rn.report.merge(rpt)

	formOutputs := map[string][]byte{}
	for _, op := range out.Operations {
		if op.Form == nil {
			continue
		}
		xobj, ok := resources[op.Form.Name]
		if !ok || !xobj.IsForm {
			continue
		}
		if _, done := formOutputs[xobj.ID]; done {
			continue
		}
		if body, ok := rn.writeCached(xobj.ID); ok {
			formOutputs[xobj.ID] = body
			continue
		}
		if rn.visiting[xobj.ID] {
			rn.report.Warnings = append(rn.report.Warnings, Warning{
				Kind: WarningCycleDetected, Message: "form " + xobj.ID + " draws itself, directly or indirectly",
			})
			continue
		}
		if depth+1 > rn.limit {
			rn.report.Warnings = append(rn.report.Warnings, Warning{
				Kind: WarningDepthLimit, Message: "form recursion limit reached at " + xobj.ID,
			})
			continue
		}

		formContent, formResources, err := rn.orch.Store.ResolveXObject(xobj)
		if err != nil {
			rn.report.Warnings = append(rn.report.Warnings, Warning{
				Kind: WarningCorruptXObject, Message: "resolving form " + xobj.ID + ": " + err.Error(),
			})
			continue
		}

		formRequests := requests
		if inv, ok := op.Form.CTM.Inverse(); ok {
			formRequests = make([]Request, len(requests))
			for i, r := range requests {
				formRequests[i] = Request{Rect: r.Rect.Transform(inv), Policy: r.Policy}
			}
		}

		rn.visiting[xobj.ID] = true
		formStream, nested, ferr := rn.process(formContent, formResources, formRequests, depth+1)
		delete(rn.visiting, xobj.ID)
		if ferr != nil {
			return nil, nil, ferr
		}
		rn.cache[xobj.ID] = formStream
		for id, body := range nested {
			formOutputs[id] = body
		}

		body, err := cswriter.Write(formStream, rn.writeOpts)
		if err != nil {
			return nil, nil, err
		}
		formOutputs[xobj.ID] = body
	}

	return out, formOutputs, nil
}

// writeCached serializes a form already redacted earlier in this
// RedactPage call (a form referenced by more than one Do), without
// re-parsing or re-redacting it.
func (rn *run) writeCached(xobjID string) ([]byte, bool) {
	stream, ok := rn.cache[xobjID]
	if !ok {
		return nil, false
	}
	body, err := cswriter.Write(stream, rn.writeOpts)
	if err != nil {
		return nil, false
	}
	return body, true
}
