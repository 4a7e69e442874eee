/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfredact/pdfredact/gstate"
	"github.com/pdfredact/pdfredact/internal/memstore"
	"github.com/pdfredact/pdfredact/internal/simplefont"
	"github.com/pdfredact/pdfredact/pdfstore"
	"github.com/pdfredact/pdfredact/redact"
)

func resolver() *simplefont.Resolver {
	return simplefont.New(map[string]simplefont.Font{"F1": {}})
}

func TestRedactPageNoFormsAppliesDecider(t *testing.T) {
	store := memstore.New()
	store.Pages[1] = memstore.Page{
		Content:   []byte("10 20 100 50 re f"),
		Resources: map[string]pdfstore.XObject{},
	}

	orch := NewOrchestrator(store, resolver())
	report, err := orch.RedactPage(context.Background(), 1, []Request{
		{Rect: gstate.NewRectangle(0, 0, 200, 200), Policy: redact.WholeOperation},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, report.OperationsRemoved)

	committed, ok := store.Committed[1]
	require.True(t, ok)
	require.NotContains(t, string(committed), "re")
}

func TestRedactPageEmptyContentRoundTrips(t *testing.T) {
	store := memstore.New()
	store.Pages[1] = memstore.Page{Content: []byte(""), Resources: map[string]pdfstore.XObject{}}

	orch := NewOrchestrator(store, resolver())
	report, err := orch.RedactPage(context.Background(), 1, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, report.OperationsRemoved)

	committed, ok := store.Committed[1]
	require.True(t, ok)
	require.Equal(t, "q\nQ\n", string(committed))
}

func TestRedactPageZeroAreaRectangleMatchesNothing(t *testing.T) {
	store := memstore.New()
	store.Pages[1] = memstore.Page{
		Content:   []byte("10 20 100 50 re f"),
		Resources: map[string]pdfstore.XObject{},
	}

	orch := NewOrchestrator(store, resolver())
	report, err := orch.RedactPage(context.Background(), 1, []Request{
		{Rect: gstate.NewRectangle(10, 20, 10, 70), Policy: redact.WholeOperation},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, report.OperationsRemoved)
}

func TestRedactPageRecursesIntoForm(t *testing.T) {
	store := memstore.New()
	formXObj := pdfstore.XObject{ID: "form-1", IsForm: true}
	store.Pages[1] = memstore.Page{
		Content:   []byte("q 1 0 0 1 0 0 cm /Fm1 Do Q"),
		Resources: map[string]pdfstore.XObject{"Fm1": formXObj},
	}
	store.Forms["form-1"] = memstore.Form{
		ID:        "form-1",
		Content:   []byte("10 20 100 50 re f"),
		Resources: map[string]pdfstore.XObject{},
	}

	orch := NewOrchestrator(store, resolver())
	report, err := orch.RedactPage(context.Background(), 1, []Request{
		{Rect: gstate.NewRectangle(0, 0, 200, 200), Policy: redact.WholeOperation},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, report.OperationsRemoved)

	formOut, ok := store.CommittedForms[1]["form-1"]
	require.True(t, ok)
	require.NotContains(t, string(formOut), "re")
}

func TestRedactPageDetectsFormCycle(t *testing.T) {
	store := memstore.New()
	formXObj := pdfstore.XObject{ID: "form-a", IsForm: true}
	store.Pages[1] = memstore.Page{
		Content:   []byte("/Fm1 Do"),
		Resources: map[string]pdfstore.XObject{"Fm1": formXObj},
	}
	// Form A draws itself.
	store.Forms["form-a"] = memstore.Form{
		ID:        "form-a",
		Content:   []byte("/Fm1 Do"),
		Resources: map[string]pdfstore.XObject{"Fm1": formXObj},
	}

	orch := NewOrchestrator(store, resolver())
	report, err := orch.RedactPage(context.Background(), 1, nil, Options{})
	require.NoError(t, err)

	var sawCycle bool
	for _, w := range report.Warnings {
		if w.Kind == WarningCycleDetected {
			sawCycle = true
		}
	}
	require.True(t, sawCycle)
}

func TestRedactPageDepthLimitStopsRecursion(t *testing.T) {
	store := memstore.New()
	outerXObj := pdfstore.XObject{ID: "form-outer", IsForm: true}
	innerXObj := pdfstore.XObject{ID: "form-inner", IsForm: true}
	store.Pages[1] = memstore.Page{
		Content:   []byte("/Fm1 Do"),
		Resources: map[string]pdfstore.XObject{"Fm1": outerXObj},
	}
	store.Forms["form-outer"] = memstore.Form{
		ID:        "form-outer",
		Content:   []byte("/Fm2 Do"),
		Resources: map[string]pdfstore.XObject{"Fm2": innerXObj},
	}
	store.Forms["form-inner"] = memstore.Form{
		ID:        "form-inner",
		Content:   []byte("10 20 100 50 re f"),
		Resources: map[string]pdfstore.XObject{},
	}

	orch := NewOrchestrator(store, resolver())
	report, err := orch.RedactPage(context.Background(), 1, []Request{
		{Rect: gstate.NewRectangle(0, 0, 200, 200), Policy: redact.WholeOperation},
	}, Options{FormRecursionLimit: 1})
	require.NoError(t, err)

	var sawDepthLimit bool
	for _, w := range report.Warnings {
		if w.Kind == WarningDepthLimit {
			sawDepthLimit = true
		}
	}
	require.True(t, sawDepthLimit)
	_, innerCommitted := store.CommittedForms[1]["form-inner"]
	require.False(t, innerCommitted)
}

func TestRedactPageRotatesRequestsIntoContentSpace(t *testing.T) {
	store := memstore.New()
	store.Pages[1] = memstore.Page{
		Content:   []byte("10 20 100 50 re f"),
		Resources: map[string]pdfstore.XObject{},
	}

	orch := NewOrchestrator(store, resolver())
	// In a 90-degree-rotated page, a rectangle covering the whole visual
	// page maps onto the whole media box in content space, where the "re"
	// box actually lives.
	mediaBox := gstate.NewRectangle(0, 0, 200, 200)
	report, err := orch.RedactPage(context.Background(), 1, []Request{
		{Rect: gstate.NewRectangle(0, 0, 200, 200), Policy: redact.WholeOperation},
	}, Options{Rotation: Rotate90, MediaBox: mediaBox})
	require.NoError(t, err)
	require.Equal(t, 2, report.OperationsRemoved)
}
