/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package gstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatrixConcatComposesTranslationAndScale(t *testing.T) {
	m := IdentityMatrix()
	m.Concat(NewMatrix(2, 0, 0, 2, 0, 0))
	m.Concat(NewMatrix(1, 0, 0, 1, 10, 20))
	x, y := m.Transform(1, 1)
	require.InDelta(t, 22.0, x, 1e-9)
	require.InDelta(t, 42.0, y, 1e-9)
}

func TestMatrixInverseRoundTrips(t *testing.T) {
	m := NewMatrix(2, 0, 0, 3, 5, 7)
	inv, ok := m.Inverse()
	require.True(t, ok)
	x, y := m.Transform(4, 6)
	xp, yp := inv.Transform(x, y)
	require.InDelta(t, 4.0, xp, 1e-9)
	require.InDelta(t, 6.0, yp, 1e-9)
}

func TestMatrixInverseFailsOnSingular(t *testing.T) {
	m := NewMatrix(0, 0, 0, 0, 0, 0)
	_, ok := m.Inverse()
	require.False(t, ok)
}

func TestRectangleNormalizeSwapsCoordinates(t *testing.T) {
	r := NewRectangle(10, 10, 0, 0)
	require.Equal(t, 0.0, r.Llx)
	require.Equal(t, 0.0, r.Lly)
	require.Equal(t, 10.0, r.Urx)
	require.Equal(t, 10.0, r.Ury)
}

func TestRectangleIntersectsInclusiveBoundary(t *testing.T) {
	a := NewRectangle(0, 0, 10, 10)
	b := NewRectangle(10, 10, 20, 20)
	require.True(t, a.Intersects(b))

	c := NewRectangle(10.0001, 10.0001, 20, 20)
	require.False(t, a.Intersects(c))
}

func TestRectangleUnionAndIntersection(t *testing.T) {
	a := NewRectangle(0, 0, 10, 10)
	b := NewRectangle(5, 5, 15, 15)

	u := a.Union(b)
	require.Equal(t, Rectangle{Llx: 0, Lly: 0, Urx: 15, Ury: 15}, u)

	i, ok := a.Intersection(b)
	require.True(t, ok)
	require.Equal(t, Rectangle{Llx: 5, Lly: 5, Urx: 10, Ury: 10}, i)
}

func TestRectangleTransformBoundsRotatedCorners(t *testing.T) {
	r := NewRectangle(0, 0, 10, 1)
	m := IdentityMatrix().Rotate(90)
	out := r.Transform(m)
	require.InDelta(t, -1.0, out.Llx, 1e-9)
	require.InDelta(t, 0.0, out.Lly, 1e-9)
	require.InDelta(t, 0.0, out.Urx, 1e-9)
	require.InDelta(t, 10.0, out.Ury, 1e-9)
}

func TestStatePushPopRestoresFrame(t *testing.T) {
	s := NewState()
	s.Top().ConcatCTM(TranslationMatrix(5, 5))
	s.Push()
	s.Top().ConcatCTM(TranslationMatrix(1, 1))
	x, y := s.Top().CTM.Transform(0, 0)
	require.InDelta(t, 6.0, x, 1e-9)
	require.InDelta(t, 6.0, y, 1e-9)

	require.NoError(t, s.Pop())
	x, y = s.Top().CTM.Transform(0, 0)
	require.InDelta(t, 5.0, x, 1e-9)
	require.InDelta(t, 5.0, y, 1e-9)
}

func TestStatePopUnderflowReturnsError(t *testing.T) {
	s := NewState()
	require.ErrorIs(t, s.Pop(), ErrStackUnderflow)
}

func TestGlyphAdvanceFormula(t *testing.T) {
	adv := GlyphAdvance(500, 0, 12, 1, 0, 0, false)
	require.InDelta(t, 6.0, adv, 1e-9)

	withWordSpace := GlyphAdvance(500, 0, 12, 1, 0, 2, true)
	require.InDelta(t, 8.0, withWordSpace, 1e-9)

	withCharSpace := GlyphAdvance(500, 0, 12, 1, 1, 0, false)
	require.InDelta(t, 7.0, withCharSpace, 1e-9)

	withTj := GlyphAdvance(500, 200, 12, 1, 0, 0, false)
	require.InDelta(t, 3.6, withTj, 1e-9)
}

func TestFrameTextMatrixTranslateLine(t *testing.T) {
	f := NewFrame()
	f.BeginText()
	f.TranslateLine(10, 20)
	x, y := f.Tm.Transform(0, 0)
	require.InDelta(t, 10.0, x, 1e-9)
	require.InDelta(t, 20.0, y, 1e-9)

	f.TranslateLine(1, 1)
	x, y = f.Tm.Transform(0, 0)
	require.InDelta(t, 11.0, x, 1e-9)
	require.InDelta(t, 21.0, y, 1e-9)
}
