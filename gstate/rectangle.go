/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package gstate

import "math"

// tolerance is the distance below which two coordinates are considered equal.
// Large enough to cover floating point rounding error, small enough that a
// sub-tolerance difference is never visible on a rendered page.
const tolerance = 1.0e-6

// Rectangle is an axis-aligned rectangle in PDF user space. A Rectangle
// constructed by this package always satisfies Llx<=Urx and Lly<=Ury; use
// Normalize to restore that property after direct field manipulation.
type Rectangle struct {
	Llx, Lly, Urx, Ury float64
}

// NewRectangle returns a Rectangle built from two opposite corners, in
// whichever order, normalized so Llx<=Urx and Lly<=Ury.
func NewRectangle(x0, y0, x1, y1 float64) Rectangle {
	r := Rectangle{Llx: x0, Lly: y0, Urx: x1, Ury: y1}
	r.Normalize()
	return r
}

// Normalize swaps coordinates in place so that Llx<=Urx and Lly<=Ury.
func (r *Rectangle) Normalize() {
	if r.Llx > r.Urx {
		r.Llx, r.Urx = r.Urx, r.Llx
	}
	if r.Lly > r.Ury {
		r.Lly, r.Ury = r.Ury, r.Lly
	}
}

// Width returns the width of `r`.
func (r Rectangle) Width() float64 { return r.Urx - r.Llx }

// Height returns the height of `r`.
func (r Rectangle) Height() float64 { return r.Ury - r.Lly }

// IsZero reports whether `r` has zero area.
func (r Rectangle) IsZero() bool {
	return math.Abs(r.Width()) < tolerance || math.Abs(r.Height()) < tolerance
}

// Center returns the center point of `r`.
func (r Rectangle) Center() (float64, float64) {
	return (r.Llx + r.Urx) / 2, (r.Lly + r.Ury) / 2
}

// Union returns the smallest rectangle containing both `r` and `other`.
func (r Rectangle) Union(other Rectangle) Rectangle {
	return Rectangle{
		Llx: math.Min(r.Llx, other.Llx),
		Lly: math.Min(r.Lly, other.Lly),
		Urx: math.Max(r.Urx, other.Urx),
		Ury: math.Max(r.Ury, other.Ury),
	}
}

// Intersects reports whether `r` and `other` overlap on both axes.
func (r Rectangle) Intersects(other Rectangle) bool {
	return r.intersectsX(other) && r.intersectsY(other)
}

func (r Rectangle) intersectsX(other Rectangle) bool {
	return r.Llx <= other.Urx && other.Llx <= r.Urx
}

func (r Rectangle) intersectsY(other Rectangle) bool {
	return r.Lly <= other.Ury && other.Lly <= r.Ury
}

// Intersection returns the largest rectangle contained by both `r` and
// `other`, and false if they do not overlap.
func (r Rectangle) Intersection(other Rectangle) (Rectangle, bool) {
	if !r.Intersects(other) {
		return Rectangle{}, false
	}
	return Rectangle{
		Llx: math.Max(r.Llx, other.Llx),
		Urx: math.Min(r.Urx, other.Urx),
		Lly: math.Max(r.Lly, other.Lly),
		Ury: math.Min(r.Ury, other.Ury),
	}, true
}

// Contains reports whether the point (x, y) lies within `r`, inclusive of
// its boundary.
func (r Rectangle) Contains(x, y float64) bool {
	return r.Llx <= x && x <= r.Urx && r.Lly <= y && y <= r.Ury
}

// Expand returns `r` grown outward by `dx` on each side along x and `dy` on
// each side along y. Used by the redaction decider's collapsed-kern guard
// to widen a glyph box before the center-containment test.
func (r Rectangle) Expand(dx, dy float64) Rectangle {
	return Rectangle{
		Llx: r.Llx - dx,
		Lly: r.Lly - dy,
		Urx: r.Urx + dx,
		Ury: r.Ury + dy,
	}
}

// Corners returns the four corners of `r` in counter-clockwise order
// starting at (Llx, Lly).
func (r Rectangle) Corners() [4][2]float64 {
	return [4][2]float64{
		{r.Llx, r.Lly},
		{r.Urx, r.Lly},
		{r.Urx, r.Ury},
		{r.Llx, r.Ury},
	}
}

// Transform returns the smallest axis-aligned rectangle enclosing `r`'s
// four corners after being mapped through `m`. PDF affine transforms can
// rotate or skew a rectangle into a non-axis-aligned parallelogram, so the
// result is always the bounding box of the transformed corners -- the same
// way a glyph's device-space bbox is re-derived from its text rendering
// matrix.
func (r Rectangle) Transform(m Matrix) Rectangle {
	corners := r.Corners()
	x0, y0 := m.Transform(corners[0][0], corners[0][1])
	out := Rectangle{Llx: x0, Lly: y0, Urx: x0, Ury: y0}
	for _, c := range corners[1:] {
		x, y := m.Transform(c[0], c[1])
		if x < out.Llx {
			out.Llx = x
		}
		if x > out.Urx {
			out.Urx = x
		}
		if y < out.Lly {
			out.Lly = y
		}
		if y > out.Ury {
			out.Ury = y
		}
	}
	return out
}
