/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package page

import "github.com/pdfredact/pdfredact/gstate"

// PageRotation is a page's /Rotate value, constrained to a right angle.
// Real files carry values the PDF spec technically permits but that are
// not one of the four canonical angles -- negative multiples, or multiples
// past 360 -- so this is normalized rather than trusted as-is.
type PageRotation int

// Canonical rotations.
const (
	Rotate0   PageRotation = 0
	Rotate90  PageRotation = 90
	Rotate180 PageRotation = 180
	Rotate270 PageRotation = 270
)

// Normalize folds `r` into {0, 90, 180, 270}, rounding to the nearest right
// angle and wrapping negative or over-large values the way a /Rotate entry
// of -90 or 450 is supposed to be interpreted.
func (r PageRotation) Normalize() PageRotation {
	deg := int(r) % 360
	if deg < 0 {
		deg += 360
	}
	deg = ((deg + 45) / 90) * 90
	deg %= 360
	return PageRotation(deg)
}

// RotationTransform returns the affine transform that maps a rectangle
// given in the page's visual (as-displayed) space into content-stream
// space, given the page's un-rotated media box. A caller-supplied redaction
// rectangle is normally expressed in visual space (the coordinates a
// reviewer would click on a rendered page), and must be rotated back into
// content-stream space before it can be compared against an Operation's
// BBox, which the dispatcher always computes in content-stream space.
func RotationTransform(rotation PageRotation, mediaBox gstate.Rectangle) gstate.Matrix {
	w, h := mediaBox.Width(), mediaBox.Height()
	switch rotation.Normalize() {
	case Rotate90:
		return gstate.NewMatrix(0, -1, 1, 0, w, 0)
	case Rotate180:
		return gstate.NewMatrix(-1, 0, 0, -1, w, h)
	case Rotate270:
		return gstate.NewMatrix(0, 1, -1, 0, 0, h)
	default:
		return gstate.IdentityMatrix()
	}
}
