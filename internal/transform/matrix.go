// Package transform implements the 2D affine matrix arithmetic the content
// stream engine needs: CTM concatenation, point/rectangle transforms, and
// the scale/angle decomposition used by line-width and pattern-cell math.
package transform

import (
	"fmt"
	"math"

	"github.com/pdfkit-go/contentengine/common"
)

// Matrix is a linear transform matrix in homogeneous coordinates.
// PDF coordinate transforms are always affine so we only need 6 of these. See NewMatrix.
type Matrix [9]float64

// IdentityMatrix returns the identity transform.
func IdentityMatrix() Matrix {
	return NewMatrix(1, 0, 0, 1, 0, 0)
}

// TranslationMatrix returns a matrix that translates by `tx`, `ty`.
func TranslationMatrix(tx, ty float64) Matrix {
	return NewMatrix(1, 0, 0, 1, tx, ty)
}

// NewMatrix returns an affine transform matrix laid out in homogeneous coordinates as
//
//	a  b  0
//	c  d  0
//	tx ty 1
func NewMatrix(a, b, c, d, tx, ty float64) Matrix {
	m := Matrix{
		a, b, 0,
		c, d, 0,
		tx, ty, 1,
	}
	m.clampRange()
	return m
}

// NewMatrixFromTransforms returns an affine transform matrix that scales by
// `xScale`, `yScale`, rotates by `theta` degrees, then translates by `tx`, `ty`.
func NewMatrixFromTransforms(xScale, yScale, theta, tx, ty float64) Matrix {
	return IdentityMatrix().Scale(xScale, yScale).Rotate(theta).Translate(tx, ty)
}

// String returns a string describing `m`.
func (m Matrix) String() string {
	a, b, c, d, tx, ty := m[0], m[1], m[3], m[4], m[6], m[7]
	return fmt.Sprintf("[%7.4f,%7.4f,%7.4f,%7.4f:%7.4f,%7.4f]", a, b, c, d, tx, ty)
}

// Scale returns `m` pre-multiplied by a scaling of `xScale`, `yScale`.
func (m Matrix) Scale(xScale, yScale float64) Matrix {
	return m.Mult(NewMatrix(xScale, 0, 0, yScale, 0, 0))
}

// Rotate returns `m` pre-multiplied by a rotation of `theta` degrees.
func (m Matrix) Rotate(theta float64) Matrix {
	sin, cos := math.Sincos(theta / 180.0 * math.Pi)
	return m.Mult(NewMatrix(cos, -sin, sin, cos, 0, 0))
}

// Set sets `m` to the affine transform a,b,c,d,tx,ty.
func (m *Matrix) Set(a, b, c, d, tx, ty float64) {
	m[0], m[1] = a, b
	m[3], m[4] = c, d
	m[6], m[7] = tx, ty
	m.clampRange()
}

// Concat sets `m` to `b` × `m` — i.e. `b` is prepended, matching the PDF `cm`
// operator's "concatenate onto the CTM" semantics.
func (m *Matrix) Concat(b Matrix) {
	*m = Matrix{
		b[0]*m[0] + b[1]*m[3], b[0]*m[1] + b[1]*m[4], 0,
		b[3]*m[0] + b[4]*m[3], b[3]*m[1] + b[4]*m[4], 0,
		b[6]*m[0] + b[7]*m[3] + m[6], b[6]*m[1] + b[7]*m[4] + m[7], 1,
	}
	m.clampRange()
}

// Mult returns `b` × `m` without mutating `m`.
func (m Matrix) Mult(b Matrix) Matrix {
	m.Concat(b)
	return m
}

// Translate returns `m` with an extra translation of `tx`,`ty`.
func (m Matrix) Translate(tx, ty float64) Matrix {
	return NewMatrix(m[0], m[1], m[3], m[4], m[6]+tx, m[7]+ty)
}

// Translation returns the translation component of `m`.
func (m Matrix) Translation() (float64, float64) {
	return m[6], m[7]
}

// Transform returns coordinates `x`,`y` transformed by `m`.
func (m Matrix) Transform(x, y float64) (float64, float64) {
	xp := x*m[0] + y*m[1] + m[6]
	yp := x*m[3] + y*m[4] + m[7]
	return xp, yp
}

// Rectangle is an axis-aligned box in some coordinate space.
type Rectangle struct {
	Llx, Lly, Urx, Ury float64
}

// Width returns the rectangle's width, which may be negative for a
// degenerate/malformed box.
func (r Rectangle) Width() float64 { return r.Urx - r.Llx }

// Height returns the rectangle's height, which may be negative for a
// degenerate/malformed box.
func (r Rectangle) Height() float64 { return r.Ury - r.Lly }

// TransformRectangle maps all four corners of `r` through `m` and returns the
// axis-aligned bounding box of the result. Used by nested-stream drivers that
// must re-anchor a transformed bbox (form/pattern/annotation clipping, and
// the annotation-appearance matrix composition).
func (m Matrix) TransformRectangle(r Rectangle) Rectangle {
	xs := make([]float64, 4)
	ys := make([]float64, 4)
	xs[0], ys[0] = m.Transform(r.Llx, r.Lly)
	xs[1], ys[1] = m.Transform(r.Urx, r.Lly)
	xs[2], ys[2] = m.Transform(r.Urx, r.Ury)
	xs[3], ys[3] = m.Transform(r.Llx, r.Ury)

	out := Rectangle{Llx: xs[0], Lly: ys[0], Urx: xs[0], Ury: ys[0]}
	for i := 1; i < 4; i++ {
		if xs[i] < out.Llx {
			out.Llx = xs[i]
		}
		if xs[i] > out.Urx {
			out.Urx = xs[i]
		}
		if ys[i] < out.Lly {
			out.Lly = ys[i]
		}
		if ys[i] > out.Ury {
			out.Ury = ys[i]
		}
	}
	return out
}

// ScalingFactorX returns the X scaling of the affine transform.
func (m Matrix) ScalingFactorX() float64 {
	return math.Hypot(m[0], m[1])
}

// ScalingFactorY returns the Y scaling of the affine transform.
func (m Matrix) ScalingFactorY() float64 {
	return math.Hypot(m[3], m[4])
}

// Angle returns the angle of the affine transform in `m`, in degrees.
func (m Matrix) Angle() float64 {
	theta := math.Atan2(-m[1], m[0])
	if theta < 0.0 {
		theta += 2 * math.Pi
	}
	return theta / math.Pi * 180.0
}

// Inverse returns the inverse of `m` and whether the inverse exists.
func (m Matrix) Inverse() (Matrix, bool) {
	a, b := m[0], m[1]
	c, d := m[3], m[4]
	tx, ty := m[6], m[7]
	det := a*d - b*c
	if math.Abs(det) < minDeterminant {
		return Matrix{}, false
	}
	aI, bI := d/det, -b/det
	cI, dI := -c/det, a/det
	txI := -(aI*tx + cI*ty)
	tyI := -(bI*tx + dI*ty)
	return NewMatrix(aI, bI, cI, dI, txI, tyI), true
}

// NeutralWidth converts a user-space stroke width `w` to the device-neutral
// width used by §4.G's transformedWidth: w times half the length of
// (a+c, b+d), the image of the (1,1) diagonal under the matrix's
// rotation/scale block (so w·√2/2 for the identity).
func (m Matrix) NeutralWidth(w float64) float64 {
	a, b, c, d := m[0], m[1], m[3], m[4]
	return w * math.Hypot(a+c, b+d) / 2
}

// clampRange forces `m`'s entries into a sane range, guarding against
// runaway values from a pathological or corrupt content stream.
func (m *Matrix) clampRange() {
	for i, x := range m {
		if x > maxAbsNumber {
			common.Log.Debug("CLAMP: %g -> %g", x, maxAbsNumber)
			m[i] = maxAbsNumber
		} else if x < -maxAbsNumber {
			common.Log.Debug("CLAMP: %g -> %g", x, -maxAbsNumber)
			m[i] = -maxAbsNumber
		}
	}
}

// Unrealistic reports whether `m` is too close to singular to have been
// produced intentionally — i.e. it is probably junk from a corrupt stream.
func (m Matrix) Unrealistic() bool {
	xx, xy, yx, yy := math.Abs(m[0]), math.Abs(m[1]), math.Abs(m[3]), math.Abs(m[4])
	goodXxYy := xx > minSafeScale && yy > minSafeScale
	goodXyYx := xy > minSafeScale && yx > minSafeScale
	return !(goodXxYy || goodXyYx)
}

// minSafeScale is the minimum matrix scale expected to occur in a valid content stream.
const minSafeScale = 1e-6

// maxAbsNumber is the maximum absolute matrix element value allowed, to avoid
// floating point exceptions on pathological input.
const maxAbsNumber = 1e9

// minDeterminant is the smallest matrix determinant this package will invert.
// Smaller determinants lead to unstable results.
const minDeterminant = 1.0e-6
