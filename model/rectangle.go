// Package model implements the small slice of the PDF document object model
// that the content-stream engine consumes (§6 of the interpreter spec): pages,
// resource dictionaries, fonts, and the content-stream-bearing objects (form
// XObjects, tiling patterns, annotation appearances). Font-program parsing,
// full color-space machinery, and file-level object resolution are out of
// scope — the engine only needs the capability surface described here.
package model

import "github.com/pdfkit-go/contentengine/internal/transform"

// Rectangle is a PDF rectangle: lower-left/upper-right corners in whatever
// coordinate space it was defined.
type Rectangle struct {
	Llx, Lly, Urx, Ury float64
}

// Width returns Urx - Llx.
func (r Rectangle) Width() float64 { return r.Urx - r.Llx }

// Height returns Ury - Lly.
func (r Rectangle) Height() float64 { return r.Ury - r.Lly }

// Transform maps `r` through `m`, returning the bounding box of the
// transformed corners (a rectangle is not generally preserved under a
// rotating/shearing transform, so this is a re-box, matching the teacher's
// bbox-transform-then-bound approach used when clipping to a transformed
// form/pattern/annotation bbox).
func (r Rectangle) Transform(m transform.Matrix) Rectangle {
	tr := m.TransformRectangle(transform.Rectangle{Llx: r.Llx, Lly: r.Lly, Urx: r.Urx, Ury: r.Ury})
	return Rectangle{Llx: tr.Llx, Lly: tr.Lly, Urx: tr.Urx, Ury: tr.Ury}
}

// IsDegenerate reports whether the rectangle has non-positive width or
// height — used by the annotation-appearance driver (§4.E) to skip
// processing entirely per S6.
func (r Rectangle) IsDegenerate() bool {
	return r.Width() <= 0 || r.Height() <= 0
}
