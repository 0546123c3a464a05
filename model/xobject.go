package model

import "github.com/pdfkit-go/contentengine/internal/transform"

// XObject is the interface shared by resource-dictionary XObject entries the
// engine's `Do` operator can encounter. Image XObjects carry no content
// stream to execute — drawing one is an operator implementation the engine
// delegates entirely to the client (§1) — so Image exists only so `Do` can
// type-switch and skip them without error.
type XObject interface {
	xobject()
}

// Image is an image XObject. The engine never executes it; `Do` hands it to
// the client's registered handler (or onUnsupported) unchanged.
type Image struct {
	Width, Height int
}

func (*Image) xobject() {}

// Form is a form XObject (§4.E "Form XObject" and, when Group is non-nil,
// "Transparency group"): a self-contained, reusable content stream.
type Form struct {
	Contents  []byte
	Resources Resources // nil inherits per §4.B's scope rule
	Matrix    transform.Matrix
	BBox      Rectangle
	Group     *Group // non-nil marks this form as a transparency group
}

func (*Form) xobject() {}

// Group is a transparency-group attribute dictionary (the `/Group` entry of
// a form XObject), per §4.E's transparency-group reset rule.
type Group struct {
	Isolated bool
	Knockout bool
	// Subtype is normally "Transparency"; kept for completeness though the
	// engine only acts on its presence, not its value.
	Subtype string
}

// TilingPattern is a tiling-pattern content stream (§4.E "Tiling pattern").
type TilingPattern struct {
	Contents  []byte
	Resources Resources
	Matrix    transform.Matrix // maps pattern space to the default coordinate system of the pattern's parent content stream
	BBox      Rectangle
	XStep     float64
	YStep     float64
	PaintType int // 1 = colored, 2 = uncolored
}

// Annotation is a PDF annotation carrying a normal appearance stream (§4.E
// "Annotation appearance").
type Annotation struct {
	Rect       Rectangle
	Appearance *Appearance
}

// Appearance is an annotation's normal-appearance form XObject.
type Appearance struct {
	Contents  []byte
	Resources Resources
	Matrix    transform.Matrix
	BBox      Rectangle
}
