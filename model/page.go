package model

import "github.com/pdfkit-go/contentengine/internal/transform"

// Page is the capability surface the engine needs from a page (§6): crop
// box, page matrix, content bytes, resources, and whether there is anything
// to run at all.
type Page struct {
	CropBox   Rectangle
	Matrix    transform.Matrix // device-space page matrix in effect at page entry, e.g. a rotation
	Contents  []byte
	Resources Resources
}

// HasContents reports whether the page has a non-empty content stream.
// ProcessPage (§6) returns at once, without touching engine state, when
// this is false.
func (p *Page) HasContents() bool {
	return len(p.Contents) > 0
}
