package model

// Resources is the capability surface the engine needs from a resource
// dictionary (§6: "resource dictionary (opaque — passed to operator
// handlers)"). Concrete lookups (font/XObject/pattern/ExtGState) are the only
// ones the engine's built-in operators need; color-space and shading lookups
// are left to client-registered handlers since color setting is an operator
// implementation the engine does not own (§1).
type Resources interface {
	GetFont(name string) (Font, bool)
	GetXObject(name string) (XObject, bool)
	GetPattern(name string) (*TilingPattern, bool)
	GetExtGState(name string) (*ExtGState, bool)
}

// MapResources is the default in-memory Resources implementation: four name
// tables, one per lookup kind, adapted from the teacher's PdfPageResources
// (model/resources.go) but trimmed to what the engine consumes.
type MapResources struct {
	Fonts     map[string]Font
	XObjects  map[string]XObject
	Patterns  map[string]*TilingPattern
	ExtGState map[string]*ExtGState
}

// NewResources returns an empty MapResources with all tables initialized.
func NewResources() *MapResources {
	return &MapResources{
		Fonts:     map[string]Font{},
		XObjects:  map[string]XObject{},
		Patterns:  map[string]*TilingPattern{},
		ExtGState: map[string]*ExtGState{},
	}
}

// GetFont implements Resources.
func (r *MapResources) GetFont(name string) (Font, bool) {
	f, ok := r.Fonts[name]
	return f, ok
}

// GetXObject implements Resources.
func (r *MapResources) GetXObject(name string) (XObject, bool) {
	x, ok := r.XObjects[name]
	return x, ok
}

// GetPattern implements Resources.
func (r *MapResources) GetPattern(name string) (*TilingPattern, bool) {
	p, ok := r.Patterns[name]
	return p, ok
}

// GetExtGState implements Resources.
func (r *MapResources) GetExtGState(name string) (*ExtGState, bool) {
	g, ok := r.ExtGState[name]
	return g, ok
}

// ExtGState is the subset of a graphics-state parameter dictionary (the
// operand of the `gs` operator) the engine understands and applies to the
// current GraphicsState. Pointer fields are nil when the source dictionary
// didn't specify that entry, per PDF's "only the given entries are updated"
// rule for `gs`.
type ExtGState struct {
	LineWidth       *float64
	LineCap         *int
	LineJoin        *int
	MiterLimit      *float64
	Dash            *DashPattern
	RenderingIntent *string
	StrokeAlpha     *float64
	FillAlpha       *float64
	BlendMode       *string
	SoftMask        *SoftMask // nil entry means "not specified"; explicit None is SoftMask{None: true}
	Font            Font
	FontSize        float64
}

// DashPattern is a line dash array and phase, as set by `d` or an ExtGState.
type DashPattern struct {
	Array []float64
	Phase float64
}

// SoftMask describes a `gs` SMask entry: either the name "None" (None==true)
// or a transparency group to use as the mask source.
type SoftMask struct {
	None  bool
	Group *Form
}
