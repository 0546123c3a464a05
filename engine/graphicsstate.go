// Package engine implements the PDF content-stream execution engine: the
// token-driven dispatch loop, the nested graphics-state stack, the
// resource-scoping discipline across recursively embedded streams, and the
// text-showing sub-engine. It is the counterpart of the teacher's
// contentstream.ContentStreamProcessor, generalized to own state and
// recursion rather than a flat operator switch.
package engine

import (
	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

// ClipPath is the current clipping path. The engine only ever sets the
// Rect/IsRect form itself (clipping a nested stream to a bbox, §4.E); actual
// path-construction/clip operators (W, W*, re, m, l, c, ...) are operator
// implementations out of scope for the engine core (§1), so Opaque is a slot
// for whatever value a client's path-construction handlers choose to store.
type ClipPath struct {
	IsRect bool
	Rect   model.Rectangle
	Opaque interface{}
}

// TextGraphicsState is the text-state sub-record of GraphicsState (§3).
type TextGraphicsState struct {
	Font             model.Font
	FontSize         float64
	CharSpacing      float64
	WordSpacing      float64
	HorizScalingPct  float64 // percent, default 100
	Leading          float64
	Rise             float64
	RenderMode       int
	Knockout         bool
}

// defaultTextState returns the PDF-spec default text state: 100% horizontal
// scaling, fill rendering mode, knockout on.
func defaultTextState() TextGraphicsState {
	return TextGraphicsState{HorizScalingPct: 100, RenderMode: 0, Knockout: true}
}

// clone returns a deep-enough copy of the text state for GraphicsState's
// clone invariant; Font is an interface reference, shared by convention
// (fonts are immutable once resolved).
func (ts TextGraphicsState) clone() TextGraphicsState {
	return ts
}

// GraphicsState is a single snapshot of the PDF imaging-model state (§3). The
// zero value is not meaningful on its own — use NewGraphicsState.
type GraphicsState struct {
	CTM transform.Matrix
	Clip ClipPath

	// Color setting is an operator implementation the engine does not own
	// (§1); these are opaque client values carried through save/restore.
	ColorSpaceStroking    interface{}
	ColorSpaceNonStroking interface{}
	ColorStroking         interface{}
	ColorNonStroking      interface{}

	LineWidth       float64
	LineCap         int
	LineJoin        int
	MiterLimit      float64
	Dash            model.DashPattern
	RenderingIntent string
	Flatness        float64

	StrokeAlpha float64 // CA
	FillAlpha   float64 // ca
	BlendMode   string
	SoftMask    *model.SoftMask
	OverprintStroke bool
	OverprintFill   bool
	OverprintMode   int

	Text TextGraphicsState
}

// NewGraphicsState returns the default graphics state the PDF spec mandates
// at the start of a page or nested stream: identity CTM (the caller
// overwrites this with the page/form matrix as appropriate), no clip, full
// opacity, Normal blend, no soft mask, 1-unit line width, miter joins.
func NewGraphicsState() GraphicsState {
	return GraphicsState{
		CTM:             transform.IdentityMatrix(),
		LineWidth:       1.0,
		MiterLimit:      10.0,
		RenderingIntent: "RelativeColorimetric",
		StrokeAlpha:     1.0,
		FillAlpha:       1.0,
		BlendMode:       "Normal",
		Text:            defaultTextState(),
	}
}

// Clone returns a deep copy of `gs` sufficient for the stack's save/restore
// invariant: slices (the dash array) are copied so mutating the clone never
// affects the original (§4.A "duplicate (deep-clone) the top").
func (gs GraphicsState) Clone() GraphicsState {
	out := gs
	if gs.Dash.Array != nil {
		out.Dash.Array = append([]float64(nil), gs.Dash.Array...)
	}
	out.Text = gs.Text.clone()
	return out
}

// GraphicsStateStack is a LIFO stack of GraphicsState, never empty once
// initialized (§3 invariant: "the stack is never empty during processing").
type GraphicsStateStack struct {
	entries []GraphicsState
}

// NewGraphicsStateStack returns a stack seeded with a single entry, `initial`.
func NewGraphicsStateStack(initial GraphicsState) *GraphicsStateStack {
	return &GraphicsStateStack{entries: []GraphicsState{initial}}
}

// Save duplicates the top of the stack and pushes the copy (`q`).
func (s *GraphicsStateStack) Save() {
	s.entries = append(s.entries, s.Top().Clone())
}

// emptyStackError is the cause inside the EmptyGraphicsStack error that
// Restore returns when only one entry remains —
// PDF semantics are that the bottom entry of a stream's stack is never
// popped (§4.A).
type emptyStackError struct{}

func (emptyStackError) Error() string { return "graphics state stack is empty" }

// Restore pops the top of the stack (`Q`). Fails with EmptyGraphicsStack when
// only the bottom entry remains; the operator handler decides whether to
// demote that to a warning (§4.A, §7).
func (s *GraphicsStateStack) Restore() error {
	if len(s.entries) <= 1 {
		return &Error{Kind: EmptyGraphicsStack, Op: "Q", Err: emptyStackError{}}
	}
	s.entries = s.entries[:len(s.entries)-1]
	return nil
}

// Top returns the current (top) graphics state. Calling this on an empty
// stack is a contract violation the engine never allows to occur.
func (s *GraphicsStateStack) Top() *GraphicsState {
	return &s.entries[len(s.entries)-1]
}

// Size returns the number of entries on the stack.
func (s *GraphicsStateStack) Size() int { return len(s.entries) }

// SaveStack replaces the stack wholesale with a fresh one seeded by a clone
// of the current top, returning the old stack opaquely so the caller can
// reinstate it later (§4.A "saveStack/restoreStack", used by every nested-
// stream driver in §4.E so that an unbalanced q/Q in a nested stream can
// never leak into — or pop past — the parent's state).
func (s *GraphicsStateStack) SaveStack() *GraphicsStateStack {
	old := &GraphicsStateStack{entries: s.entries}
	s.entries = []GraphicsState{s.Top().Clone()}
	return old
}

// RestoreStack reinstates a stack previously returned by SaveStack, verbatim.
func (s *GraphicsStateStack) RestoreStack(saved *GraphicsStateStack) {
	s.entries = saved.entries
}
