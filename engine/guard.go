package engine

import (
	"github.com/pdfkit-go/contentengine/common"
	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

// recursionGuard is a monotonic depth counter used by operator handlers
// (notably Do) to bail out of pathological self-referential XObject graphs
// (§3 "Recursion depth", §4.G).
type recursionGuard struct {
	level int
}

// increase increments the depth counter and returns the new depth.
func (g *recursionGuard) increase() int {
	g.level++
	return g.level
}

// decrease decrements the depth counter. A sequence of balanced
// increase/decrease pairs leaves level == 0 (§8.7); dropping below zero
// indicates an unmatched decrease, logged as an engine-internal bug rather
// than surfaced to the caller.
func (g *recursionGuard) decrease() {
	g.level--
	if g.level < 0 {
		common.Log.Error("contentengine: recursion guard decreased below zero")
	}
}

func (g *recursionGuard) get() int { return g.level }

// defaultMaxRecursionDepth is the recursion ceiling an Engine uses unless
// overridden via WithMaxRecursionDepth (§9 "a configurable ceiling").
const defaultMaxRecursionDepth = 32

// TransformedPoint maps a user-space point through `m` (§4.G coordinate
// transforms), exposed for client-registered operator handlers (e.g. path
// construction) that need the same device-space mapping the engine itself
// uses.
func TransformedPoint(m transform.Matrix, x, y float64) (float64, float64) {
	return m.Transform(x, y)
}

// TransformedWidth converts a user-space line width to a device-neutral
// width under `m`, via Matrix.NeutralWidth (§4.G), exposed for
// client-registered painting handlers (e.g. stroking).
func TransformedWidth(m transform.Matrix, w float64) float64 {
	return m.NeutralWidth(w)
}

// setLineDashPattern clamps a negative dash phase to 0 before storing it
// (§8.6 "Dash phase clamp"), logging a warning when clamping occurred.
func setLineDashPattern(array []float64, phase float64) model.DashPattern {
	if phase < 0 {
		common.Log.Warning("contentengine: negative dash phase %g clamped to 0", phase)
		phase = 0
	}
	return model.DashPattern{Array: array, Phase: phase}
}
