package engine

import (
	"errors"
	"fmt"

	"github.com/pdfkit-go/contentengine/common"
	"github.com/pdfkit-go/contentengine/core"
	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

// EventSink is the extension-point surface a client implements to observe
// and influence engine behavior (§4.F/G "extension hooks", §6 "exposed to
// clients"). Embed DefaultEventSink to get no-op defaults for hooks you
// don't care about.
type EventSink interface {
	// BeginText/EndText are notified on BT/ET; no return value influences behavior.
	BeginText()
	EndText()

	// ShowGlyph is consulted before the engine's default glyph dispatch; a
	// true return means "handled, skip the default" (§4.F step 5).
	ShowGlyph(trm transform.Matrix, font model.Font, code uint32, w model.Displacement) bool
	// ShowFontGlyph notifies a non-Type-3 glyph that reached the default path.
	ShowFontGlyph(trm transform.Matrix, font model.Font, code uint32, w model.Displacement)
	// ShowType3Glyph notifies a Type-3 glyph just before its char proc re-enters §4.E.
	ShowType3Glyph(trm transform.Matrix, font model.Font, code uint32)

	BeginMarkedContentSequence(tag string, properties core.Object)
	EndMarkedContentSequence()

	// OnUnsupported is invoked on a dispatch miss (§4.C).
	OnUnsupported(name string, operands []core.Object)
	// OnOperatorError is invoked for every handler error, purely for
	// observation/logging — the recover-vs-fatal decision itself is the
	// engine's fixed default policy (§4.C, §7), not client-overridable.
	OnOperatorError(name string, operands []core.Object, err error)
}

// DefaultEventSink implements EventSink with no-op bodies. Clients embed it
// and override only the hooks they need, matching the teacher's pattern of
// small handler structs with a shared embeddable base.
type DefaultEventSink struct{}

func (DefaultEventSink) BeginText() {}
func (DefaultEventSink) EndText()   {}
func (DefaultEventSink) ShowGlyph(transform.Matrix, model.Font, uint32, model.Displacement) bool {
	return false
}
func (DefaultEventSink) ShowFontGlyph(transform.Matrix, model.Font, uint32, model.Displacement) {}
func (DefaultEventSink) ShowType3Glyph(transform.Matrix, model.Font, uint32)                    {}
func (DefaultEventSink) BeginMarkedContentSequence(string, core.Object)                         {}
func (DefaultEventSink) EndMarkedContentSequence()                                              {}
func (DefaultEventSink) OnUnsupported(string, []core.Object)                                     {}
func (DefaultEventSink) OnOperatorError(string, []core.Object, error)                            {}

// Engine is the content-stream execution engine: the token-driven dispatch
// loop plus the graphics-state stack, resource scoping, and text sub-engine
// that give operator handlers somewhere to act (§2). The zero value is not
// usable; construct with New.
type Engine struct {
	registry *registry

	gsStack   *GraphicsStateStack
	resources resourceScope
	guard     recursionGuard

	currentPage   *model.Page
	initialMatrix transform.Matrix
	tm, tlm       *transform.Matrix

	sink         EventSink
	fontProvider *model.DefaultFontProvider

	maxRecursionDepth int
}

// Option configures an Engine at construction time (§6 "no environment
// variables" — construction-time functional options instead, matching the
// teacher's constructor-with-defaults idiom).
type Option func(*Engine)

// WithFontProvider overrides the default-font provider used when a content
// stream references an undefined font (§4.G "default-font provisioning").
func WithFontProvider(p *model.DefaultFontProvider) Option {
	return func(e *Engine) { e.fontProvider = p }
}

// WithMaxRecursionDepth overrides the nested Do/pattern/char-proc recursion
// ceiling (§9 "a configurable ceiling"), in place of defaultMaxRecursionDepth.
func WithMaxRecursionDepth(n int) Option {
	return func(e *Engine) { e.maxRecursionDepth = n }
}

// New returns an Engine wired with its built-in operator set, ready to
// process pages. `sink` receives every extension hook; pass
// DefaultEventSink{} for silent defaults.
func New(sink EventSink, opts ...Option) *Engine {
	e := &Engine{
		registry:          newRegistry(),
		sink:              sink,
		fontProvider:      model.NewDefaultFontProvider(),
		maxRecursionDepth: defaultMaxRecursionDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerBuiltins()
	return e
}

// Register adds a handler for `name`, overwriting any previous handler for
// the same operator. This is the engine's pluggable-operator surface (§6,
// spec.md "concrete operators are pluggable"), mirroring the teacher's
// ContentStreamProcessor.AddHandler: everything registerBuiltins doesn't
// claim (path construction, painting, color setting, shading, inline
// images, annotation/pattern/soft-mask rendering) is left for a client to
// register here, using the exported GraphicsState/Resources/recursion/
// nested-stream-driver surface below to act on it.
func (e *Engine) Register(name string, h HandlerFunc) {
	e.registry.register(name, h)
}

// GraphicsState returns the current top-of-stack graphics state, for
// handlers registered via Register that need to read or mutate paint/clip
// state (§6).
func (e *Engine) GraphicsState() *GraphicsState {
	return e.gsStack.Top()
}

// Stack returns the engine's graphics-state stack, for handlers that need to
// save/restore state themselves or inspect stack depth (§6).
func (e *Engine) Stack() *GraphicsStateStack {
	return e.gsStack
}

// CurrentResources returns the effective resource dictionary for the
// content stream presently executing, for handlers resolving their own
// resource references (e.g. a Pattern- or Shading-consuming paint operator).
func (e *Engine) CurrentResources() model.Resources {
	return e.resources.current
}

// RecursionDepth returns the engine's current nested Do/pattern/char-proc
// depth (§3 "Recursion depth").
func (e *Engine) RecursionDepth() int {
	return e.guard.get()
}

// MaxRecursionDepth returns the ceiling RecursionDepth is checked against,
// set at construction via WithMaxRecursionDepth or defaultMaxRecursionDepth.
func (e *Engine) MaxRecursionDepth() int {
	return e.maxRecursionDepth
}

// ProcessOperator is the recursive entry point exposed to operator handlers
// (§6), used e.g. by a Type 3 char proc's inner d0/d1 sequence re-dispatching
// through the same registry that drives the top-level stream.
func (e *Engine) ProcessOperator(name string, operands []core.Object) error {
	return e.registry.dispatch(e, name, operands)
}

// handleOperatorError applies the default onOperatorError policy (§4.C,
// §7): MissingOperand/MissingResource/MissingImageReader log at error and
// recover; EmptyGraphicsStack and any Do failure log at warn and recover;
// everything else propagates. The sink is always notified, regardless of
// the outcome.
func (e *Engine) handleOperatorError(name string, operands []core.Object, err error) error {
	if e.sink != nil {
		e.sink.OnOperatorError(name, operands, err)
	}
	switch KindOf(err) {
	case MissingOperand, MissingResource, MissingImageReader:
		common.Log.Error("contentengine: %s: %v", name, err)
		return nil
	case EmptyGraphicsStack:
		common.Log.Warning("contentengine: %s: %v", name, err)
		return nil
	}
	if name == "Do" {
		common.Log.Warning("contentengine: Do: %v", err)
		return nil
	}
	return err
}

// registerBuiltins wires the operator set named in the module list: q Q cm
// gs w J j M d ri i BT ET Tc Tw Tz TL Tf Tr Ts Td TD Tm T* Tj TJ ' " Do BMC
// BDC EMC. Everything else (path construction, painting, color setting,
// shading, inline images) is left to onUnsupported/client-registered
// handlers, mirroring the teacher's split between its internal operator
// switch and AddHandler-registered external handlers.
func (e *Engine) registerBuiltins() {
	r := e.registry

	r.register("q", func(e *Engine, _ []core.Object) error {
		e.gsStack.Save()
		return nil
	})
	r.register("Q", func(e *Engine, _ []core.Object) error {
		return e.gsStack.Restore()
	})
	r.register("cm", func(e *Engine, ops []core.Object) error {
		vals, err := numberOperands("cm", ops, 6)
		if err != nil {
			return err
		}
		m := transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
		e.gsStack.Top().CTM.Concat(m)
		return nil
	})
	r.register("gs", func(e *Engine, ops []core.Object) error { return e.applyExtGState(ops) })
	r.register("w", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("w", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().LineWidth = v
		return nil
	})
	r.register("J", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("J", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().LineCap = int(v)
		return nil
	})
	r.register("j", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("j", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().LineJoin = int(v)
		return nil
	})
	r.register("M", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("M", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().MiterLimit = v
		return nil
	})
	r.register("ri", func(e *Engine, ops []core.Object) error {
		v, err := nameOperand("ri", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().RenderingIntent = v
		return nil
	})
	r.register("i", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("i", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Flatness = v
		return nil
	})
	r.register("d", func(e *Engine, ops []core.Object) error { return e.setDash(ops) })

	r.register("BT", func(e *Engine, _ []core.Object) error { e.beginText(); return nil })
	r.register("ET", func(e *Engine, _ []core.Object) error { e.endText(); return nil })
	r.register("Tc", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("Tc", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.CharSpacing = v
		return nil
	})
	r.register("Tw", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("Tw", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.WordSpacing = v
		return nil
	})
	r.register("Tz", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("Tz", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.HorizScalingPct = v
		return nil
	})
	r.register("TL", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("TL", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.Leading = v
		return nil
	})
	r.register("Tf", func(e *Engine, ops []core.Object) error { return e.setFont(ops) })
	r.register("Tr", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("Tr", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.RenderMode = int(v)
		return nil
	})
	r.register("Ts", func(e *Engine, ops []core.Object) error {
		v, err := numberOperand("Ts", ops, 0)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.Rise = v
		return nil
	})
	r.register("Td", func(e *Engine, ops []core.Object) error {
		vals, err := numberOperands("Td", ops, 2)
		if err != nil {
			return err
		}
		return e.nextLine(vals[0], vals[1])
	})
	r.register("TD", func(e *Engine, ops []core.Object) error {
		vals, err := numberOperands("TD", ops, 2)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.Leading = -vals[1]
		return e.nextLine(vals[0], vals[1])
	})
	r.register("T*", func(e *Engine, _ []core.Object) error {
		return e.nextLine(0, -e.gsStack.Top().Text.Leading)
	})
	r.register("Tm", func(e *Engine, ops []core.Object) error {
		vals, err := numberOperands("Tm", ops, 6)
		if err != nil {
			return err
		}
		m := transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
		tm, tlm := m, m
		e.tm, e.tlm = &tm, &tlm
		return nil
	})
	r.register("Tj", func(e *Engine, ops []core.Object) error {
		s, err := stringOperand("Tj", ops, 0)
		if err != nil {
			return err
		}
		return e.showTextString(s)
	})
	r.register("TJ", func(e *Engine, ops []core.Object) error {
		if len(ops) < 1 {
			return newError(MissingOperand, "TJ", errors.New("TJ requires an array operand"))
		}
		arr, ok := core.GetArray(ops[0])
		if !ok {
			return newError(MalformedTextArray, "TJ", errors.New("TJ operand is not an array"))
		}
		return e.showTextArray(arr)
	})
	r.register("'", func(e *Engine, ops []core.Object) error {
		s, err := stringOperand("'", ops, 0)
		if err != nil {
			return err
		}
		if err := e.nextLine(0, -e.gsStack.Top().Text.Leading); err != nil {
			return err
		}
		return e.showTextString(s)
	})
	r.register("\"", func(e *Engine, ops []core.Object) error {
		vals, err := numberOperands("\"", ops, 2)
		if err != nil {
			return err
		}
		s, err := stringOperand("\"", ops, 2)
		if err != nil {
			return err
		}
		e.gsStack.Top().Text.WordSpacing = vals[0]
		e.gsStack.Top().Text.CharSpacing = vals[1]
		if err := e.nextLine(0, -e.gsStack.Top().Text.Leading); err != nil {
			return err
		}
		return e.showTextString(s)
	})

	r.register("Do", func(e *Engine, ops []core.Object) error { return e.doXObject(ops) })

	r.register("BMC", func(e *Engine, ops []core.Object) error {
		tag, err := nameOperand("BMC", ops, 0)
		if err != nil {
			return err
		}
		if e.sink != nil {
			e.sink.BeginMarkedContentSequence(tag, nil)
		}
		return nil
	})
	r.register("BDC", func(e *Engine, ops []core.Object) error {
		tag, err := nameOperand("BDC", ops, 0)
		if err != nil {
			return err
		}
		var props core.Object
		if len(ops) > 1 {
			props = ops[1]
		}
		if e.sink != nil {
			e.sink.BeginMarkedContentSequence(tag, props)
		}
		return nil
	})
	r.register("EMC", func(e *Engine, _ []core.Object) error {
		if e.sink != nil {
			e.sink.EndMarkedContentSequence()
		}
		return nil
	})
}

// nextLine implements the Td/TD/T* shared behavior: Tlm = translate(tx,
// ty)·Tlm (the translation is applied first, the existing line matrix
// second — i.e. the new origin is the old one offset by tx,ty in the old
// matrix's space); Tm is reset to the same value.
func (e *Engine) nextLine(tx, ty float64) error {
	if e.tlm == nil {
		return newError(Other, "Td", errOutsideText{})
	}
	m := *e.tlm
	m.Concat(transform.TranslationMatrix(tx, ty))
	e.tlm = &m
	tmCopy := m
	e.tm = &tmCopy
	return nil
}

// setFont implements Tf: resolve the named font from the effective
// resources and set it plus the size on the current text state.
func (e *Engine) setFont(ops []core.Object) error {
	name, err := nameOperand("Tf", ops, 0)
	if err != nil {
		return err
	}
	size, err := numberOperand("Tf", ops, 1)
	if err != nil {
		return err
	}
	font, ok := e.resources.current.GetFont(name)
	if !ok || font == nil {
		return newError(MissingResource, "Tf", fmt.Errorf("font %q not found", name))
	}
	e.gsStack.Top().Text.Font = font
	e.gsStack.Top().Text.FontSize = size
	return nil
}

// applyExtGState implements gs: only the entries present in the resolved
// ExtGState dictionary update the current GS (§SUPPLEMENTED FEATURES).
func (e *Engine) applyExtGState(ops []core.Object) error {
	name, err := nameOperand("gs", ops, 0)
	if err != nil {
		return err
	}
	eg, ok := e.resources.current.GetExtGState(name)
	if !ok || eg == nil {
		return newError(MissingResource, "gs", fmt.Errorf("ExtGState %q not found", name))
	}
	gs := e.gsStack.Top()
	if eg.LineWidth != nil {
		gs.LineWidth = *eg.LineWidth
	}
	if eg.LineCap != nil {
		gs.LineCap = *eg.LineCap
	}
	if eg.LineJoin != nil {
		gs.LineJoin = *eg.LineJoin
	}
	if eg.MiterLimit != nil {
		gs.MiterLimit = *eg.MiterLimit
	}
	if eg.Dash != nil {
		gs.Dash = *eg.Dash
	}
	if eg.RenderingIntent != nil {
		gs.RenderingIntent = *eg.RenderingIntent
	}
	if eg.StrokeAlpha != nil {
		gs.StrokeAlpha = *eg.StrokeAlpha
	}
	if eg.FillAlpha != nil {
		gs.FillAlpha = *eg.FillAlpha
	}
	if eg.BlendMode != nil {
		gs.BlendMode = *eg.BlendMode
	}
	if eg.SoftMask != nil {
		gs.SoftMask = eg.SoftMask
	}
	if eg.Font != nil {
		gs.Text.Font = eg.Font
		gs.Text.FontSize = eg.FontSize
	}
	return nil
}

// setDash implements d: array operand, phase operand, negative phase
// clamped to 0 via guard.go's setLineDashPattern (§8.6).
func (e *Engine) setDash(ops []core.Object) error {
	if len(ops) < 2 {
		return newError(MissingOperand, "d", errors.New("d requires an array and a phase"))
	}
	arr, ok := core.GetArray(ops[0])
	if !ok {
		return newError(MissingOperand, "d", errors.New("d's first operand is not an array"))
	}
	array, err := core.GetNumbersAsFloat(arr.Elements())
	if err != nil {
		return newError(MissingOperand, "d", err)
	}
	phase, err := core.GetNumberAsFloat(ops[1])
	if err != nil {
		return newError(MissingOperand, "d", err)
	}
	e.gsStack.Top().Dash = setLineDashPattern(array, phase)
	return nil
}

// doXObject implements Do: forms (and transparency groups) re-enter §4.E via
// ShowForm; images have no engine-owned painting behavior and fall through
// to onUnsupported, exactly as an unregistered operator would.
func (e *Engine) doXObject(ops []core.Object) error {
	name, err := nameOperand("Do", ops, 0)
	if err != nil {
		return err
	}
	xobj, ok := e.resources.current.GetXObject(name)
	if !ok || xobj == nil {
		return newError(MissingResource, "Do", fmt.Errorf("XObject %q not found", name))
	}
	switch x := xobj.(type) {
	case *model.Form:
		return e.ShowForm(x)
	default:
		if e.sink != nil {
			e.sink.OnUnsupported("Do", ops)
		}
		return nil
	}
}

// numberOperand extracts operands[idx] as a float64, raising MissingOperand
// when absent or non-numeric.
func numberOperand(op string, operands []core.Object, idx int) (float64, error) {
	if idx >= len(operands) {
		return 0, newError(MissingOperand, op, fmt.Errorf("expected operand %d", idx))
	}
	v, err := core.GetNumberAsFloat(operands[idx])
	if err != nil {
		return 0, newError(MissingOperand, op, err)
	}
	return v, nil
}

// numberOperands extracts the first `n` operands as float64s.
func numberOperands(op string, operands []core.Object, n int) ([]float64, error) {
	if len(operands) < n {
		return nil, newError(MissingOperand, op, fmt.Errorf("expected %d operands, got %d", n, len(operands)))
	}
	vals, err := core.GetNumbersAsFloat(operands[:n])
	if err != nil {
		return nil, newError(MissingOperand, op, err)
	}
	return vals, nil
}

// nameOperand extracts operands[idx] as a name string.
func nameOperand(op string, operands []core.Object, idx int) (string, error) {
	if idx >= len(operands) {
		return "", newError(MissingOperand, op, fmt.Errorf("expected operand %d", idx))
	}
	v, ok := core.GetNameVal(operands[idx])
	if !ok {
		return "", newError(MissingOperand, op, fmt.Errorf("operand %d is not a name", idx))
	}
	return v, nil
}

// stringOperand extracts operands[idx] as a *core.String.
func stringOperand(op string, operands []core.Object, idx int) (*core.String, error) {
	if idx >= len(operands) {
		return nil, newError(MissingOperand, op, fmt.Errorf("expected operand %d", idx))
	}
	s, ok := operands[idx].(*core.String)
	if !ok {
		return nil, newError(MissingOperand, op, fmt.Errorf("operand %d is not a string", idx))
	}
	return s, nil
}
