package engine

import "github.com/pdfkit-go/contentengine/core"

// HandlerFunc is an operator implementation. operands are the objects
// accumulated since the previous operator (§4.D); a handler returning an
// error has that error routed to onOperatorError (§4.C).
type HandlerFunc func(e *Engine, operands []core.Object) error

// registry is a name→handler map populated once at engine setup (§3
// "Operator table"). Late registration overrides silently (§4.C), matching
// the teacher's AddHandler pattern in contentstream.ContentStreamProcessor.
type registry struct {
	handlers map[string]HandlerFunc
}

func newRegistry() *registry {
	return &registry{handlers: map[string]HandlerFunc{}}
}

// register stores `handler` under `name`, silently overriding any previous
// registration — this is how client code replaces a built-in operator
// (e.g. to implement path painting) without the engine needing to know.
func (r *registry) register(name string, handler HandlerFunc) {
	r.handlers[name] = handler
}

// dispatch looks up `name`; on a miss it invokes the engine's onUnsupported
// hook (a no-op unless the client overrides it) and returns nil. On a hit it
// invokes the handler; any error the handler raises is routed through
// onOperatorError, whose recover-vs-fatal policy (§4.C, §7) decides whether
// dispatch returns nil (recovered, logged) or the error (propagates out of
// processStream).
func (r *registry) dispatch(e *Engine, name string, operands []core.Object) error {
	h, ok := r.handlers[name]
	if !ok {
		if e.sink != nil {
			e.sink.OnUnsupported(name, operands)
		}
		return nil
	}
	if err := h(e, operands); err != nil {
		return e.handleOperatorError(name, operands, err)
	}
	return nil
}
