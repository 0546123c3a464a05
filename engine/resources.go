package engine

import "github.com/pdfkit-go/contentengine/model"

// resourceScope tracks the engine's single current-resources pointer plus
// everything pushResources/popResources needs to restore it (§4.B, §3
// "Resource scope").
type resourceScope struct {
	current model.Resources
	page    model.Resources
}

// pushResources selects the effective resources for `streamResources` per the
// §4.B fallback order — (1) the stream's own, (2) the engine's current
// (inheritance), (3) the page's, (4) a fresh empty dictionary — and returns
// the previous pointer so the caller can restore it with popResources.
// Strictly LIFO-paired with stream entry, never called without a matching pop.
func (s *resourceScope) pushResources(streamResources model.Resources) model.Resources {
	prev := s.current
	switch {
	case streamResources != nil:
		s.current = streamResources
	case s.current != nil:
		// Inheritance: permitted in practice even though not spelled out
		// as a requirement; preserved deliberately (see DESIGN.md).
	case s.page != nil:
		s.current = s.page
	default:
		s.current = model.NewResources()
	}
	return prev
}

// popResources restores the engine's resource pointer to `prev` unconditionally.
func (s *resourceScope) popResources(prev model.Resources) {
	s.current = prev
}
