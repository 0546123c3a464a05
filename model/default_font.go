package model

import "github.com/adrg/sysfont"

// DefaultFontProvider resolves a substitute Font when a content stream
// references a font resource the engine can't find, or references no font
// at all (§4.G "default-font provisioning"; §4.F "fall back to Helvetica
// with a warning"). Adapted from the teacher's render.Renderer font
// substitution (render/renderer.go), which walks a preference list of
// system faces via adrg/sysfont and caches the match.
type DefaultFontProvider struct {
	finder *sysfont.Finder
	cache  map[string]Font
}

// NewDefaultFontProvider returns a provider that searches installed
// TrueType/OpenType faces for a Helvetica-equivalent substitute.
func NewDefaultFontProvider() *DefaultFontProvider {
	return &DefaultFontProvider{
		finder: sysfont.NewFinder(&sysfont.FinderOpts{Extensions: []string{".ttf", ".ttc", ".otf"}}),
		cache:  map[string]Font{},
	}
}

// defaultSubstitutes is the fallback preference order, tried first to last,
// starting with the PDF standard-14 name "Helvetica" itself.
var defaultSubstitutes = []string{"Helvetica", "Arial", "DejaVu Sans", "Liberation Sans"}

// Helvetica returns the engine's font-of-last-resort: the best system match
// among defaultSubstitutes, or a built-in metrics-only stand-in if no system
// face is found (so text-showing can still proceed and report displacement).
func (p *DefaultFontProvider) Helvetica() Font {
	if f, ok := p.cache["__default__"]; ok {
		return f
	}
	for _, name := range defaultSubstitutes {
		info := p.finder.Match(name)
		if info == nil {
			continue
		}
		f := NewSimpleFont(info.Name, nil, 278)
		p.cache["__default__"] = f
		return f
	}
	// No system font found at all: metrics-only stand-in so advancing Tm
	// still behaves sanely even though no real glyph exists to show.
	f := NewSimpleFont("Helvetica", nil, 556)
	p.cache["__default__"] = f
	return f
}
