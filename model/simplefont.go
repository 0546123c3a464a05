package model

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/pdfkit-go/contentengine/internal/transform"
)

// SimpleFont is a 1-byte-per-code Font (Type1/TrueType/MMType1 simple
// fonts), adapted from the teacher's model/font_simple.go and
// internal/textencoding/simple.go: a Widths table keyed by character code
// plus a golang.org/x/text/encoding.Encoding used only to recover the
// Unicode rune behind a code, for clients that want it (the engine itself
// never needs the rune — only the code and its displacement).
type SimpleFont struct {
	Name          string
	Widths        map[byte]float64 // glyph-space width (1000 units/em), keyed by code
	MissingWidth  float64
	Vertical      bool
	TextEncoding  encoding.Encoding // e.g. charmap.Windows1252; nil defaults to Windows1252
}

// NewSimpleFont returns a SimpleFont using the given widths table (defaulting
// missing codes to missingWidth) and the WinAnsiEncoding-equivalent codepage
// the teacher falls back to when a font's /Encoding isn't one the engine
// needs to resolve more precisely.
func NewSimpleFont(name string, widths map[byte]float64, missingWidth float64) *SimpleFont {
	enc := encoding.Encoding(charmap.Windows1252)
	return &SimpleFont{
		Name:         name,
		Widths:       widths,
		MissingWidth: missingWidth,
		TextEncoding: enc,
	}
}

// BaseFont implements Font.
func (f *SimpleFont) BaseFont() string { return f.Name }

// ReadCode implements Font: simple fonts always consume exactly one byte.
func (f *SimpleFont) ReadCode(data []byte, pos int) (uint32, int) {
	if pos >= len(data) {
		return 0, 0
	}
	return uint32(data[pos]), 1
}

// Displacement implements Font.
func (f *SimpleFont) Displacement(code uint32) Displacement {
	w, ok := f.Widths[byte(code)]
	if !ok {
		w = f.MissingWidth
	}
	return Displacement{X: w / 1000.0, Y: 0}
}

// IsVertical implements Font.
func (f *SimpleFont) IsVertical() bool { return f.Vertical }

// PositionVector implements Font. It always returns the zero vector, also
// when Vertical is set.
func (f *SimpleFont) PositionVector(code uint32) Displacement { return Displacement{} }

// IsType3 implements Font.
func (f *SimpleFont) IsType3() bool { return false }

// CharProc implements Font.
func (f *SimpleFont) CharProc(code uint32) (*CharProc, bool) { return nil, false }

// FontMatrix implements Font.
func (f *SimpleFont) FontMatrix() transform.Matrix { return DefaultFontMatrix() }

// Rune decodes `code` to its Unicode rune under the font's text encoding.
// Not used by the engine itself (showText only needs codes and widths) but
// exposed for clients (e.g. a text-extraction EventSink) that want it.
func (f *SimpleFont) Rune(code uint32) (rune, bool) {
	enc := f.TextEncoding
	if enc == nil {
		enc = charmap.Windows1252
	}
	out, err := enc.NewDecoder().Bytes([]byte{byte(code)})
	if err != nil || len(out) == 0 {
		return 0, false
	}
	r := []rune(string(out))
	if len(r) == 0 {
		return 0, false
	}
	return r[0], true
}

// Type3Font is a Font whose glyphs are content streams (§4.E "Type 3 char
// proc").
type Type3Font struct {
	Name       string
	Matrix     transform.Matrix // required /FontMatrix
	CharProcs  map[byte]*CharProc
	Widths     map[byte]float64
	Resources  Resources // default resources inherited by char procs with none of their own
}

// BaseFont implements Font.
func (f *Type3Font) BaseFont() string { return f.Name }

// ReadCode implements Font: Type 3 fonts are always simple (1-byte) fonts.
func (f *Type3Font) ReadCode(data []byte, pos int) (uint32, int) {
	if pos >= len(data) {
		return 0, 0
	}
	return uint32(data[pos]), 1
}

// Displacement implements Font. Type 3 glyph widths are in glyph space, so
// convert through the font matrix rather than assuming 1/1000.
func (f *Type3Font) Displacement(code uint32) Displacement {
	w := f.Widths[byte(code)]
	x, y := f.Matrix.Transform(w, 0)
	x0, y0 := f.Matrix.Transform(0, 0)
	return Displacement{X: x - x0, Y: y - y0}
}

// IsVertical implements Font: Type 3 fonts are never vertical.
func (f *Type3Font) IsVertical() bool { return false }

// PositionVector implements Font.
func (f *Type3Font) PositionVector(code uint32) Displacement { return Displacement{} }

// IsType3 implements Font.
func (f *Type3Font) IsType3() bool { return true }

// CharProc implements Font.
func (f *Type3Font) CharProc(code uint32) (*CharProc, bool) {
	cp, ok := f.CharProcs[byte(code)]
	if ok && cp.Resources == nil {
		cp = &CharProc{Contents: cp.Contents, Resources: f.Resources}
	}
	return cp, ok
}

// FontMatrix implements Font.
func (f *Type3Font) FontMatrix() transform.Matrix { return f.Matrix }
