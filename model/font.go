package model

import "github.com/pdfkit-go/contentengine/internal/transform"

// Displacement is a glyph advance vector in unscaled text space (§4.F step 4).
type Displacement struct {
	X, Y float64
}

// Font is the capability surface the text sub-engine (§4.F) needs from a
// font resource: decoding byte strings into codes, per-code metrics, and
// (for Type 3) the char-proc content streams that double as glyph
// descriptions. Adapted from the teacher's model.PdfFont (model/font.go),
// trimmed to exactly what showText needs — font-program parsing (glyph
// outlines, embedded subsetting, CID collections) is document-model detail
// out of scope for the engine (§1).
type Font interface {
	// ReadCode consumes 1 or more bytes from data[pos:] and returns the
	// decoded character code and the number of bytes consumed. Simple fonts
	// consume exactly 1 byte; Type 0/composite fonts may consume 2 (or more,
	// for variable-width encodings).
	ReadCode(data []byte, pos int) (code uint32, length int)

	// Displacement returns the glyph's advance in unscaled text space,
	// scaled by the font's /1000 glyph-space-to-text-space ratio for simple
	// fonts (the engine multiplies by Tfs itself per §4.F step 6).
	Displacement(code uint32) Displacement

	// IsVertical reports whether the font uses vertical writing mode (§4.F step 3).
	IsVertical() bool

	// PositionVector returns the text-space offset applied to Trm before
	// showing a glyph in vertical writing mode (§4.F step 3).
	PositionVector(code uint32) Displacement

	// IsType3 discriminates Type 3 fonts, whose glyphs are themselves
	// content streams (§4.E "Type 3 char proc").
	IsType3() bool

	// CharProc returns the char-proc content stream for `code` on a Type 3
	// font. Only meaningful when IsType3() is true.
	CharProc(code uint32) (*CharProc, bool)

	// FontMatrix returns the font's glyph-space-to-text-space matrix (Type 3
	// fonts carry an explicit one; simple/composite fonts use the implicit
	// 1/1000 scale, see DefaultFontMatrix).
	FontMatrix() transform.Matrix

	// BaseFont returns the font's PostScript name, for diagnostics.
	BaseFont() string
}

// CharProc is a Type 3 glyph description: a small content stream whose first
// operator is conventionally d0 or d1.
type CharProc struct {
	Contents  []byte
	Resources Resources // nil inherits per §4.B
}

// DefaultFontMatrix is the implicit font matrix of every non-Type-3 font:
// glyph space is 1000 units per text-space unit.
func DefaultFontMatrix() transform.Matrix {
	return transform.NewMatrix(0.001, 0, 0, 0.001, 0, 0)
}
