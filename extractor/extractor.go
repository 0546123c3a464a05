// Package extractor is a reference client of the content-stream engine: a
// TextExtractor that implements engine.EventSink and reconstructs reading-
// order plain text from the glyph-show events the engine emits while
// running a page. Adapted from the teacher's extractor/text.go, which drove
// its own contentstream.ContentStreamProcessor the same way (a handler per
// text-showing operator, accumulating glyphs into lines and words) — ported
// here onto the engine's EventSink contract instead. The teacher's
// production-grade layout analysis (word/line bagging by bounding-box
// overlap, paragraph and table detection across text_bag.go, text_line.go,
// text_strata.go, text_table.go and friends) is a document-layout concern
// layered on top of a glyph stream, not a content-stream-engine operation,
// so it is not reproduced here; this extractor keeps only the much simpler
// position-delta heuristic needed to prove the EventSink contract is usable
// end to end (see DESIGN.md).
package extractor

import (
	"math"
	"strings"

	"golang.org/x/xerrors"

	"github.com/pdfkit-go/contentengine/engine"
	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

// runeDecoder is implemented by fonts that can recover a Unicode rune from a
// character code (currently *model.SimpleFont; composite/Type0 fonts are not
// modeled in this module).
type runeDecoder interface {
	Rune(code uint32) (rune, bool)
}

// TextExtractor implements engine.EventSink, accumulating the text shown
// during one or more ProcessPage/ProcessChildStream runs into reading-order
// plain text. The zero value is ready to use.
type TextExtractor struct {
	engine.DefaultEventSink

	b         strings.Builder
	haveGlyph bool
	lastTrm   transform.Matrix // Trm of the previous glyph, for position-delta spacing
	lastFont  model.Font
	lastCode  uint32
}

// NewTextExtractor returns a ready-to-use TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractPageText runs `page` through a fresh engine and returns the text
// accumulated by a TextExtractor sink, wrapping any engine error.
func ExtractPageText(page *model.Page, opts ...engine.Option) (string, error) {
	x := NewTextExtractor()
	e := engine.New(x, opts...)
	if err := e.ProcessPage(page); err != nil {
		return "", xerrors.Errorf("extractor: processing page: %w", err)
	}
	return x.String(), nil
}

// String returns the text accumulated so far.
func (x *TextExtractor) String() string { return x.b.String() }

// BeginText implements engine.EventSink: starts a fresh line at the next
// glyph, so consecutive BT...ET blocks never get silently joined with the
// previous one's trailing word.
func (x *TextExtractor) BeginText() {
	x.haveGlyph = false
}

// ShowFontGlyph implements engine.EventSink for non-Type-3 fonts: decodes the
// code to a rune (if the font can), and inserts a line break or a space
// ahead of it based on how far Trm's origin moved since the previous glyph,
// mirroring (in miniature) the teacher's position-delta word/line detection.
func (x *TextExtractor) ShowFontGlyph(trm transform.Matrix, font model.Font, code uint32, w model.Displacement) {
	x.emit(trm, font, code)
}

// ShowType3Glyph implements engine.EventSink: Type 3 glyphs have no encoding
// to recover a rune from (their "glyph" is a content stream, not a character
// outline keyed to Unicode), so only spacing is accounted for.
func (x *TextExtractor) ShowType3Glyph(trm transform.Matrix, font model.Font, code uint32) {
	x.spaceBeforeGlyph(trm, font)
	x.lastTrm, x.lastFont, x.lastCode, x.haveGlyph = trm, font, code, true
}

func (x *TextExtractor) emit(trm transform.Matrix, font model.Font, code uint32) {
	x.spaceBeforeGlyph(trm, font)
	x.lastTrm, x.lastFont, x.lastCode, x.haveGlyph = trm, font, code, true

	dec, ok := font.(runeDecoder)
	if !ok {
		return
	}
	r, ok := dec.Rune(code)
	if !ok {
		return
	}
	x.b.WriteRune(r)
}

// spaceBeforeGlyph compares the incoming glyph's origin against the previous
// one and, if this is the first glyph on a line, writes nothing; if the
// glyph dropped to a new baseline it writes a newline; if it merely landed
// further right than the end of the previous glyph's advance by more than
// roughly a third of an em it writes a space (approximating the effect of a TJ gap or a word-space run
// that the engine didn't attribute to a literal 0x20 byte).
func (x *TextExtractor) spaceBeforeGlyph(trm transform.Matrix, font model.Font) {
	if !x.haveGlyph {
		return
	}
	px, py := x.lastTrm.Translation()
	nx, ny := trm.Translation()
	lineHeight := math.Max(x.lastTrm.ScalingFactorY(), trm.ScalingFactorY())
	if lineHeight <= 0 {
		lineHeight = 1
	}
	if math.Abs(ny-py) > lineHeight*0.5 {
		x.b.WriteByte('\n')
		return
	}
	gap := nx - px - x.lastFont.Displacement(x.lastCode).X*x.lastTrm.ScalingFactorX()
	charWidth := math.Max(x.lastTrm.ScalingFactorX(), 1)
	if gap > charWidth*0.3 {
		x.b.WriteByte(' ')
	}
}
