package engine

import (
	"github.com/pdfkit-go/contentengine/common"
	"github.com/pdfkit-go/contentengine/core"
	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

// beginText implements BT: initializes Tm and Tlm to identity, as two separate
// matrices (§3 "Text matrices"), then notifies EventSink.BeginText.
func (e *Engine) beginText() {
	tm, tlm := transform.IdentityMatrix(), transform.IdentityMatrix()
	e.tm, e.tlm = &tm, &tlm
	if e.sink != nil {
		e.sink.BeginText()
	}
}

// endText implements ET: clears Tm and Tlm (§3 — undefined outside BT/ET).
func (e *Engine) endText() {
	e.tm, e.tlm = nil, nil
	if e.sink != nil {
		e.sink.EndText()
	}
}

// textParameterMatrix builds P from the current text state (§4.F):
//
//	[fontSize·hScale   0          0]
//	[0                 fontSize   0]
//	[0                 rise       1]
func textParameterMatrix(ts TextGraphicsState) transform.Matrix {
	hScale := ts.HorizScalingPct / 100.0
	return transform.NewMatrix(ts.FontSize*hScale, 0, 0, ts.FontSize, 0, ts.Rise)
}

// resolvedFont returns the text state's font, substituting a Helvetica-
// equivalent (logged) if none is set (§4.F "fall back to Helvetica if
// unset, with a warning").
func (e *Engine) resolvedFont() model.Font {
	ts := &e.gsStack.Top().Text
	if ts.Font != nil {
		return ts.Font
	}
	common.Log.Warning("contentengine: no font set, substituting Helvetica")
	f := e.fontProvider.Helvetica()
	ts.Font = f
	return f
}

// showText implements the central text-showing algorithm (§4.F). `bytes` is
// the raw, already string-decoded byte payload of a Tj/'/" operand or one
// string element of a TJ array.
func (e *Engine) showText(data []byte) error {
	if e.tm == nil || e.tlm == nil {
		return newError(Other, "Tj", errOutsideText{})
	}
	ts := e.gsStack.Top().Text
	font := e.resolvedFont()
	p := textParameterMatrix(ts)
	hScale := ts.HorizScalingPct / 100.0

	pos := 0
	for pos < len(data) {
		code, length := font.ReadCode(data, pos)
		pos += length

		wordSpacing := 0.0
		if length == 1 && code == 0x20 {
			wordSpacing = ts.WordSpacing
		}

		// Trm = P·Tm·CTM: P applied first, then Tm, then CTM. Concat prepends
		// its argument (applies it before the receiver's current value), so
		// building this left-to-right means working from the innermost step
		// outward: start from Tm with P prepended, then start from CTM with
		// that result prepended.
		pThenTm := *e.tm
		pThenTm.Concat(p)
		trm := e.gsStack.Top().CTM
		trm.Concat(pThenTm)
		if font.IsVertical() {
			pv := font.PositionVector(code)
			// Shift the glyph origin by pv before mapping through Trm (§4.F step 3).
			withPV := trm
			withPV.Concat(transform.TranslationMatrix(pv.X, pv.Y))
			trm = withPV
		}

		w := font.Displacement(code)
		if err := e.showGlyph(trm, font, code, w); err != nil {
			return err
		}

		var tx, ty float64
		if font.IsVertical() {
			ty = w.Y*ts.FontSize + ts.CharSpacing + wordSpacing
		} else {
			tx = (w.X*ts.FontSize + ts.CharSpacing + wordSpacing) * hScale
		}
		// Tm_new = translate(tx,ty)·Tm_old: translate applied first, old Tm second.
		newTm := *e.tm
		newTm.Concat(transform.TranslationMatrix(tx, ty))
		*e.tm = newTm
	}
	return nil
}

// errOutsideText is returned when a text-showing operator executes outside BT/ET.
type errOutsideText struct{}

func (errOutsideText) Error() string { return "text-showing operator outside BT/ET" }

// showGlyph emits one glyph event (§4.F step 5): overridable via
// EventSink.showGlyph; the default dispatches to showFontGlyph, or, for
// Type 3 fonts, to showType3Glyph which re-enters the nested-stream driver
// for the glyph's char proc.
func (e *Engine) showGlyph(trm transform.Matrix, font model.Font, code uint32, w model.Displacement) error {
	if e.sink != nil && e.sink.ShowGlyph(trm, font, code, w) {
		return nil
	}
	if font.IsType3() {
		return e.showType3Glyph(trm, font, code)
	}
	e.showFontGlyph(trm, font, code, w)
	return nil
}

// showFontGlyph is the default non-Type-3 glyph handler: a hook for clients
// (e.g. text extraction, rendering) with no engine-owned behavior of its own.
func (e *Engine) showFontGlyph(trm transform.Matrix, font model.Font, code uint32, w model.Displacement) {
	if e.sink != nil {
		e.sink.ShowFontGlyph(trm, font, code, w)
	}
}

// showType3Glyph re-enters the nested-stream driver (§4.E "Type 3 char
// proc") for the glyph's content stream, replacing then concatenating the
// CTM with the font matrix, skipping bbox clipping.
func (e *Engine) showType3Glyph(trm transform.Matrix, font model.Font, code uint32) error {
	if e.sink != nil {
		e.sink.ShowType3Glyph(trm, font, code)
	}
	cp, ok := font.CharProc(code)
	if !ok || cp == nil {
		return nil
	}
	return e.ShowType3CharProc(cp, trm, font.FontMatrix())
}

// showTextString implements the Tj-equivalent hook used by ', " and Tj.
func (e *Engine) showTextString(s *core.String) error {
	if s == nil {
		return nil
	}
	return e.showText(s.Bytes())
}

// showTextArray implements TJ (§4.F): numbers apply a positional adjustment,
// strings show text, nested arrays are logged and skipped, anything else is
// a MalformedTextArray.
func (e *Engine) showTextArray(arr *core.Array) error {
	if arr == nil {
		return nil
	}
	ts := e.gsStack.Top().Text
	hScale := ts.HorizScalingPct / 100.0
	for _, el := range arr.Elements() {
		switch v := el.(type) {
		case *core.String:
			s, _ := core.GetStringBytes(v)
			if err := e.showText(s); err != nil {
				return err
			}
		case *core.Array:
			common.Log.Error("contentengine: nested array inside TJ, skipping")
		default:
			n, err := core.GetNumberAsFloat(el)
			if err != nil {
				return newError(MalformedTextArray, "TJ", err)
			}
			e.applyTextAdjustment(adjustmentFor(n, ts, hScale))
		}
	}
	return nil
}

// adjustmentFor computes the (tx, ty) translation a TJ numeric element
// produces, per §4.F: horizontal mode adjusts tx, vertical mode adjusts ty.
func adjustmentFor(n float64, ts TextGraphicsState, hScale float64) (float64, float64) {
	if ts.Font != nil && ts.Font.IsVertical() {
		return 0, -n / 1000.0 * ts.FontSize
	}
	return -n / 1000.0 * ts.FontSize * hScale, 0
}

// applyTextAdjustment translates Tm by (tx, ty), and does nothing outside
// BT/ET. It is not an EventSink hook: clients cannot replace it.
func (e *Engine) applyTextAdjustment(tx, ty float64) {
	if e.tm == nil {
		return
	}
	newTm := *e.tm
	newTm.Concat(transform.TranslationMatrix(tx, ty))
	*e.tm = newTm
}
