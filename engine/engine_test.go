package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/contentengine/core"
	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

func newTestPage(contents string, resources model.Resources) *model.Page {
	if resources == nil {
		resources = model.NewResources()
	}
	return &model.Page{
		CropBox:   model.Rectangle{Llx: 0, Lly: 0, Urx: 612, Ury: 792},
		Matrix:    transform.IdentityMatrix(),
		Resources: resources,
		Contents:  []byte(contents),
	}
}

func TestProcessPageBalancesStackAcrossQQ(t *testing.T) {
	e := New(DefaultEventSink{})
	page := newTestPage("q 1 0 0 1 10 10 cm q 2 0 0 2 0 0 cm Q Q", nil)
	err := e.ProcessPage(page)
	require.NoError(t, err)
	require.Equal(t, 1, e.gsStack.Size())
}

func TestRestoreOnEmptyStackRecovers(t *testing.T) {
	e := New(DefaultEventSink{})
	page := newTestPage("Q Q q", nil)
	err := e.ProcessPage(page)
	require.NoError(t, err, "a lone Q on an empty stack is recoverable per the engine's default policy")
}

func TestCmConcatenatesOntoCTM(t *testing.T) {
	e := New(DefaultEventSink{})
	page := newTestPage("2 0 0 2 0 0 cm 1 0 0 1 5 5 cm", nil)
	require.NoError(t, e.ProcessPage(page))
	// The second cm is applied before the first: its (5, 5) offset is scaled by 2.
	require.Equal(t, transform.NewMatrix(2, 0, 0, 2, 10, 10), e.gsStack.Top().CTM)
}

type recordingSink struct {
	DefaultEventSink
	glyphs []recordedGlyph
}

type recordedGlyph struct {
	code uint32
	x, y float64
}

func (s *recordingSink) ShowFontGlyph(trm transform.Matrix, font model.Font, code uint32, w model.Displacement) {
	x, y := trm.Translation()
	s.glyphs = append(s.glyphs, recordedGlyph{code: code, x: x, y: y})
}

func widths(lo, hi byte, w float64) map[byte]float64 {
	m := map[byte]float64{}
	for c := lo; c <= hi; c++ {
		m[c] = w
	}
	return m
}

// TestHorizontalScalingAdvance exercises §4.F's horizontal-scaling advance:
// with Tz 200 and a 600/1000 em-wide glyph at 10pt, each glyph should advance
// by 0.6 * 10 * 2.0 = 12 text-space units.
func TestHorizontalScalingAdvance(t *testing.T) {
	font := model.NewSimpleFont("F1", widths(0x20, 0x7e, 600), 600)
	res := &resourcesStub{fonts: map[string]model.Font{"F1": font}}
	sink := &recordingSink{}
	e := New(sink)

	page := newTestPage("BT /F1 10 Tf 200 Tz (AA) Tj ET", res)
	require.NoError(t, e.ProcessPage(page))
	require.Len(t, sink.glyphs, 2)
	require.InDelta(t, 0, sink.glyphs[0].x, 1e-9)
	require.InDelta(t, 12, sink.glyphs[1].x, 1e-9)
}

// TestTJAdjustment exercises §4.F's TJ numeric adjustment: a -250 element at
// 10pt with no horizontal scaling shifts the next glyph by 2.5 text units.
func TestTJAdjustment(t *testing.T) {
	font := model.NewSimpleFont("F1", widths(0x20, 0x7e, 0), 0)
	res := &resourcesStub{fonts: map[string]model.Font{"F1": font}}
	sink := &recordingSink{}
	e := New(sink)

	page := newTestPage(`BT /F1 10 Tf [(A) -250 (B)] TJ ET`, res)
	require.NoError(t, e.ProcessPage(page))
	require.Len(t, sink.glyphs, 2)
	require.InDelta(t, 0, sink.glyphs[0].x, 1e-9)
	require.InDelta(t, 2.5, sink.glyphs[1].x, 1e-9)
}

func TestFormRestoresCTMAfterDo(t *testing.T) {
	form := &model.Form{
		Matrix:    transform.TranslationMatrix(100, 0),
		BBox:      model.Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10},
		Contents:  []byte("q Q"),
		Resources: model.NewResources(),
	}
	res := &resourcesStub{
		fonts:    map[string]model.Font{},
		xobjects: map[string]model.XObject{"Fm1": form},
	}
	e := New(DefaultEventSink{})
	page := newTestPage("q /Fm1 Do Q 1 0 0 1 0 0 cm", res)
	require.NoError(t, e.ProcessPage(page))
	require.Equal(t, transform.IdentityMatrix(), e.gsStack.Top().CTM,
		"the form's own 100-unit translation must not leak past its Do, regardless of the trailing no-op cm")
}

func TestMissingFontRecoversWithoutAbortingStream(t *testing.T) {
	sink := &recordingSink{}
	e := New(sink)
	page := newTestPage("BT /Missing 10 Tf (A) Tj ET", nil)
	err := e.ProcessPage(page)
	require.NoError(t, err, "MissingResource from Tf recovers per the default policy and falls back to Helvetica for Tj")
	require.Len(t, sink.glyphs, 1)
}

// resourcesStub is a minimal model.Resources for engine tests.
type resourcesStub struct {
	fonts    map[string]model.Font
	xobjects map[string]model.XObject
}

func (r *resourcesStub) GetFont(name string) (model.Font, bool) {
	f, ok := r.fonts[name]
	return f, ok
}
func (r *resourcesStub) GetXObject(name string) (model.XObject, bool) {
	x, ok := r.xobjects[name]
	return x, ok
}
func (r *resourcesStub) GetPattern(name string) (*model.TilingPattern, bool)  { return nil, false }
func (r *resourcesStub) GetExtGState(name string) (*model.ExtGState, bool)    { return nil, false }

// TestRegisterReachesAnnotationDriver exercises Register as the pluggable-
// operator surface (§6): a handler registered for a made-up "AP" operator
// calls the exported ShowAnnotation driver, proving it's reachable from
// outside the package the same way the teacher's extractor reaches its own
// operators via AddHandler.
func TestRegisterReachesAnnotationDriver(t *testing.T) {
	font := model.NewSimpleFont("F1", widths(0x20, 0x7e, 500), 500)
	apRes := &resourcesStub{fonts: map[string]model.Font{"F1": font}}

	annot := &model.Annotation{
		Rect: model.Rectangle{Llx: 0, Lly: 0, Urx: 100, Ury: 50},
		Appearance: &model.Appearance{
			Contents:  []byte("BT /F1 10 Tf (A) Tj ET"),
			Resources: apRes,
			Matrix:    transform.IdentityMatrix(),
			BBox:      model.Rectangle{Llx: 0, Lly: 0, Urx: 100, Ury: 50},
		},
	}

	sink := &recordingSink{}
	e := New(sink)
	e.Register("AP", func(e *Engine, _ []core.Object) error {
		return e.ShowAnnotation(annot)
	})
	page := newTestPage("AP", nil)
	require.NoError(t, e.ProcessPage(page))
	require.Len(t, sink.glyphs, 1, "the registered handler's ShowAnnotation call must drive the appearance stream")
}

// TestRegisterReachesTilingPatternAndSoftMaskDrivers proves ShowTilingPattern
// and ShowSoftMask — otherwise dead, since no builtin operator calls them —
// are reachable through a client handler registered via Register.
func TestRegisterReachesTilingPatternAndSoftMaskDrivers(t *testing.T) {
	sink := &recordingSink{}
	e := New(sink)

	pattern := &model.TilingPattern{
		Contents:  []byte("q Q"),
		Resources: model.NewResources(),
		Matrix:    transform.IdentityMatrix(),
		BBox:      model.Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10},
		PaintType: 1,
	}
	mask := &model.Form{
		Contents:  []byte("q Q"),
		Resources: model.NewResources(),
		BBox:      model.Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10},
	}

	var patternErr, maskErr error
	e.Register("scn", func(e *Engine, _ []core.Object) error {
		patternErr = e.ShowTilingPattern(pattern, nil, nil)
		maskErr = e.ShowSoftMask(mask, e.GraphicsState().CTM)
		return nil
	})

	page := newTestPage("scn", nil)
	require.NoError(t, e.ProcessPage(page))
	require.NoError(t, patternErr)
	require.NoError(t, maskErr)
}

// errorSink records every error the engine reports through OnOperatorError.
type errorSink struct {
	DefaultEventSink
	errs []error
}

func (s *errorSink) OnOperatorError(_ string, _ []core.Object, err error) {
	s.errs = append(s.errs, err)
}

// TestWithMaxRecursionDepthIsConfigurable proves the recursion ceiling is a
// construction-time option rather than a fixed constant (§9).
func TestWithMaxRecursionDepthIsConfigurable(t *testing.T) {
	sink := &errorSink{}
	e := New(sink, WithMaxRecursionDepth(2))
	require.Equal(t, 2, e.MaxRecursionDepth())

	form := &model.Form{
		Contents: []byte("/Fm1 Do"),
		Matrix:   transform.IdentityMatrix(),
		BBox:     model.Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10},
	}
	res := &resourcesStub{xobjects: map[string]model.XObject{"Fm1": form}}
	form.Resources = res

	page := newTestPage("/Fm1 Do", res)
	err := e.ProcessPage(page)
	require.NoError(t, err, "a Do failure, the recursion ceiling included, is logged and recovered")
	require.Len(t, sink.errs, 1, "self-referential form recursion must be caught by the configured ceiling")
	require.ErrorAs(t, sink.errs[0], &errRecursionLimit{})
	require.Equal(t, 0, e.RecursionDepth())
}
