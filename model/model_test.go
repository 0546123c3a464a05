package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/contentengine/internal/transform"
)

func TestSimpleFontDisplacementFallsBackToMissingWidth(t *testing.T) {
	f := NewSimpleFont("F1", map[byte]float64{'A': 600}, 250)
	require.Equal(t, Displacement{X: 0.6}, f.Displacement('A'))
	require.Equal(t, Displacement{X: 0.25}, f.Displacement('B'))
}

func TestSimpleFontReadCodeConsumesOneByte(t *testing.T) {
	f := NewSimpleFont("F1", nil, 0)
	code, n := f.ReadCode([]byte("AB"), 0)
	require.Equal(t, uint32('A'), code)
	require.Equal(t, 1, n)
}

func TestSimpleFontRuneDecodesWindows1252ByDefault(t *testing.T) {
	f := NewSimpleFont("F1", nil, 0)
	r, ok := f.Rune('A')
	require.True(t, ok)
	require.Equal(t, 'A', r)
}

func TestType3FontDisplacementGoesThroughFontMatrix(t *testing.T) {
	f := &Type3Font{
		Name:   "T3",
		Matrix: transform.NewMatrix(0.001, 0, 0, 0.001, 0, 0),
		Widths: map[byte]float64{'A': 750},
	}
	d := f.Displacement('A')
	require.InDelta(t, 0.75, d.X, 1e-9)
	require.InDelta(t, 0, d.Y, 1e-9)
}

func TestType3FontCharProcInheritsFontResourcesWhenUnset(t *testing.T) {
	shared := NewResources()
	f := &Type3Font{
		CharProcs: map[byte]*CharProc{'A': {Contents: []byte("1 0 0 1 0 0 d0")}},
		Resources: shared,
	}
	cp, ok := f.CharProc('A')
	require.True(t, ok)
	require.Same(t, shared, cp.Resources)
}

func TestRectangleIsDegenerate(t *testing.T) {
	require.True(t, Rectangle{Llx: 0, Lly: 0, Urx: 0, Ury: 10}.IsDegenerate())
	require.True(t, Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 0}.IsDegenerate())
	require.False(t, Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10}.IsDegenerate())
}

func TestRectangleTransformReboxesRotation(t *testing.T) {
	r := Rectangle{Llx: 0, Lly: 0, Urx: 10, Ury: 10}
	rot := transform.NewMatrixFromTransforms(1, 1, 45, 0, 0)
	out := r.Transform(rot)
	require.Greater(t, out.Width(), 10.0)
}

func TestDefaultFontProviderHelveticaIsCachedAndNonNil(t *testing.T) {
	p := NewDefaultFontProvider()
	f1 := p.Helvetica()
	f2 := p.Helvetica()
	require.NotNil(t, f1)
	require.Same(t, f1, f2)
}

func TestMapResourcesLookups(t *testing.T) {
	r := NewResources()
	font := NewSimpleFont("F1", nil, 0)
	r.Fonts["F1"] = font
	got, ok := r.GetFont("F1")
	require.True(t, ok)
	require.Equal(t, font, got)

	_, ok = r.GetFont("Missing")
	require.False(t, ok)
}
