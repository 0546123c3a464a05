package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/contentengine/internal/transform"
	"github.com/pdfkit-go/contentengine/model"
)

func widths(lo, hi byte, w float64) map[byte]float64 {
	m := map[byte]float64{}
	for c := lo; c <= hi; c++ {
		m[c] = w
	}
	return m
}

func TestExtractPageTextSingleLine(t *testing.T) {
	font := model.NewSimpleFont("Helvetica", widths(0x20, 0x7e, 600), 600)
	page := &model.Page{
		CropBox: model.Rectangle{Llx: 0, Lly: 0, Urx: 612, Ury: 792},
		Matrix:  transform.IdentityMatrix(),
		Resources: &resourcesStub{fonts: map[string]model.Font{"F1": font}},
		Contents: []byte("BT /F1 12 Tf 100 700 Td (Hi) Tj ET"),
	}

	text, err := ExtractPageText(page)
	require.NoError(t, err)
	require.Equal(t, "Hi", text)
}

func TestExtractPageTextLineBreakOnTStar(t *testing.T) {
	font := model.NewSimpleFont("Helvetica", widths(0x20, 0x7e, 600), 600)
	page := &model.Page{
		CropBox:   model.Rectangle{Llx: 0, Lly: 0, Urx: 612, Ury: 792},
		Matrix:    transform.IdentityMatrix(),
		Resources: &resourcesStub{fonts: map[string]model.Font{"F1": font}},
		Contents:  []byte("BT /F1 12 Tf 14 TL 100 700 Td (one) Tj T* (two) Tj ET"),
	}

	text, err := ExtractPageText(page)
	require.NoError(t, err)
	require.Equal(t, "one\ntwo", text)
}

func TestExtractPageTextNoContentsIsEmpty(t *testing.T) {
	page := &model.Page{Resources: &resourcesStub{}}
	text, err := ExtractPageText(page)
	require.NoError(t, err)
	require.Empty(t, text)
}

// resourcesStub is a minimal model.Resources for tests that only need fonts.
type resourcesStub struct {
	fonts map[string]model.Font
}

func (r *resourcesStub) GetFont(name string) (model.Font, bool) {
	f, ok := r.fonts[name]
	return f, ok
}
func (r *resourcesStub) GetXObject(name string) (model.XObject, bool)     { return nil, false }
func (r *resourcesStub) GetPattern(name string) (*model.TilingPattern, bool) { return nil, false }
func (r *resourcesStub) GetExtGState(name string) (*model.ExtGState, bool) { return nil, false }
