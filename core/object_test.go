package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetNumberAsFloat(t *testing.T) {
	i := Integer(7)
	f := Float(2.5)
	v, err := GetNumberAsFloat(&i)
	require.NoError(t, err)
	require.Equal(t, 7.0, v)

	v, err = GetNumberAsFloat(&f)
	require.NoError(t, err)
	require.Equal(t, 2.5, v)

	_, err = GetNumberAsFloat(MakeName("x"))
	require.Error(t, err)
}

func TestStringEscapesParensOnWrite(t *testing.T) {
	s := MakeString("a(b)c\\d")
	require.Equal(t, `(a\(b\)c\\d)`, s.WriteString())
}

func TestDictionaryPreservesInsertionOrder(t *testing.T) {
	d := MakeDict()
	d.Set("Z", MakeName("first"))
	d.Set("A", MakeName("second"))
	d.Set("Z", MakeName("overwritten"))
	require.Equal(t, []string{"Z", "A"}, d.Keys())
	v, ok := d.Get("Z")
	require.True(t, ok)
	require.Equal(t, "overwritten", v.String())
}

func TestArrayAppendAndElements(t *testing.T) {
	a := MakeArray()
	a.Append(MakeName("x"))
	a.Append(MakeString("y"))
	require.Equal(t, 2, a.Len())
	require.Equal(t, "[/x (y)]", a.WriteString())
}
