package core

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func collectTokens(t *testing.T, data string) []Token {
	t.Helper()
	tok := NewTokenizer([]byte(data))
	var out []Token
	for {
		tk, err := tok.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, tk)
	}
}

func TestTokenizerOperatorAndOperands(t *testing.T) {
	toks := collectTokens(t, "/F1 12 Tf")
	require.Len(t, toks, 3)
	require.Equal(t, TokenName, toks[0].Kind)
	require.Equal(t, TokenNumber, toks[1].Kind)
	require.Equal(t, TokenOperator, toks[2].Kind)
	require.Equal(t, "Tf", toks[2].Operator)
}

func TestTokenizerLiteralStringEscapes(t *testing.T) {
	toks := collectTokens(t, `(a\051b) Tj`)
	require.Len(t, toks, 2)
	s, ok := GetStringVal(toks[0].Object)
	require.True(t, ok)
	require.Equal(t, "a)b", s)
}

func TestTokenizerHexString(t *testing.T) {
	toks := collectTokens(t, "<48656C6C6F> Tj")
	s, ok := GetStringVal(toks[0].Object)
	require.True(t, ok)
	require.Equal(t, "Hello", s)
}

func TestTokenizerArrayOfMixedElements(t *testing.T) {
	toks := collectTokens(t, "[(A) -120 (B)] TJ")
	require.Len(t, toks, 2)
	arr, ok := GetArray(toks[0].Object)
	require.True(t, ok)
	require.Equal(t, 3, arr.Len())
}

func TestTokenizerNegativeNumber(t *testing.T) {
	toks := collectTokens(t, "-12.5 0 Td")
	v, err := GetNumberAsFloat(toks[0].Object)
	require.NoError(t, err)
	require.Equal(t, -12.5, v)
}

func TestTokenizerEmptyStreamIsImmediateEOF(t *testing.T) {
	tok := NewTokenizer([]byte(""))
	_, err := tok.Next()
	require.ErrorIs(t, err, io.EOF)
}
