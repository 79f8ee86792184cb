package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenVals(toks []*Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Val
	}
	return out
}

func TestLexerBasicOutput(t *testing.T) {
	toks, err := lex("<string>", "Hi {{ name }}!", nil)
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, TokenHTML, toks[0].Typ)
	assert.Equal(t, "Hi ", toks[0].Val)
	assert.Equal(t, "{{", toks[1].Val)
	assert.Equal(t, TokenIdentifier, toks[2].Typ)
	assert.Equal(t, "name", toks[2].Val)
	assert.Equal(t, "}}", toks[3].Val)
	assert.Equal(t, "!", toks[4].Val)
}

func TestLexerTrimMarkers(t *testing.T) {
	toks, err := lex("<string>", "{%- if x -%}y{% endif %}", nil)
	require.NoError(t, err)
	require.True(t, toks[0].TrimLeft)
	require.True(t, toks[3].TrimRight)
}

func TestLexerKeepMarkers(t *testing.T) {
	toks, err := lex("<string>", "{%+ if x +%}y{% endif %}", nil)
	require.NoError(t, err)
	require.True(t, toks[0].KeepLeft)
	require.True(t, toks[3].KeepRight)
}

func TestLexerStringEscapes(t *testing.T) {
	toks, err := lex("<string>", `{{ "a\nb" }}`, nil)
	require.NoError(t, err)
	var str *Token
	for _, tok := range toks {
		if tok.Typ == TokenString {
			str = tok
		}
	}
	require.NotNil(t, str)
	assert.Equal(t, "a\nb", str.Val)
}

func TestLexerLineStatement(t *testing.T) {
	toks, err := lex("<string>", "# if x\nyes\n# endif\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "{%", toks[0].Val)
	assert.Equal(t, TokenKeyword, toks[1].Typ)
	assert.Equal(t, "if", toks[1].Val)
}

func TestLexerRejectsNewlineInsideBlock(t *testing.T) {
	_, err := lex("<string>", "{{ x\ny }}", nil)
	require.Error(t, err)
}

func TestLexerComment(t *testing.T) {
	toks, err := lex("<string>", "a{# drop me #}b", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tokenVals(toks))
}
