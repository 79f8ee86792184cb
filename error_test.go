package gojinja2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormattingWithLocation(t *testing.T) {
	e := newError(ErrTemplateNotFound, "main.html", 3, 7, "include", "partial.html")
	require.Equal(t, `main.html:3:7: error: template "partial.html" not found`, e.Error())
}

func TestErrorFormattingWithoutLocation(t *testing.T) {
	e := newError(ErrTemplateEnvAbsent, "", 0, 0, "")
	require.Equal(t, "error: operation requires an environment, none set", e.Error())
}

func TestErrorWithTokenFillsLocationOnce(t *testing.T) {
	e := newError(ErrUnexpectedToken, "", 0, 0, "parser", "}}")
	tok := &Token{Filename: "a.html", Line: 5, Col: 2}
	filled := e.withToken(tok)
	require.Equal(t, "a.html", filled.Filename)
	require.Equal(t, 5, filled.Line)

	// withToken is a no-op once a location is already present.
	otherTok := &Token{Filename: "b.html", Line: 9, Col: 1}
	stillFirst := filled.withToken(otherTok)
	require.Equal(t, "a.html", stillFirst.Filename)
	require.Equal(t, 5, stillFirst.Line)
}

func TestWrapErrorCauseAndUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := wrapError(ErrInvalidMetadata, inner, "", 0, 0, "meta")
	require.Contains(t, e.Error(), "boom")
	require.Equal(t, inner.Error(), e.Cause().Error())
	require.Equal(t, inner.Error(), errors.Unwrap(e).Error())
}
