package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTesterBooleanDefinedUndefinedNone(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ true is boolean }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 1 is boolean }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 1 is defined }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ missing is undefined }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ none is none }}", nil))
}

func TestTesterFloatIntegerNumberString(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ 1.5 is float }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is integer }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is number }}", nil))
	require.Equal(t, `true`, renderStr(t, `{{ "hi" is string }}`, nil))
}

func TestTesterMappingSequenceIterable(t *testing.T) {
	ctx := Context{"m": map[string]interface{}{"a": 1}, "items": []interface{}{1, 2}}
	require.Equal(t, "true", renderStr(t, "{{ m is mapping }}", ctx))
	require.Equal(t, "true", renderStr(t, "{{ items is sequence }}", ctx))
	require.Equal(t, "true", renderStr(t, `{{ "hi" is iterable }}`, nil))
}

func TestTesterTrueFalse(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ true is true }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ false is false }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ true is false }}", nil))
}

func TestTesterEvenOddDivisibleby(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ 4 is even }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is odd }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 9 is divisibleby(3) }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 10 is divisibleby(3) }}", nil))
}

func TestTesterEqNeComparisons(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ 3 is eq(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is equalto(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is ne(4) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 2 is lessthan(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 2 is lt(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is le(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 4 is greaterthan(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 4 is gt(3) }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 3 is ge(3) }}", nil))
}

func TestTesterIn(t *testing.T) {
	ctx := Context{"items": []interface{}{1, 2, 3}}
	require.Equal(t, "true", renderStr(t, "{{ 2 is in(items) }}", ctx))
	require.Equal(t, "false", renderStr(t, "{{ 5 is in(items) }}", ctx))
}

func TestTesterLowerUpper(t *testing.T) {
	require.Equal(t, "true", renderStr(t, `{{ "hello" is lower }}`, nil))
	require.Equal(t, "true", renderStr(t, `{{ "HELLO" is upper }}`, nil))
	require.Equal(t, "false", renderStr(t, `{{ "Hello" is lower }}`, nil))
}

func TestTesterSameasAndCallable(t *testing.T) {
	// Public-context lookups re-wrap the raw Go value on every Get, so
	// sameas only holds for a name bound once in a scope frame (e.g. via
	// {% set %}), not for a name sourced straight from the render Context.
	require.Equal(t, "true", renderStr(t, "{% set x = 1 %}{{ x is sameas(x) }}", nil))
	require.Equal(t, "true", renderStr(t, "{% macro f() %}{% endmacro %}{{ f is callable }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 1 is callable }}", nil))
}

func TestTesterIsNotNegation(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ missing is not defined }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 1 is not defined }}", nil))
}
