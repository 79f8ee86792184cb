package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindParamsPositionalAndKeyword(t *testing.T) {
	params := []ParamSpec{{Name: "a", Mandatory: true}, {Name: "b", Mandatory: true}}
	bound, err := BindParams(nil, params, &CallArgs{
		Positional: []*Value{AsValue(1)},
		Kwargs:     map[string]*Value{"b": AsValue(2)},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), bound["a"].Integer())
	require.Equal(t, int64(2), bound["b"].Integer())
}

func TestBindParamsDefaultFallback(t *testing.T) {
	params := []ParamSpec{
		{Name: "name", Mandatory: true},
		{Name: "greeting", Default: &literalExpr{v: stringValue("hi")}},
	}
	bound, err := BindParams(nil, params, &CallArgs{Positional: []*Value{AsValue("Ada")}})
	require.NoError(t, err)
	require.Equal(t, "Ada", bound["name"].String())
	require.Equal(t, "hi", bound["greeting"].String())
}

func TestBindParamsMissingMandatoryErrors(t *testing.T) {
	params := []ParamSpec{{Name: "a", Mandatory: true}}
	_, err := BindParams(nil, params, &CallArgs{})
	require.Error(t, err)
}

func TestBindParamsVarargsKwargsOverflow(t *testing.T) {
	params := []ParamSpec{{Name: "a", Mandatory: true}, {Name: "varargs"}, {Name: "kwargs"}}
	bound, err := BindParams(nil, params, &CallArgs{
		Positional: []*Value{AsValue(1), AsValue(2), AsValue(3)},
		Kwargs:     map[string]*Value{"extra": AsValue("x")},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), bound["a"].Integer())
	varargs := CollectList(bound["varargs"])
	require.Len(t, varargs, 2)
	require.Equal(t, int64(2), varargs[0].Integer())
	kwargs := bound["kwargs"]
	require.True(t, kwargs.MapProvider().Has("extra"))
}

func TestBindParamsTooManyPositionalWithoutVarargsErrors(t *testing.T) {
	params := []ParamSpec{{Name: "a", Mandatory: true}}
	_, err := BindParams(nil, params, &CallArgs{Positional: []*Value{AsValue(1), AsValue(2)}})
	require.Error(t, err)
}

func TestBindParamsUnexpectedKeywordWithoutKwargsErrors(t *testing.T) {
	params := []ParamSpec{{Name: "a", Mandatory: true}}
	_, err := BindParams(nil, params, &CallArgs{
		Positional: []*Value{AsValue(1)},
		Kwargs:     map[string]*Value{"b": AsValue(2)},
	})
	require.Error(t, err)
}
