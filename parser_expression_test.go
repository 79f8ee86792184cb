package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func renderStr(t *testing.T, src string, ctx Context) string {
	t.Helper()
	tpl, err := FromString(src)
	require.NoError(t, err)
	out, err := tpl.RenderString(ctx)
	require.NoError(t, err)
	return out
}

func TestExpressionPrecedence(t *testing.T) {
	require.Equal(t, "7", renderStr(t, "{{ 1 + 2 * 3 }}", nil))
	require.Equal(t, "9", renderStr(t, "{{ (1 + 2) * 3 }}", nil))
	require.Equal(t, "8", renderStr(t, "{{ 2 ** 3 }}", nil))
	require.Equal(t, "512", renderStr(t, "{{ 2 ** 3 ** 2 }}", nil)) // right-assoc: 2 ** (3 ** 2)
	require.Equal(t, "2", renderStr(t, "{{ 7 // 3 }}", nil))
	require.Equal(t, "1", renderStr(t, "{{ 7 % 3 }}", nil))
}

func TestExpressionComparisonAndLogic(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ 1 < 2 and 2 < 3 }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 1 > 2 or 2 > 3 }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ not false }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ 2 in [1, 2, 3] }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 5 in [1, 2, 3] }}", nil))
}

func TestExpressionConcatAndConditional(t *testing.T) {
	require.Equal(t, "ab", renderStr(t, `{{ "a" ~ "b" }}`, nil))
	require.Equal(t, "yes", renderStr(t, `{{ "yes" if 1 == 1 else "no" }}`, nil))
	require.Equal(t, "no", renderStr(t, `{{ "yes" if 1 == 2 else "no" }}`, nil))
}

func TestExpressionIsTester(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ 4 is even }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ 4 is odd }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ none is none }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ missing is not defined }}", nil))
}

func TestExpressionFilterChainAndAttrIndex(t *testing.T) {
	require.Equal(t, "HELLO", renderStr(t, `{{ "hello"|upper }}`, nil))
	require.Equal(t, "HELLO!", renderStr(t, `{{ "hello"|upper ~ "!" }}`, nil))
	require.Equal(t, "3", renderStr(t, "{{ [1, 2, 3][-1] }}", nil))
	ctx := Context{"items": []interface{}{1, 2, 3, 4}}
	require.Equal(t, "[2, 4]", renderStr(t, "{{ items|select('even')|list }}", ctx))
}

func TestExpressionDictLiteralAndAttr(t *testing.T) {
	require.Equal(t, "1", renderStr(t, `{{ {"a": 1, "b": 2}.a }}`, nil))
	require.Equal(t, "2", renderStr(t, `{{ {"a": 1, "b": 2}["b"] }}`, nil))
}

func TestExpressionCapitalizedLiteralKeywords(t *testing.T) {
	require.Equal(t, "true", renderStr(t, "{{ True }}", nil))
	require.Equal(t, "false", renderStr(t, "{{ False }}", nil))
	require.Equal(t, "", renderStr(t, "{{ None }}", nil))
	require.Equal(t, "true", renderStr(t, "{{ None is none }}", nil))
}

func TestExpressionUnaryBindsTighterThanFilterChain(t *testing.T) {
	// "-30 | abs" must parse as "(-30) | abs" (= 30), not "-(30 | abs)"
	// (= -30), so this comparison evaluates to false: abs(-30)=30 < int('20')=20.
	require.Equal(t, "false", renderStr(t, "{{ -30 | abs < '20' | int }}", nil))
	require.Equal(t, "30", renderStr(t, "{{ -30 | abs }}", nil))
}
