package gojinja2

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderWritesToSink(t *testing.T) {
	tpl, err := FromString("Hello {{ name }}!")
	require.NoError(t, err)
	var buf strings.Builder
	err = tpl.Render(&buf, Context{"name": "World"})
	require.NoError(t, err)
	require.Equal(t, "Hello World!", buf.String())
}

func newTestEnv(t *testing.T, sources map[string]string) *Environment {
	t.Helper()
	env := NewEnvironment(nil)
	env.RegisterLoader("", NewMemoryLoader(sources))
	return env
}

func TestExtendsBlockSuper(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"base.html": "<title>{% block title %}base{% endblock %}</title>{% block body %}{% endblock %}",
		"child.html": "{% extends \"base.html\" %}" +
			"{% block title %}{{ super() }} - child{% endblock %}" +
			"{% block body %}hello{% endblock %}",
	})
	tpl, err := env.GetTemplate("child.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "<title>base - child</title>hello", out)
}

func TestSelfBlockReference(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"base.html": "{% block greeting %}hi{% endblock %}|{{ self.greeting() }}",
	})
	tpl, err := env.GetTemplate("base.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "hi|hi", out)
}

func TestIncludeWithContext(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"partial.html": "Hello {{ name }}",
		"main.html":    "{% set name = \"world\" %}{% include \"partial.html\" %}",
	})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "Hello world", out)
}

func TestIncludeIgnoreMissing(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"main.html": "before{% include \"missing.html\" ignore missing %}after",
	})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "beforeafter", out)
}

func TestIncludeAbsoluteStylePath(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"partial.html": "Hello {{ name }}",
		"main.html":    "{% set name = \"world\" %}{% include \"/partial.html\" %}",
	})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "Hello world", out)
}

func TestImportMacroNamespace(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"macros.html": "{% macro greet(name) %}Hi {{ name }}{% endmacro %}",
		"main.html":   "{% import \"macros.html\" as m %}{{ m.greet(\"Ada\") }}",
	})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "Hi Ada", out)
}

func TestFromImportNamedSymbol(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"macros.html": "{% macro greet(name) %}Hi {{ name }}{% endmacro %}",
		"main.html":   "{% from \"macros.html\" import greet as hail %}{{ hail(\"Grace\") }}",
	})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "Hi Grace", out)
}

func TestCallBlockInjectsCaller(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"main.html": "{% macro wrap() %}<b>{{ caller() }}</b>{% endmacro %}" +
			"{% call wrap() %}inner{% endcall %}",
	})
	tpl, err := env.GetTemplate("main.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "<b>inner</b>", out)
}

func TestRecursiveLoop(t *testing.T) {
	src := "{% for item in tree recursive %}" +
		"{{ item.name }}" +
		"{% if item.children %}({{ loop(item.children) }}){% endif %}" +
		"{% endfor %}"
	tpl, err := FromString(src)
	require.NoError(t, err)
	tree := []interface{}{
		map[string]interface{}{
			"name": "root",
			"children": []interface{}{
				map[string]interface{}{"name": "a", "children": []interface{}{}},
				map[string]interface{}{"name": "b", "children": []interface{}{}},
			},
		},
	}
	out, err := tpl.RenderString(Context{"tree": tree})
	require.NoError(t, err)
	require.Equal(t, "root(ab)", out)
}

func TestForMultiVarUnpacking(t *testing.T) {
	src := "{% for k, v in pairs %}{{ k }}={{ v }};{% endfor %}"
	tpl, err := FromString(src)
	require.NoError(t, err)
	out, err := tpl.Execute(Context{"pairs": []interface{}{
		[]interface{}{"a", 1},
		[]interface{}{"b", 2},
	}})
	require.NoError(t, err)
	require.Equal(t, "a=1;b=2;", out)
}

func TestForMultiVarUnpackingTooFewElementsErrors(t *testing.T) {
	src := "{% for k, v in pairs %}{{ k }}={{ v }};{% endfor %}"
	tpl, err := FromString(src)
	require.NoError(t, err)
	_, err = tpl.Execute(Context{"pairs": []interface{}{
		[]interface{}{"a"},
	}})
	require.Error(t, err)
}

func TestGetMetadata(t *testing.T) {
	tpl, err := FromString(`{% meta %}{"owner": "team-a", "version": 2}{% endmeta %}ok`)
	require.NoError(t, err)
	meta, err := tpl.GetMetadata()
	require.NoError(t, err)
	require.Equal(t, "team-a", meta["owner"])
	out, err := tpl.RenderString(nil)
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestAutoescapeDefault(t *testing.T) {
	tpl, err := FromString("{{ value }}")
	require.NoError(t, err)
	env := NewEnvironment(&Options{AutoescapeDefault: true})
	env.RegisterLoader("", NewMemoryLoader(map[string]string{"x.html": "{{ value }}"}))
	compiled, err := compileTemplate("x.html", "{{ value }}", env.Options, env)
	require.NoError(t, err)
	out, err := compiled.Execute(Context{"value": "<b>"})
	require.NoError(t, err)
	require.Equal(t, "&lt;b&gt;", out)

	// a standalone FromString template has no Environment, so its
	// render context starts with autoescape off.
	out2, err := tpl.RenderString(Context{"value": "<b>"})
	require.NoError(t, err)
	require.True(t, strings.Contains(out2, "<b>"))
}

func TestLoopControlsExtension(t *testing.T) {
	opts := newOptions()
	opts.LoopControlsExtension = true
	tpl, err := compileTemplate("<string>", "{% for i in items %}{% if i == 2 %}{% continue %}{% endif %}{% if i == 4 %}{% break %}{% endif %}{{ i }}{% endfor %}", opts, nil)
	require.NoError(t, err)
	out, err := tpl.Execute(Context{"items": []interface{}{1, 2, 3, 4, 5}})
	require.NoError(t, err)
	require.Equal(t, "13", out)
}
