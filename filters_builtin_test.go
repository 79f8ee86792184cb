package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterAbsCapitalizeCenter(t *testing.T) {
	require.Equal(t, "5", renderStr(t, "{{ -5|abs }}", nil))
	require.Equal(t, "Hello world", renderStr(t, `{{ "hello WORLD"|capitalize }}`, nil))
	require.Equal(t, "  hi  ", renderStr(t, `{{ "hi"|center(6) }}`, nil))
}

func TestFilterBatchAndSlice(t *testing.T) {
	ctx := Context{"items": []interface{}{1, 2, 3, 4, 5}}
	require.Equal(t, "[[1, 2], [3, 4], [5]]", renderStr(t, "{{ items|batch(2)|list }}", ctx))
	require.Equal(t, "2", renderStr(t, "{{ items|slice(2)|length }}", ctx))
	require.Equal(t, "3", renderStr(t, "{{ (items|slice(2))[0]|length }}", ctx))
}

func TestFilterDefault(t *testing.T) {
	require.Equal(t, "fallback", renderStr(t, `{{ missing|default("fallback") }}`, nil))
	require.Equal(t, "hi", renderStr(t, `{{ "hi"|default("fallback") }}`, nil))
	require.Equal(t, "fallback", renderStr(t, `{{ ""|default("fallback", true) }}`, nil))
}

func TestFilterDictsortAndItems(t *testing.T) {
	ctx := Context{"m": map[string]interface{}{"b": 2, "a": 1}}
	require.Equal(t, "(a, 1)(b, 2)", renderStr(t, "{% for kv in m|dictsort %}{{ kv }}{% endfor %}", ctx))
	require.Equal(t, "(a, 1)(b, 2)", renderStr(t, "{% for kv in m|items %}{{ kv }}{% endfor %}", ctx))
}

func TestFilterEscapeAndSafe(t *testing.T) {
	require.Equal(t, "&lt;b&gt;", renderStr(t, `{{ "<b>"|escape }}`, nil))
	require.Equal(t, "<b>", renderStr(t, `{{ "<b>"|safe }}`, nil))
}

func TestFilterFilesizeformat(t *testing.T) {
	require.Equal(t, "1.0 kB", renderStr(t, "{{ 1000|filesizeformat }}", nil))
	require.Equal(t, "1.0 KiB", renderStr(t, "{{ 1024|filesizeformat(true) }}", nil))
}

func TestFilterFirstLast(t *testing.T) {
	ctx := Context{"items": []interface{}{1, 2, 3}}
	require.Equal(t, "1", renderStr(t, "{{ items|first }}", ctx))
	require.Equal(t, "3", renderStr(t, "{{ items|last }}", ctx))
	require.Equal(t, "h", renderStr(t, `{{ "hello"|first }}`, nil))
}

func TestFilterFloatIntFormat(t *testing.T) {
	require.Equal(t, "3.0", renderStr(t, `{{ "3"|float }}`, nil))
	require.Equal(t, "3", renderStr(t, `{{ "3.9"|int }}`, nil))
	require.Equal(t, "7", renderStr(t, `{{ ""|int(7) }}`, nil))
	require.Equal(t, "hi is 3", renderStr(t, `{{ "%s is %v"|format("hi", 3) }}`, nil))
}

func TestFilterGroupbyAndIndent(t *testing.T) {
	ctx := Context{"items": []interface{}{
		map[string]interface{}{"team": "b", "name": "x"},
		map[string]interface{}{"team": "a", "name": "y"},
		map[string]interface{}{"team": "a", "name": "z"},
	}}
	require.Equal(t, "(a, [{\"name\": \"y\", \"team\": \"a\"}, {\"name\": \"z\", \"team\": \"a\"}])(b, [{\"name\": \"x\", \"team\": \"b\"}])",
		renderStr(t, "{% for g in items|groupby('team') %}{{ g }}{% endfor %}", ctx))
	require.Equal(t, "a\n  b\n  c", renderStr(t, `{{ "a\nb\nc"|indent(2) }}`, nil))
}

func TestFilterJoin(t *testing.T) {
	ctx := Context{"items": []interface{}{"a", "b", "c"}}
	require.Equal(t, "a, b, c", renderStr(t, `{{ items|join(", ") }}`, ctx))
}

func TestFilterLengthListLowerUpper(t *testing.T) {
	ctx := Context{"items": []interface{}{1, 2, 3}}
	require.Equal(t, "3", renderStr(t, "{{ items|length }}", ctx))
	require.Equal(t, "3", renderStr(t, "{{ items|count }}", ctx))
	require.Equal(t, "[h, i]", renderStr(t, `{{ "hi"|list }}`, nil))
	require.Equal(t, "hi", renderStr(t, `{{ "HI"|lower }}`, nil))
	require.Equal(t, "HI", renderStr(t, `{{ "hi"|upper }}`, nil))
}

func TestFilterMapAndMinMax(t *testing.T) {
	ctx := Context{"items": []interface{}{"a", "bb", "ccc"}}
	require.Equal(t, "[A, BB, CCC]", renderStr(t, "{{ items|map('upper')|list }}", ctx))
	nums := Context{"nums": []interface{}{3, 1, 2}}
	require.Equal(t, "3", renderStr(t, "{{ nums|max }}", nums))
	require.Equal(t, "1", renderStr(t, "{{ nums|min }}", nums))
}

func TestFilterReplaceReverseRound(t *testing.T) {
	require.Equal(t, "yellow", renderStr(t, `{{ "hello"|replace("hell", "yell")|replace("o", "ow") }}`, nil))
	require.Equal(t, "321", renderStr(t, `{{ "123"|reverse }}`, nil))
	require.Equal(t, "3.0", renderStr(t, "{{ 2.6|round }}", nil))
	require.Equal(t, "2.0", renderStr(t, "{{ 2.6|round(0, method='floor') }}", nil))
}

func TestFilterSelectRejectSelectattr(t *testing.T) {
	ctx := Context{"items": []interface{}{1, 2, 3, 4}}
	require.Equal(t, "[2, 4]", renderStr(t, "{{ items|select('even')|list }}", ctx))
	require.Equal(t, "[1, 3]", renderStr(t, "{{ items|reject('even')|list }}", ctx))
	users := Context{"users": []interface{}{
		map[string]interface{}{"name": "a", "active": true},
		map[string]interface{}{"name": "b", "active": false},
	}}
	require.Equal(t, "[a]", renderStr(t, "{{ users|selectattr('active')|map(attribute='name')|list }}", users))
}

func TestFilterSortStringTitle(t *testing.T) {
	ctx := Context{"items": []interface{}{"banana", "Apple", "cherry"}}
	require.Equal(t, "[Apple, banana, cherry]", renderStr(t, "{{ items|sort|list }}", ctx))
	require.Equal(t, "[cherry, banana, Apple]", renderStr(t, "{{ items|sort(reverse=true)|list }}", ctx))
	require.Equal(t, "42", renderStr(t, "{{ 42|string }}", nil))
	require.Equal(t, "Hello World", renderStr(t, `{{ "hello world"|title }}`, nil))
}

func TestFilterStriptagsSumTrimTruncate(t *testing.T) {
	require.Equal(t, "hi there", renderStr(t, `{{ "<b>hi</b> <i>there</i>"|striptags }}`, nil))
	nums := Context{"nums": []interface{}{1, 2, 3}}
	require.Equal(t, "6", renderStr(t, "{{ nums|sum }}", nums))
	require.Equal(t, "hi", renderStr(t, `{{ "  hi  "|trim }}`, nil))
	require.Equal(t, "he...", renderStr(t, `{{ "hello world"|truncate(2, true, "...") }}`, nil))
}

func TestFilterTojsonUniqueWordcountXmlattr(t *testing.T) {
	require.Equal(t, `{"a":1}`, renderStr(t, `{{ {"a": 1}|tojson }}`, nil))
	ctx := Context{"items": []interface{}{1, 1, 2, 2, 3}}
	require.Equal(t, "[1, 2, 3]", renderStr(t, "{{ items|unique|list }}", ctx))
	require.Equal(t, "2", renderStr(t, `{{ "hello world"|wordcount }}`, nil))
	attrs := Context{"m": map[string]interface{}{"class": "x"}}
	require.Equal(t, ` class="x"`, renderStr(t, "{{ m|xmlattr }}", attrs))
}

func TestFilterUrlencode(t *testing.T) {
	require.Equal(t, "a+b", renderStr(t, `{{ "a b"|urlencode }}`, nil))
}
