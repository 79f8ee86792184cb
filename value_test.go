package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"empty", Empty, false},
		{"zero int", intValue(0), false},
		{"nonzero int", intValue(1), true},
		{"zero float", doubleValue(0), false},
		{"empty string", stringValue(""), false},
		{"nonempty string", stringValue("x"), true},
		{"empty list", ListOf(), false},
		{"nonempty list", ListOf(intValue(1)), true},
		{"false bool", boolValue(false), false},
		{"true bool", boolValue(true), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.v.IsTrue())
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, intValue(3).Equal(doubleValue(3.0)))
	assert.False(t, intValue(3).Equal(stringValue("3")))
	assert.True(t, Empty.Equal(Empty))
	assert.False(t, Empty.Equal(intValue(0)))

	a := ListOf(intValue(1), stringValue("a"))
	b := ListOf(intValue(1), stringValue("a"))
	assert.True(t, a.Equal(b))

	m1 := MapOf([]string{"x", "y"}, map[string]*Value{"x": intValue(1), "y": intValue(2)})
	m2 := MapOf([]string{"y", "x"}, map[string]*Value{"y": intValue(2), "x": intValue(1)})
	assert.True(t, m1.Equal(m2))
}

func TestValueIndexAndAttr(t *testing.T) {
	list := ListOf(intValue(10), intValue(20), intValue(30))
	v, err := list.Index(intValue(-1))
	require.NoError(t, err)
	require.Equal(t, int64(30), v.Integer())
	v, err = list.Index(intValue(99))
	require.NoError(t, err)
	require.True(t, v.IsEmpty())

	m := MapOf([]string{"name"}, map[string]*Value{"name": stringValue("ada")})
	assert.Equal(t, "ada", m.Attr("name").String())
	assert.True(t, m.Attr("missing").IsEmpty())
}

func TestValueLenOnString(t *testing.T) {
	// multi-byte runes: Len counts runes, not bytes (spec.md §9 resolution).
	v := stringValue("héllo")
	assert.Equal(t, 5, v.Len())
}

func TestValueContains(t *testing.T) {
	assert.True(t, stringValue("hello world").Contains(stringValue("world")))
	assert.True(t, ListOf(intValue(1), intValue(2)).Contains(intValue(2)))
	m := MapOf([]string{"a"}, map[string]*Value{"a": intValue(1)})
	assert.True(t, m.Contains(stringValue("a")))
	assert.False(t, m.Contains(stringValue("b")))
}

func TestAsValueReflection(t *testing.T) {
	type point struct {
		X int
		Y int
	}
	v := AsValue(point{X: 1, Y: 2})
	require.True(t, v.IsMap())
	assert.Equal(t, int64(1), v.Attr("X").Integer())
	assert.Equal(t, int64(2), v.Attr("Y").Integer())

	sl := AsValue([]int{1, 2, 3})
	require.True(t, sl.IsList())
	assert.Equal(t, 3, sl.Len())
}
