package gojinja2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderContextScopeResolutionOrder(t *testing.T) {
	env := NewEnvironment(nil)
	env.Globals["name"] = stringValue("from-global")
	rc := newRenderContext(nil, env, Context{"name": "from-public"})
	require.Equal(t, "from-public", rc.Get("name").String())

	rc.Set("name", stringValue("from-frame"))
	require.Equal(t, "from-frame", rc.Get("name").String())
}

func TestRenderContextFallsBackToGlobalsThenEmpty(t *testing.T) {
	env := NewEnvironment(nil)
	env.Globals["site"] = stringValue("acme")
	rc := newRenderContext(nil, env, nil)
	require.Equal(t, "acme", rc.Get("site").String())
	require.True(t, rc.Get("nope").IsEmpty())
}

func TestRenderContextPushPopScoping(t *testing.T) {
	rc := newRenderContext(nil, nil, nil)
	rc.Set("x", AsValue(1))
	rc.push()
	rc.Set("x", AsValue(2))
	require.Equal(t, int64(2), rc.Get("x").Integer())
	rc.pop()
	require.Equal(t, int64(1), rc.Get("x").Integer())
}

func TestRenderContextSetGlobalBindsOutermostFrame(t *testing.T) {
	rc := newRenderContext(nil, nil, nil)
	rc.push()
	rc.SetGlobal("x", AsValue(42))
	rc.pop()
	require.Equal(t, int64(42), rc.Get("x").Integer())
}

func TestRenderContextGojinja2ReservedKey(t *testing.T) {
	rc := newRenderContext(nil, nil, nil)
	require.Equal(t, Version, rc.Get("gojinja2").String())
}

func TestRenderContextAutoescapeToggle(t *testing.T) {
	rc := newRenderContext(nil, nil, nil)
	require.False(t, rc.Autoescape())
	err := rc.WithAutoescape(true, func() error {
		require.True(t, rc.Autoescape())
		return nil
	})
	require.NoError(t, err)
	require.False(t, rc.Autoescape())
}
