package gojinja2

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// slowLoader counts Get calls and sleeps briefly, so a test can assert
// concurrent GetTemplate calls for the same name coalesce into one load.
type slowLoader struct {
	calls int32
	src   string
}

func (s *slowLoader) Abs(_, name string) string { return name }

func (s *slowLoader) Get(name string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	time.Sleep(20 * time.Millisecond)
	return s.src, nil
}

func TestEnvironmentCoalescesConcurrentLoads(t *testing.T) {
	loader := &slowLoader{src: "hello {{ name }}"}
	env := NewEnvironment(nil)
	env.RegisterLoader("", loader)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			_, err := env.GetTemplate("greet.html")
			errs[idx] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))
}

func TestEnvironmentCachesAfterFirstLoad(t *testing.T) {
	loader := &slowLoader{src: "cached"}
	env := NewEnvironment(nil)
	env.RegisterLoader("", loader)

	_, err := env.GetTemplate("a.html")
	require.NoError(t, err)
	_, err = env.GetTemplate("a.html")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))
}

func TestPrefixedLoaderLongestMatchWins(t *testing.T) {
	env := NewEnvironment(nil)
	env.RegisterLoader("", NewMemoryLoader(map[string]string{"x.html": "root"}))
	env.RegisterLoader("admin/", NewMemoryLoader(map[string]string{"x.html": "admin"}))

	tpl, err := env.GetTemplate("admin/x.html")
	require.NoError(t, err)
	out, err := tpl.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "admin", out)

	tpl2, err := env.GetTemplate("x.html")
	require.NoError(t, err)
	out2, err := tpl2.Execute(nil)
	require.NoError(t, err)
	require.Equal(t, "root", out2)
}

func TestGetTemplateMissingReturnsError(t *testing.T) {
	env := NewEnvironment(nil)
	env.RegisterLoader("", NewMemoryLoader(map[string]string{}))
	_, err := env.GetTemplate("nope.html")
	require.Error(t, err)
}
