package gojinja2

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Environment is the compiled-template cache and loader registry a
// real application builds once and renders many templates through,
// the generalization of the teacher's TemplateSet.
type Environment struct {
	Options *Options
	Globals map[string]*Value
	Debug   bool

	mu       sync.RWMutex
	loaders  []prefixedLoader
	cache    map[string]*Template
	inflight singleflight.Group
}

// NewEnvironment builds an Environment with the given Options (or
// engine defaults if nil).
func NewEnvironment(opts *Options) *Environment {
	if opts == nil {
		opts = newOptions()
	}
	env := &Environment{
		Options: opts,
		Globals: map[string]*Value{},
		cache:   map[string]*Template{},
	}
	registerBuiltinGlobals(env)
	return env
}

// RegisterLoader attaches a TemplateLoader under prefix ("" for the
// default/catch-all loader). Longer prefixes are tried first.
func (env *Environment) RegisterLoader(prefix string, loader TemplateLoader) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.loaders = append(env.loaders, prefixedLoader{prefix: prefix, loader: loader})
	sort.Slice(env.loaders, func(i, j int) bool {
		return len(env.loaders[i].prefix) > len(env.loaders[j].prefix)
	})
}

// resolve picks the loader for name and returns it with the
// loader-relative name and a cache key that includes the loader's prefix.
func (env *Environment) resolve(base, name string) (TemplateLoader, string, string) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	for _, pl := range env.loaders {
		if pl.prefix == "" || strings.HasPrefix(name, pl.prefix) {
			absName := pl.loader.Abs(base, strings.TrimPrefix(name, pl.prefix))
			return pl.loader, absName, pl.prefix + absName
		}
	}
	return nil, name, name
}

// GetTemplate compiles (or returns from cache) the named template.
// Concurrent requests for the same name coalesce into a single load
// via singleflight, per spec.md §5.
func (env *Environment) GetTemplate(name string) (*Template, error) {
	return env.getTemplateFrom("", name)
}

func (env *Environment) getTemplateFrom(base, name string) (*Template, error) {
	loader, absName, cacheKey := env.resolve(base, name)
	if loader == nil {
		return nil, newError(ErrFileNotFound, "", 0, 0, "environment", name)
	}

	env.mu.RLock()
	if tpl, ok := env.cache[cacheKey]; ok {
		env.mu.RUnlock()
		return tpl, nil
	}
	env.mu.RUnlock()

	v, err, _ := env.inflight.Do(cacheKey, func() (interface{}, error) {
		env.mu.RLock()
		if tpl, ok := env.cache[cacheKey]; ok {
			env.mu.RUnlock()
			return tpl, nil
		}
		env.mu.RUnlock()

		src, err := loader.Get(absName)
		if err != nil {
			return nil, err
		}
		tpl, err := compileTemplate(absName, src, env.Options, env)
		if err != nil {
			return nil, err
		}
		env.mu.Lock()
		env.cache[cacheKey] = tpl
		env.mu.Unlock()
		return tpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Template), nil
}

// FromString compiles src as a standalone template with no
// environment (no {% extends %}/{% include %} support beyond what is
// already self-contained).
func FromString(src string) (*Template, error) {
	return compileTemplate("<string>", src, newOptions(), nil)
}

// FromFile compiles the file at path as a standalone template.
func FromFile(path string) (*Template, error) {
	loader := NewFileSystemLoader(".")
	src, err := loader.Get(path)
	if err != nil {
		return nil, err
	}
	return compileTemplate(path, src, newOptions(), nil)
}
