package gojinja2

// Context is the caller-supplied set of top-level template variables,
// the outermost (and lowest-priority) scope a RenderContext consults.
type Context map[string]interface{}

// scopeFrame is one entry of the RenderContext's scope stack: a single
// {% for %}/{% with %}/{% block %}/macro-call level of variable
// bindings, pushed on entry and popped on exit (LIFO), per the
// teacher's ExecutionContext push/pop pattern generalized beyond tags.
type scopeFrame struct {
	vars map[string]*Value
}

// RenderContext is the live, mutable state threaded through evaluation
// of one Template.Execute call: the scope stack, the owning Template
// (for block/macro/extends resolution), autoescape mode, and the
// public Context the caller supplied. It is not safe for concurrent
// use; never share one across goroutines (doc.go's caveat).
type RenderContext struct {
	Public Context

	template   *Template
	env        *Environment
	autoescape bool

	frames []*scopeFrame

	// loopDepth tracks `loop.depth`/`loop.depth0` across nested for-loops.
	loopDepth int

	// blockDefs maps a block name to every definition of it found across
	// the active {% extends %} chain, root-first, so {% block %}
	// rendering and {{ super() }} can walk from the most-derived
	// definition back toward the root's.
	blockDefs map[string][]*blockNode
}

func newRenderContext(tpl *Template, env *Environment, pub Context) *RenderContext {
	autoescape := false
	if env != nil {
		autoescape = env.Options.AutoescapeDefault
	}
	rc := &RenderContext{
		Public:     pub,
		template:   tpl,
		env:        env,
		autoescape: autoescape,
	}
	rc.push()
	return rc
}

func (rc *RenderContext) push() {
	rc.frames = append(rc.frames, &scopeFrame{vars: map[string]*Value{}})
}

func (rc *RenderContext) pop() {
	if len(rc.frames) == 0 {
		return
	}
	rc.frames = rc.frames[:len(rc.frames)-1]
}

// Set binds name in the innermost scope frame.
func (rc *RenderContext) Set(name string, v *Value) {
	rc.frames[len(rc.frames)-1].vars[name] = v
}

// SetGlobal binds name in the outermost (module-level) scope frame,
// used by template.go to seed that frame with `self` and with
// context-passed variables.
func (rc *RenderContext) SetGlobal(name string, v *Value) {
	rc.frames[0].vars[name] = v
}

// Get resolves name top-down through the scope stack, then the public
// Context, then the owning Environment's Globals, then the reserved
// name "gojinja2" (the engine Version), else Empty.
func (rc *RenderContext) Get(name string) *Value {
	for i := len(rc.frames) - 1; i >= 0; i-- {
		if v, ok := rc.frames[i].vars[name]; ok {
			return v
		}
	}
	if rc.Public != nil {
		if raw, ok := rc.Public[name]; ok {
			return AsValue(raw)
		}
	}
	if rc.env != nil {
		if v, ok := rc.env.Globals[name]; ok {
			return v
		}
	}
	if name == "gojinja2" {
		return stringValue(Version)
	}
	return Empty
}

// Autoescape reports the current autoescape mode.
func (rc *RenderContext) Autoescape() bool { return rc.autoescape }

// WithAutoescape runs fn with autoescape temporarily set, restoring the
// previous value afterward ({% autoescape %} block support).
func (rc *RenderContext) WithAutoescape(v bool, fn func() error) error {
	prev := rc.autoescape
	rc.autoescape = v
	defer func() { rc.autoescape = prev }()
	return fn()
}

// withTemplate produces a copy of the RenderContext sharing the same
// scope stack and public data but pointed at a different Template.
// Nothing in the package calls it.
func (rc *RenderContext) withTemplate(tpl *Template) *RenderContext {
	cp := *rc
	cp.template = tpl
	return &cp
}

// Template returns the template currently being rendered (changes
// across an extends chain as control passes from child to parent).
func (rc *RenderContext) Template() *Template { return rc.template }

// Environment returns the owning Environment, or nil for a standalone
// FromString/FromFile template with no environment.
func (rc *RenderContext) Environment() *Environment { return rc.env }
