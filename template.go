package gojinja2

import (
	"io"
	"strings"
)

// Template is a compiled template: a flat renderer tree plus the
// block-name map and (optional) parent-template reference that
// support {% extends %} inheritance, per spec.md §6 "Template API".
type Template struct {
	name       string
	body       *renderList
	blocks     map[string]*blockNode
	parentName string
	env        *Environment

	metaRaw  []string
	metadata interface{}
}

func compileTemplate(name, src string, opts *Options, env *Environment) (*Template, error) {
	body, blocks, parentName, metas, err := parseSource(name, src, opts, env)
	if err != nil {
		return nil, err
	}
	tpl := &Template{
		name:       name,
		body:       body,
		blocks:     blocks,
		parentName: parentName,
		env:        env,
		metaRaw:    metas,
	}
	if len(metas) > 0 {
		merged := map[string]interface{}{}
		for _, raw := range metas {
			v, err := parseMetadataJSON(raw)
			if err != nil {
				return nil, err
			}
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, newError(ErrInvalidMetadata, name, 0, 0, "meta", "payload is not a JSON object")
			}
			for k, val := range m {
				merged[k] = val
			}
		}
		tpl.metadata = merged
	}
	return tpl, nil
}

// Name returns the template's compiled-from name (a file path for a
// loader-backed template, "<string>" for FromString).
func (t *Template) Name() string { return t.name }

// resolveChain walks the {% extends %} chain from this template up to
// its root ancestor, returning templates ordered root-first.
func (t *Template) resolveChain(env *Environment) ([]*Template, error) {
	chain := []*Template{t}
	cur := t
	for cur.parentName != "" {
		if env == nil {
			return nil, newError(ErrTemplateEnvAbsent, cur.name, 0, 0, "extends")
		}
		parent, err := env.getTemplateFrom(cur.name, cur.parentName)
		if err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		cur = parent
	}
	// reverse into root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Execute renders the template against pub, resolving any
// {% extends %} chain through env (which may be nil if the template is
// self-contained).
func (t *Template) Execute(pub Context) (string, error) {
	return t.executeWithScope(pub, t.env, nil, true)
}

// executeWithScope underlies Execute and the {% include %}/{% import %}
// family: seed, when non-nil, pre-populates the root scope frame with a
// flattened snapshot of the caller's variables (the "with context" form).
// withContext false suppresses both seed and pub.
func (t *Template) executeWithScope(pub Context, env *Environment, seed map[string]*Value, withContext bool) (string, error) {
	if !withContext {
		pub = nil
		seed = nil
	}
	chain, err := t.resolveChain(env)
	if err != nil {
		return "", err
	}
	root := chain[0]

	ctx := newRenderContext(t, env, pub)
	for k, v := range seed {
		ctx.SetGlobal(k, v)
	}
	ctx.blockDefs = map[string][]*blockNode{}
	for _, tpl := range chain {
		for name, b := range tpl.blocks {
			ctx.blockDefs[name] = append(ctx.blockDefs[name], b)
		}
	}

	selfKeys := make([]string, 0, len(ctx.blockDefs))
	selfValues := make(map[string]*Value, len(ctx.blockDefs))
	for name, defs := range ctx.blockDefs {
		defsCopy := defs
		selfKeys = append(selfKeys, name)
		selfValues[name] = &Value{kind: KindCallable, call: &Callable{
			Kind: CallableSpecial,
			Special: func(innerCtx *RenderContext, _ *CallArgs) (*Value, error) {
				var sub strings.Builder
				if err := renderBlockDef(innerCtx, defsCopy, len(defsCopy)-1, &sub); err != nil {
					return nil, err
				}
				return AsSafeValue(sub.String()), nil
			},
		}}
	}
	ctx.SetGlobal("self", MapOf(selfKeys, selfValues))

	var w strings.Builder
	if err := root.body.Render(ctx, &w); err != nil {
		return "", err
	}
	return w.String(), nil
}

// RenderString is an alias for Execute, matching the common Jinja2
// Go-binding naming spec.md §6 calls out.
func (t *Template) RenderString(pub Context) (string, error) { return t.Execute(pub) }

// Render writes the rendered output directly to w, the sink-based
// counterpart to Execute/RenderString's string return.
func (t *Template) Render(w io.Writer, pub Context) error {
	out, err := t.Execute(pub)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// loadModule renders t for its side effects ({% set %}/{% macro %}
// bindings at top level) and returns the resulting top-level scope as a
// namespace, the mechanism behind {% import %}/{% from ... import %}.
// Output text the module produces along the way is discarded, matching
// Jinja2's module-import semantics.
func (t *Template) loadModule(env *Environment, pub Context, seed map[string]*Value, withContext bool) (map[string]*Value, error) {
	if !withContext {
		pub = nil
		seed = nil
	}
	ctx := newRenderContext(t, env, pub)
	for k, v := range seed {
		ctx.SetGlobal(k, v)
	}
	ctx.blockDefs = map[string][]*blockNode{}
	for name, b := range t.blocks {
		ctx.blockDefs[name] = append(ctx.blockDefs[name], b)
	}
	var w strings.Builder
	if err := t.body.Render(ctx, &w); err != nil {
		return nil, err
	}
	return ctx.frames[0].vars, nil
}
