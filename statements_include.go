package gojinja2

import "strings"

type includeNode struct {
	names         Expression
	ignoreMissing bool
	withContext   bool
	tok           *Token
}

func (n *includeNode) Render(ctx *RenderContext, w *strings.Builder) error {
	v, err := n.names.Evaluate(ctx)
	if err != nil {
		return err
	}
	var candidates []string
	if v.IsList() {
		for _, item := range CollectList(v) {
			candidates = append(candidates, item.String())
		}
	} else {
		candidates = []string{v.String()}
	}

	env := ctx.Environment()
	if env == nil {
		return newError(ErrTemplateEnvAbsent, "", 0, 0, "include").withToken(n.tok)
	}

	var tpl *Template
	var lastErr error
	for _, name := range candidates {
		t, err := env.getTemplateFrom(ctx.Template().name, joinPath(ctx.Template().name, name))
		if err == nil {
			tpl = t
			break
		}
		lastErr = err
	}
	if tpl == nil {
		if n.ignoreMissing {
			return nil
		}
		return lastErr
	}

	var pub Context
	if n.withContext {
		pub = ctx.Public
	}
	out, err := tpl.executeWithScope(pub, env, mergeVisibleVars(ctx), n.withContext)
	if err != nil {
		return err
	}
	w.WriteString(out)
	return nil
}

// mergeVisibleVars flattens every active scope frame (outermost first,
// so innermost wins) into one map, the variable set `with context`
// include/import passes to the target template.
func mergeVisibleVars(ctx *RenderContext) map[string]*Value {
	out := map[string]*Value{}
	for _, f := range ctx.frames {
		for k, v := range f.vars {
			out[k] = v
		}
	}
	return out
}

func init() {
	RegisterTag("include", parseInclude)
}

func parseInclude(p *Parser, startTok *Token) (Renderer, error) {
	names, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	node := &includeNode{names: names, withContext: true, tok: startTok}
	if p.PeekKeyword("ignore") {
		p.Consume()
		if _, err := p.ExpectKeyword("missing"); err != nil {
			return nil, err
		}
		node.ignoreMissing = true
	}
	if p.PeekKeyword("without") {
		p.Consume()
		if _, err := p.ExpectKeyword("context"); err != nil {
			return nil, err
		}
		node.withContext = false
	} else if p.PeekKeyword("with") {
		p.Consume()
		if _, err := p.ExpectKeyword("context"); err != nil {
			return nil, err
		}
		node.withContext = true
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return node, nil
}
