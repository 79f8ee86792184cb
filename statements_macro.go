package gojinja2

import "strings"

type macroNode struct {
	name   string
	params []ParamSpec
	body   *renderList
}

func (n *macroNode) Render(ctx *RenderContext, _ *strings.Builder) error {
	callable := &Callable{
		Kind:           CallableMacro,
		Params:         n.params,
		Body:           n.body,
		Closure:        ctx,
		SupportsCaller: true,
	}
	ctx.Set(n.name, &Value{kind: KindCallable, call: callable})
	return nil
}

// callMacro executes a compiled macro: bound arguments populate a
// fresh scope frame layered on top of the macro's defining scope
// (Closure), so the body sees both its own parameters and whatever
// module-level state existed when the macro was declared.
func callMacro(ctx *RenderContext, c *Callable, args *CallArgs) (*Value, error) {
	bound, err := BindParams(ctx, c.Params, args)
	if err != nil {
		return nil, err
	}
	macroCtx := &RenderContext{
		Public:     ctx.Public,
		template:   c.Closure.template,
		env:        c.Closure.env,
		autoescape: ctx.autoescape,
		frames:     append([]*scopeFrame{}, c.Closure.frames...),
	}
	macroCtx.push()
	for k, v := range bound {
		macroCtx.Set(k, v)
	}
	var sub strings.Builder
	if err := c.Body.Render(macroCtx, &sub); err != nil {
		return nil, err
	}
	return AsSafeValue(sub.String()), nil
}

func init() {
	RegisterTag("macro", parseMacro)
}

func parseMacro(p *Parser, _ *Token) (Renderer, error) {
	nameTok, err := p.ExpectIdentifier()
	if err != nil {
		return nil, err
	}
	node := &macroNode{name: nameTok.Val}
	if _, err := p.ExpectSymbol("("); err != nil {
		return nil, err
	}
	for !p.PeekSymbol(")") {
		pnameTok, err := p.ExpectIdentifier()
		if err != nil {
			return nil, err
		}
		spec := ParamSpec{Name: pnameTok.Val, Mandatory: true}
		if p.MatchSymbol("=") {
			def, err := p.parseFullExpression()
			if err != nil {
				return nil, err
			}
			spec.Mandatory = false
			spec.Default = def
		}
		node.params = append(node.params, spec)
		if !p.MatchSymbol(",") {
			break
		}
	}
	if _, err := p.ExpectSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	// Every macro implicitly exposes varargs/kwargs/caller to its body,
	// matching Jinja2's macro calling convention.
	node.params = append(node.params,
		ParamSpec{Name: "varargs"},
		ParamSpec{Name: "kwargs"},
		ParamSpec{Name: "caller"},
	)
	body, _, err := p.ParseUntil("endmacro")
	if err != nil {
		return nil, err
	}
	node.body = body
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
