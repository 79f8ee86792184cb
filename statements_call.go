package gojinja2

import "strings"

type callNode struct {
	target       *callExpr
	callerParams []ParamSpec
	body         *renderList
	tok          *Token
}

func (n *callNode) Render(ctx *RenderContext, w *strings.Builder) error {
	calleeV, err := n.target.callee.Evaluate(ctx)
	if err != nil {
		return err
	}
	if !calleeV.IsCallable() {
		return newError(ErrUnexpectedException, "", 0, 0, "call", "call target is not callable").withToken(n.tok)
	}
	args := make([]*Value, len(n.target.args))
	for i, a := range n.target.args {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return err
		}
		args[i] = v
	}
	kwargs := map[string]*Value{}
	for k, a := range n.target.kwargs {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return err
		}
		kwargs[k] = v
	}
	kwargs["caller"] = &Value{kind: KindCallable, call: &Callable{
		Kind:    CallableMacro,
		Params:  n.callerParams,
		Body:    n.body,
		Closure: ctx,
	}}

	result, err := calleeV.Callable().Call(ctx, &CallArgs{Positional: args, Kwargs: kwargs})
	if err != nil {
		return err
	}
	s := result.String()
	if ctx.Autoescape() && !result.IsSafe() {
		s = htmlEscape(s)
	}
	w.WriteString(s)
	return nil
}

func init() {
	RegisterTag("call", parseCall)
}

func parseCall(p *Parser, startTok *Token) (Renderer, error) {
	node := &callNode{tok: startTok}

	if p.PeekSymbol("(") {
		p.Consume()
		for !p.PeekSymbol(")") {
			nameTok, err := p.ExpectIdentifier()
			if err != nil {
				return nil, err
			}
			spec := ParamSpec{Name: nameTok.Val, Mandatory: true}
			if p.MatchSymbol("=") {
				def, err := p.parseFullExpression()
				if err != nil {
					return nil, err
				}
				spec.Mandatory = false
				spec.Default = def
			}
			node.callerParams = append(node.callerParams, spec)
			if !p.MatchSymbol(",") {
				break
			}
		}
		if _, err := p.ExpectSymbol(")"); err != nil {
			return nil, err
		}
	}

	target, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	ce, ok := target.(*callExpr)
	if !ok {
		return nil, newError(ErrExpectedExpression, "", 0, 0, "call", "expected a macro call").withToken(startTok)
	}
	node.target = ce

	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, _, err := p.ParseUntil("endcall")
	if err != nil {
		return nil, err
	}
	node.body = body
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
