package gojinja2

import "strings"

type filterStep struct {
	name   string
	args   []Expression
	kwargs map[string]Expression
}

type filterBlockNode struct {
	chain []filterStep
	body  *renderList
	tok   *Token
}

func (n *filterBlockNode) Render(ctx *RenderContext, w *strings.Builder) error {
	var sub strings.Builder
	if err := n.body.Render(ctx, &sub); err != nil {
		return err
	}
	v := stringValue(sub.String())
	for _, step := range n.chain {
		fn, ok := filterRegistry[step.name]
		if !ok {
			return newError(ErrUnexpectedException, "", 0, 0, "filter", "unknown filter "+step.name).withToken(n.tok)
		}
		args := make([]*Value, len(step.args))
		for i, a := range step.args {
			av, err := a.Evaluate(ctx)
			if err != nil {
				return err
			}
			args[i] = av
		}
		kwargs := map[string]*Value{}
		for k, a := range step.kwargs {
			av, err := a.Evaluate(ctx)
			if err != nil {
				return err
			}
			kwargs[k] = av
		}
		var err error
		v, err = fn(ctx, v, args, kwargs)
		if err != nil {
			return err
		}
	}
	s := v.String()
	if ctx.Autoescape() && !v.IsSafe() {
		s = htmlEscape(s)
	}
	w.WriteString(s)
	return nil
}

func init() {
	RegisterTag("filter", parseFilterBlock)
}

func parseFilterBlock(p *Parser, startTok *Token) (Renderer, error) {
	node := &filterBlockNode{tok: startTok}
	for {
		nameTok, err := p.ExpectIdentifier()
		if err != nil {
			return nil, err
		}
		step := filterStep{name: nameTok.Val}
		if p.MatchSymbol("(") {
			args, kwargs, err := p.parseMixedCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.ExpectSymbol(")"); err != nil {
				return nil, err
			}
			step.args, step.kwargs = args, kwargs
		}
		node.chain = append(node.chain, step)
		if !p.MatchSymbol("|") {
			break
		}
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, _, err := p.ParseUntil("endfilter")
	if err != nil {
		return nil, err
	}
	node.body = body
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
