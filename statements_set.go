package gojinja2

import "strings"

type setNode struct {
	name string
	expr Expression  // inline form
	body *renderList // block form
}

func (n *setNode) Render(ctx *RenderContext, w *strings.Builder) error {
	var v *Value
	if n.body != nil {
		var sub strings.Builder
		if err := n.body.Render(ctx, &sub); err != nil {
			return err
		}
		v = stringValue(sub.String())
	} else {
		var err error
		v, err = n.expr.Evaluate(ctx)
		if err != nil {
			return err
		}
	}
	ctx.Set(n.name, v)
	return nil
}

func init() {
	RegisterTag("set", parseSet)
}

func parseSet(p *Parser, _ *Token) (Renderer, error) {
	nameTok, err := p.ExpectIdentifier()
	if err != nil {
		return nil, err
	}
	node := &setNode{name: nameTok.Val}

	if p.MatchSymbol("=") {
		expr, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		node.expr = expr
		if _, err := p.ExpectSymbol("%}"); err != nil {
			return nil, err
		}
		return node, nil
	}

	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, _, err := p.ParseUntil("endset")
	if err != nil {
		return nil, err
	}
	node.body = body
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
