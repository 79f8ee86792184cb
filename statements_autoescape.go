package gojinja2

import "strings"

type autoescapeNode struct {
	value Expression
	body  *renderList
}

func (n *autoescapeNode) Render(ctx *RenderContext, w *strings.Builder) error {
	v, err := n.value.Evaluate(ctx)
	if err != nil {
		return err
	}
	return ctx.WithAutoescape(v.IsTrue(), func() error {
		return n.body.Render(ctx, w)
	})
}

func init() {
	RegisterTag("autoescape", parseAutoescape)
}

func parseAutoescape(p *Parser, _ *Token) (Renderer, error) {
	node := &autoescapeNode{}
	tok := p.Current()
	switch {
	case tok != nil && tok.Typ == TokenIdentifier && tok.Val == "on":
		p.Consume()
		node.value = &literalExpr{v: boolValue(true)}
	case tok != nil && tok.Typ == TokenIdentifier && tok.Val == "off":
		p.Consume()
		node.value = &literalExpr{v: boolValue(false)}
	default:
		expr, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		node.value = expr
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, _, err := p.ParseUntil("endautoescape")
	if err != nil {
		return nil, err
	}
	node.body = body
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
