package gojinja2

import "strings"

type withAssign struct {
	name string
	expr Expression
}

type withNode struct {
	assigns []withAssign
	body    *renderList
}

func (n *withNode) Render(ctx *RenderContext, w *strings.Builder) error {
	ctx.push()
	defer ctx.pop()
	for _, a := range n.assigns {
		v, err := a.expr.Evaluate(ctx)
		if err != nil {
			return err
		}
		ctx.Set(a.name, v)
	}
	return n.body.Render(ctx, w)
}

func init() {
	RegisterTag("with", parseWith)
}

func parseWith(p *Parser, _ *Token) (Renderer, error) {
	node := &withNode{}
	for !p.PeekSymbol("%}") {
		nameTok, err := p.ExpectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.ExpectSymbol("="); err != nil {
			return nil, err
		}
		expr, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		node.assigns = append(node.assigns, withAssign{name: nameTok.Val, expr: expr})
		if !p.MatchSymbol(",") {
			break
		}
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, _, err := p.ParseUntil("endwith")
	if err != nil {
		return nil, err
	}
	node.body = body
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
