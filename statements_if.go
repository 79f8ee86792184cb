package gojinja2

import "strings"

type ifBranch struct {
	cond Expression
	body *renderList
}

type ifNode struct {
	branches []ifBranch
	elseBody *renderList
}

func (n *ifNode) Render(ctx *RenderContext, w *strings.Builder) error {
	for _, b := range n.branches {
		v, err := b.cond.Evaluate(ctx)
		if err != nil {
			return err
		}
		if v.IsTrue() {
			return b.body.Render(ctx, w)
		}
	}
	if n.elseBody != nil {
		return n.elseBody.Render(ctx, w)
	}
	return nil
}

func init() {
	RegisterTag("if", parseIf)
}

func parseIf(p *Parser, _ *Token) (Renderer, error) {
	node := &ifNode{}
	cond, err := p.parseFullExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, end, err := p.ParseUntil("elif", "else", "endif")
	if err != nil {
		return nil, err
	}
	node.branches = append(node.branches, ifBranch{cond: cond, body: body})

	for end == "elif" {
		c, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.ExpectSymbol("%}"); err != nil {
			return nil, err
		}
		b, nextEnd, err := p.ParseUntil("elif", "else", "endif")
		if err != nil {
			return nil, err
		}
		node.branches = append(node.branches, ifBranch{cond: c, body: b})
		end = nextEnd
	}

	if end == "else" {
		if _, err := p.ExpectSymbol("%}"); err != nil {
			return nil, err
		}
		b, _, err := p.ParseUntil("endif")
		if err != nil {
			return nil, err
		}
		node.elseBody = b
	}

	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
