package gojinja2

import "strings"

type doNode struct {
	expr Expression
	tok  *Token
}

func (n *doNode) Render(ctx *RenderContext, _ *strings.Builder) error {
	_, err := n.expr.Evaluate(ctx)
	return err
}

func init() {
	RegisterTag("do", parseDo)
}

func parseDo(p *Parser, startTok *Token) (Renderer, error) {
	if p.opts == nil || !p.opts.DoExtension {
		return nil, newError(ErrExtensionDisabled, p.name, startTok.Line, startTok.Col, "do", "do").withToken(startTok)
	}
	expr, err := p.parseFullExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return &doNode{expr: expr, tok: startTok}, nil
}
