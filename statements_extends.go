package gojinja2

import "strings"

type extendsNode struct{}

func (n *extendsNode) Render(*RenderContext, *strings.Builder) error { return nil }

func init() {
	RegisterTag("extends", parseExtends)
}

func parseExtends(p *Parser, startTok *Token) (Renderer, error) {
	if p.extendsParent != "" {
		return nil, newError(ErrUnexpectedStatement, p.name, startTok.Line, startTok.Col, "extends", "a template may only extend one parent").withToken(startTok)
	}
	strTok := p.MatchType(TokenString)
	if strTok == nil {
		return nil, p.errorf(ErrExpectedToken, "string literal", p.describeCurrent()).withToken(startTok)
	}
	p.extendsParent = strTok.Val
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return &extendsNode{}, nil
}
