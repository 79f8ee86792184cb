package gojinja2

import "strings"

// blockNode is one {% block name %}...{% endblock %} definition. A
// Template may hold several; an extends chain layers same-named
// definitions from several templates, resolved at render time by
// renderBlockDef (inheritance.go).
type blockNode struct {
	name   string
	body   *renderList
	scoped bool
}

func (n *blockNode) Render(ctx *RenderContext, w *strings.Builder) error {
	defs := ctx.blockDefs[n.name]
	if len(defs) == 0 {
		defs = []*blockNode{n}
	}
	return renderBlockDef(ctx, defs, len(defs)-1, w)
}

func init() {
	RegisterTag("block", parseBlock)
}

func parseBlock(p *Parser, _ *Token) (Renderer, error) {
	nameTok, err := p.ExpectIdentifier()
	if err != nil {
		return nil, err
	}
	scoped := false
	if p.PeekKeyword("scoped") {
		p.Consume()
		scoped = true
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	body, _, err := p.ParseUntil("endblock")
	if err != nil {
		return nil, err
	}
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	node := &blockNode{name: nameTok.Val, body: body, scoped: scoped}
	if p.collectBlocks != nil {
		p.collectBlocks(node)
	}
	return node, nil
}
