package gojinja2

import "strings"

// metaNode carries a {% meta %}...{% endmeta %} payload: parsed once
// at compile time into a Go value and attached to the owning Template
// via Template.metadata, never rendered into the output.
type metaNode struct {
	raw string
}

func (n *metaNode) Render(*RenderContext, *strings.Builder) error { return nil }

func init() {
	RegisterTag("meta", parseMeta)
}

func parseMeta(p *Parser, startTok *Token) (Renderer, error) {
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	var raw strings.Builder
	for {
		tok := p.Current()
		if tok == nil {
			return nil, p.errorf(ErrExpectedToken, "endmeta", "<eof>")
		}
		if tok.Typ == TokenHTML {
			raw.WriteString(tok.Val)
			p.Consume()
			continue
		}
		if tok.Typ == TokenSymbol && tok.Val == "{%" && p.PeekN(1) != nil && p.PeekN(1).Val == "endmeta" {
			p.Consume()
			p.Consume()
			break
		}
		return nil, newError(ErrInvalidMetadata, p.name, tok.Line, tok.Col, "meta", "meta block must contain only raw JSON text").withToken(tok)
	}
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	node := &metaNode{raw: raw.String()}
	if p.collectMeta != nil {
		p.collectMeta(node.raw)
	}
	return node, nil
}
