package gojinja2

import "strings"

// errLoopBreak and errLoopContinue are sentinel control-flow errors
// caught by forNode.renderItems; they never escape to a caller.
var (
	errLoopBreak    = newError(ErrUnknown, "", 0, 0, "break")
	errLoopContinue = newError(ErrUnknown, "", 0, 0, "continue")
)

type breakNode struct{}

func (n *breakNode) Render(*RenderContext, *strings.Builder) error { return errLoopBreak }

type continueNode struct{}

func (n *continueNode) Render(*RenderContext, *strings.Builder) error { return errLoopContinue }

func init() {
	RegisterTag("break", parseBreak)
	RegisterTag("continue", parseContinue)
}

func parseBreak(p *Parser, startTok *Token) (Renderer, error) {
	if p.opts == nil || !p.opts.LoopControlsExtension {
		return nil, newError(ErrExtensionDisabled, p.name, startTok.Line, startTok.Col, "break", "loopcontrols").withToken(startTok)
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return &breakNode{}, nil
}

func parseContinue(p *Parser, startTok *Token) (Renderer, error) {
	if p.opts == nil || !p.opts.LoopControlsExtension {
		return nil, newError(ErrExtensionDisabled, p.name, startTok.Line, startTok.Col, "continue", "loopcontrols").withToken(startTok)
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return &continueNode{}, nil
}
