package gojinja2

import "strings"

// Renderer is satisfied by every statement and text node in a compiled
// template's tree: raw HTML, an {{ expression }} output, and every
// {% tag %} implementation.
type Renderer interface {
	Render(ctx *RenderContext, w *strings.Builder) error
}

// Expression is satisfied by every node of a parsed expression tree:
// literals, identifiers, binary/unary operators, filter chains,
// function/macro calls, subscripts, and attribute access.
type Expression interface {
	Evaluate(ctx *RenderContext) (*Value, error)
}

// renderList is a flat sequence of Renderers, the body of a template,
// a block, a for-loop, an if-branch, and so on.
type renderList struct {
	items []Renderer
}

func (r *renderList) Render(ctx *RenderContext, w *strings.Builder) error {
	for _, item := range r.items {
		if err := item.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// rawText is literal template source copied verbatim to the output.
type rawText struct {
	text string
}

func (r *rawText) Render(_ *RenderContext, w *strings.Builder) error {
	w.WriteString(r.text)
	return nil
}

// outputNode is an `{{ expr }}` node: evaluates expr, stringifies it,
// and HTML-escapes the result unless autoescape is off or the value is
// marked safe.
type outputNode struct {
	expr Expression
	tok  *Token
}

func (n *outputNode) Render(ctx *RenderContext, w *strings.Builder) error {
	v, err := n.expr.Evaluate(ctx)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e.withToken(n.tok)
		}
		return err
	}
	s := v.String()
	if ctx.Autoescape() && !v.IsSafe() {
		s = htmlEscape(s)
	}
	w.WriteString(s)
	return nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&#34;",
		"'", "&#39;",
	)
	return r.Replace(s)
}

// literalExpr wraps an already-known Value as a constant Expression.
type literalExpr struct {
	v *Value
}

func (l *literalExpr) Evaluate(*RenderContext) (*Value, error) { return l.v, nil }

// identExpr resolves a bare identifier against the RenderContext.
type identExpr struct {
	name string
}

func (e *identExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	return ctx.Get(e.name), nil
}
