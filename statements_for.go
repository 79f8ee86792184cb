package gojinja2

import "strings"

type forNode struct {
	varNames  []string
	seq       Expression
	filter    Expression // loop-level "if" filter, nil if absent
	recursive bool
	body      *renderList
	elseBody  *renderList
	tok       *Token
}

func (n *forNode) Render(ctx *RenderContext, w *strings.Builder) error {
	seqVal, err := n.seq.Evaluate(ctx)
	if err != nil {
		return err
	}
	items, err := n.filteredItems(ctx, seqVal)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if n.elseBody != nil {
			return n.elseBody.Render(ctx, w)
		}
		return nil
	}
	return n.renderItems(ctx, w, items, nil)
}

func (n *forNode) filteredItems(ctx *RenderContext, seqVal *Value) ([]*Value, error) {
	all := CollectList(seqVal)
	if n.filter == nil {
		return all, nil
	}
	var out []*Value
	for _, item := range all {
		ctx.push()
		if err := n.bindVars(ctx, item); err != nil {
			ctx.pop()
			return nil, err
		}
		v, err := n.filter.Evaluate(ctx)
		ctx.pop()
		if err != nil {
			return nil, err
		}
		if v.IsTrue() {
			out = append(out, item)
		}
	}
	return out, nil
}

// bindVars binds item into the loop variables, unpacking it when more
// than one variable is declared ("for a, b in pairs"). An element with
// fewer parts than declared variables is a render error, not a silent
// Empty-fill.
func (n *forNode) bindVars(ctx *RenderContext, item *Value) error {
	if len(n.varNames) <= 1 {
		name := "_"
		if len(n.varNames) == 1 {
			name = n.varNames[0]
		}
		ctx.Set(name, item)
		return nil
	}
	parts := CollectList(item)
	if len(parts) < len(n.varNames) {
		return newError(ErrForUnpackMismatch, "", 0, 0, "for", len(n.varNames), len(parts)).withToken(n.tok)
	}
	for i, name := range n.varNames {
		ctx.Set(name, parts[i])
	}
	return nil
}

func (n *forNode) renderItems(ctx *RenderContext, w *strings.Builder, items []*Value, parentLoop *Value) error {
	ctx.loopDepth++
	defer func() { ctx.loopDepth-- }()

	cycleIdx := 0
	for i, item := range items {
		ctx.push()
		if err := n.bindVars(ctx, item); err != nil {
			ctx.pop()
			return err
		}

		loopMap := n.buildLoopVar(ctx, i, len(items), parentLoop, &cycleIdx)
		if n.recursive {
			loopMap.MapProvider().Set("__call__", &Value{kind: KindCallable, call: &Callable{
				Kind: CallableSpecial,
				Special: func(innerCtx *RenderContext, args *CallArgs) (*Value, error) {
					var children []*Value
					if len(args.Positional) > 0 {
						children = CollectList(args.Positional[0])
					}
					var sub strings.Builder
					if err := n.renderItems(innerCtx, &sub, children, loopMap); err != nil {
						return nil, err
					}
					return AsSafeValue(sub.String()), nil
				},
			}})
		}
		ctx.Set("loop", loopMap)

		err := n.body.Render(ctx, w)
		ctx.pop()
		if err == errLoopBreak {
			return nil
		}
		if err == errLoopContinue {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *forNode) buildLoopVar(ctx *RenderContext, i, total int, parentLoop *Value, cycleIdx *int) *Value {
	keys := []string{"index", "index0", "revindex", "revindex0", "first", "last", "length", "depth", "depth0", "parentloop", "cycle"}
	values := map[string]*Value{
		"index":      intValue(int64(i + 1)),
		"index0":     intValue(int64(i)),
		"revindex":   intValue(int64(total - i)),
		"revindex0":  intValue(int64(total - i - 1)),
		"first":      boolValue(i == 0),
		"last":       boolValue(i == total-1),
		"length":     intValue(int64(total)),
		"depth":      intValue(int64(ctx.loopDepth)),
		"depth0":     intValue(int64(ctx.loopDepth - 1)),
		"parentloop": parentLoop,
	}
	if values["parentloop"] == nil {
		values["parentloop"] = Empty
	}
	values["cycle"] = &Value{kind: KindCallable, call: &Callable{
		Kind: CallableSpecial,
		Special: func(_ *RenderContext, args *CallArgs) (*Value, error) {
			if len(args.Positional) == 0 {
				return Empty, nil
			}
			v := args.Positional[*cycleIdx%len(args.Positional)]
			*cycleIdx++
			return v, nil
		},
	}}
	return MapOf(keys, values)
}

func init() {
	RegisterTag("for", parseFor)
}

func parseFor(p *Parser, startTok *Token) (Renderer, error) {
	node := &forNode{tok: startTok}
	first, err := p.ExpectIdentifier()
	if err != nil {
		return nil, err
	}
	node.varNames = []string{first.Val}
	for p.MatchSymbol(",") {
		id, err := p.ExpectIdentifier()
		if err != nil {
			return nil, err
		}
		node.varNames = append(node.varNames, id.Val)
	}

	if _, err := p.ExpectKeyword("in"); err != nil {
		return nil, err
	}
	seq, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	node.seq = seq

	if p.PeekKeyword("if") {
		p.Consume()
		filter, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		node.filter = filter
	}
	if p.PeekKeyword("recursive") {
		p.Consume()
		node.recursive = true
	}
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}

	body, end, err := p.ParseUntil("else", "endfor")
	if err != nil {
		return nil, err
	}
	node.body = body
	if end == "else" {
		if _, err := p.ExpectSymbol("%}"); err != nil {
			return nil, err
		}
		eb, _, err := p.ParseUntil("endfor")
		if err != nil {
			return nil, err
		}
		node.elseBody = eb
	}
	if _, err := p.skipToBlockEnd(); err != nil {
		return nil, err
	}
	return node, nil
}
