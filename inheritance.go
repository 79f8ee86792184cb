package gojinja2

import "strings"

// renderBlockDef renders defs[idx] (one {% block %} definition among
// every override of that name across the active extends chain),
// exposing super() bound to defs[idx-1] when a less-derived definition
// exists. This is the core of block inheritance resolution, per
// spec.md §4.4.
func renderBlockDef(ctx *RenderContext, defs []*blockNode, idx int, w *strings.Builder) error {
	def := defs[idx]
	ctx.push()
	defer ctx.pop()
	if idx > 0 {
		prevIdx := idx - 1
		ctx.Set("super", &Value{kind: KindCallable, call: &Callable{
			Kind: CallableSpecial,
			Special: func(innerCtx *RenderContext, _ *CallArgs) (*Value, error) {
				var sub strings.Builder
				if err := renderBlockDef(innerCtx, defs, prevIdx, &sub); err != nil {
					return nil, err
				}
				return AsSafeValue(sub.String()), nil
			},
		}})
	}
	return def.body.Render(ctx, w)
}
