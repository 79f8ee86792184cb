package gojinja2

import "github.com/google/uuid"

// registerBuiltinGlobals installs the small set of global functions
// every Environment exposes to templates, mirroring the teacher's
// builtinFilters-adjacent global namespace (pongo2 ships no globals of
// its own; these are drawn from Jinja2's actual builtin global set).
func registerBuiltinGlobals(env *Environment) {
	env.Globals["range"] = &Value{kind: KindCallable, call: &Callable{
		Kind: CallableGlobal,
		Special: func(_ *RenderContext, args *CallArgs) (*Value, error) {
			return rangeValue(args.Positional)
		},
	}}

	env.Globals["dict"] = &Value{kind: KindCallable, call: &Callable{
		Kind: CallableGlobal,
		Special: func(_ *RenderContext, args *CallArgs) (*Value, error) {
			keys := make([]string, 0, len(args.Kwargs))
			values := make(map[string]*Value, len(args.Kwargs))
			for k, v := range args.Kwargs {
				keys = append(keys, k)
				values[k] = v
			}
			return MapOf(keys, values), nil
		},
	}}

	env.Globals["uuid4"] = &Value{kind: KindCallable, call: &Callable{
		Kind: CallableGlobal,
		Special: func(_ *RenderContext, _ *CallArgs) (*Value, error) {
			return stringValue(uuid.New().String()), nil
		},
	}}
}

func rangeValue(args []*Value) (*Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 0:
		return nil, newError(ErrInvalidValueType, "", 0, 0, "range", "range() requires at least one argument")
	case 1:
		stop = args[0].Integer()
	case 2:
		start, stop = args[0].Integer(), args[1].Integer()
	default:
		start, stop, step = args[0].Integer(), args[1].Integer(), args[2].Integer()
	}
	if step == 0 {
		return nil, newError(ErrInvalidValueType, "", 0, 0, "range", "range() step argument must not be zero")
	}
	var out []*Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, intValue(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, intValue(i))
		}
	}
	return ListOf(out...), nil
}
