package gojinja2

// CallableKind discriminates the four callable shapes named in
// spec.md §3: plain Go functions registered as globals, engine
// "special" functions needing access to the render context, compiled
// macros, and arbitrary user-supplied Go funcs passed in through a
// Context.
type CallableKind int

const (
	CallableGlobal CallableKind = iota
	CallableSpecial
	CallableMacro
	CallableUser
)

// CallArgs is the bound argument set handed to a Callable at call time:
// positional arguments already matched to named parameters where
// possible, with *args/**kwargs overflow collected separately.
type CallArgs struct {
	Positional []*Value
	Kwargs     map[string]*Value
}

// ParamSpec describes one formal parameter of a UserCallable (a macro,
// or a registered global with named/defaulted parameters), per
// spec.md §3 "Callable ... argument schema".
type ParamSpec struct {
	Name      string
	Mandatory bool
	Default   Expression // nil if Mandatory, evaluated fresh each call otherwise
}

// SpecialFunc receives the live render context, used by builtins like
// `range`/`dict` that need no context and plain Go funcs that do (e.g.
// a `super()` closure bound per-block).
type SpecialFunc func(ctx *RenderContext, args *CallArgs) (*Value, error)

// Callable is the Value payload for KindCallable.
type Callable struct {
	Kind CallableKind

	// Fn backs CallableUser: a plain Go func bridged in via AsValue.
	Fn func(...*Value) (*Value, error)

	// Special backs CallableGlobal/CallableSpecial.
	Special SpecialFunc

	// Params and Body back CallableMacro: a compiled macro's formal
	// parameters and its rendered body.
	Params []ParamSpec
	Body   Renderer
	// Closure is the macro's defining scope, captured at {% macro %}
	// time so the body can see module-level state even when called from
	// elsewhere (an imported macro, for instance).
	Closure *RenderContext
	// SupportsCaller is set true on every macro compiled from
	// {% macro %}; nothing in the package reads it.
	SupportsCaller bool
}

// Call invokes the callable uniformly across its four kinds.
func (c *Callable) Call(ctx *RenderContext, args *CallArgs) (*Value, error) {
	switch c.Kind {
	case CallableUser:
		v, err := c.Fn(args.Positional...)
		if err != nil {
			return nil, err
		}
		return v, nil
	case CallableGlobal, CallableSpecial:
		return c.Special(ctx, args)
	case CallableMacro:
		return callMacro(ctx, c, args)
	}
	return Empty, nil
}

// BindParams matches CallArgs against a ParamSpec list using Jinja2's
// keyword-first-then-positional rule: every kwarg fills its named slot
// directly, remaining positionals fill unfilled slots left-to-right,
// any still-unfilled mandatory parameter is an error, and any
// still-unfilled optional parameter evaluates its Default. Surplus
// positional/keyword arguments land in "varargs"/"kwargs" if present
// among params, else produce an error.
func BindParams(ctx *RenderContext, params []ParamSpec, args *CallArgs) (map[string]*Value, error) {
	bound := make(map[string]*Value, len(params))
	filled := make(map[string]bool, len(params))
	hasVarargs, hasKwargs := false, false
	for _, p := range params {
		if p.Name == "varargs" {
			hasVarargs = true
		}
		if p.Name == "kwargs" {
			hasKwargs = true
		}
	}

	for name, v := range args.Kwargs {
		found := false
		for _, p := range params {
			if p.Name == name {
				bound[name] = v
				filled[name] = true
				found = true
				break
			}
		}
		if !found && !hasKwargs {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "call", "unexpected keyword argument "+name)
		}
	}

	extraPositional := []*Value{}
	posIdx := 0
	for _, p := range params {
		if p.Name == "varargs" || p.Name == "kwargs" {
			continue
		}
		if filled[p.Name] {
			continue
		}
		if posIdx < len(args.Positional) {
			bound[p.Name] = args.Positional[posIdx]
			filled[p.Name] = true
			posIdx++
			continue
		}
		if p.Mandatory {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "call", "missing required argument "+p.Name)
		}
		if p.Default != nil {
			dv, err := p.Default.Evaluate(ctx)
			if err != nil {
				return nil, err
			}
			bound[p.Name] = dv
		} else {
			bound[p.Name] = Empty
		}
	}
	if posIdx < len(args.Positional) {
		extraPositional = append(extraPositional, args.Positional[posIdx:]...)
	}

	if len(extraPositional) > 0 {
		if !hasVarargs {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "call", "too many positional arguments")
		}
		bound["varargs"] = ListOf(extraPositional...)
	} else if hasVarargs {
		bound["varargs"] = ListOf()
	}

	if hasKwargs {
		kw := map[string]*Value{}
		keys := []string{}
		for k, v := range args.Kwargs {
			isNamed := false
			for _, p := range params {
				if p.Name == k {
					isNamed = true
					break
				}
			}
			if !isNamed {
				kw[k] = v
				keys = append(keys, k)
			}
		}
		bound["kwargs"] = MapOf(keys, kw)
	}

	return bound, nil
}
