package gojinja2

// FilterFunction implements one Jinja2 filter. args/kwargs are the
// filter's own call arguments (empty when the filter was used without
// parens, e.g. `x|upper`); ctx gives access to autoescape mode and the
// Environment for filters that need them (e.g. `tojson`).
type FilterFunction func(ctx *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error)

var filterRegistry = map[string]FilterFunction{}

// RegisterFilter adds a filter to the engine-wide registry. Spec.md §9
// notes this registry is intentionally global and mutable, mirroring
// the teacher's filters.go RegisterFilter/ReplaceFilter.
func RegisterFilter(name string, fn FilterFunction) {
	filterRegistry[name] = fn
}

func arg(args []*Value, i int, def *Value) *Value {
	if i < len(args) {
		return args[i]
	}
	return def
}

func kwarg(kwargs map[string]*Value, name string, def *Value) *Value {
	if v, ok := kwargs[name]; ok {
		return v
	}
	return def
}
