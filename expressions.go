package gojinja2

import "strings"

// This file holds the Expression node types produced by
// parser_expression.go and their Evaluate implementations.

type orExpr struct{ left, right Expression }

func (e *orExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	l, err := e.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if l.IsTrue() {
		return l, nil
	}
	return e.right.Evaluate(ctx)
}

type andExpr struct{ left, right Expression }

func (e *andExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	l, err := e.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if !l.IsTrue() {
		return l, nil
	}
	return e.right.Evaluate(ctx)
}

type notExpr struct{ operand Expression }

func (e *notExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	v, err := e.operand.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return v.Negate(), nil
}

type compareExpr struct {
	op          string
	left, right Expression
}

func (e *compareExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	l, err := e.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "eq":
		return boolValue(l.Equal(r)), nil
	case "ne":
		return boolValue(!l.Equal(r)), nil
	}
	cmp, ok := l.Compare(r)
	if !ok {
		return boolValue(false), nil
	}
	switch e.op {
	case "lt":
		return boolValue(cmp < 0), nil
	case "le":
		return boolValue(cmp <= 0), nil
	case "gt":
		return boolValue(cmp > 0), nil
	case "ge":
		return boolValue(cmp >= 0), nil
	}
	return boolValue(false), nil
}

type inExpr struct{ left, right Expression }

func (e *inExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	l, err := e.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return boolValue(r.Contains(l)), nil
}

type testerExpr struct {
	name   string
	target Expression
	args   []Expression
	tok    *Token
}

func (e *testerExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	target, err := e.target.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	fn, ok := testerRegistry[e.name]
	if !ok {
		return nil, newError(ErrUnexpectedException, "", 0, 0, "is", "unknown test "+e.name).withToken(e.tok)
	}
	args := make([]*Value, len(e.args))
	for i, a := range e.args {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	ok2, err := fn(target, args)
	if err != nil {
		return nil, err
	}
	return boolValue(ok2), nil
}

type concatExpr struct{ left, right Expression }

func (e *concatExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	l, err := e.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return stringValue(l.String() + r.String()), nil
}

type arithExpr struct {
	op          string
	left, right Expression
}

func (e *arithExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	l, err := e.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if e.op == "+" && (l.IsString() || r.IsString()) && !(l.IsNumber() && r.IsNumber()) {
		return stringValue(l.String() + r.String()), nil
	}
	if e.op == "+" && l.IsList() && r.IsList() {
		return ListOf(append(CollectList(l), CollectList(r)...)...), nil
	}
	if !l.IsNumber() || !r.IsNumber() {
		return nil, newError(ErrInvalidValueType, "", 0, 0, "arith", e.op)
	}
	useFloat := l.IsFloat() || r.IsFloat()
	switch e.op {
	case "+":
		if useFloat {
			return doubleValue(l.Float() + r.Float()), nil
		}
		return intValue(l.Integer() + r.Integer()), nil
	case "-":
		if useFloat {
			return doubleValue(l.Float() - r.Float()), nil
		}
		return intValue(l.Integer() - r.Integer()), nil
	case "*":
		if useFloat {
			return doubleValue(l.Float() * r.Float()), nil
		}
		return intValue(l.Integer() * r.Integer()), nil
	case "/":
		if r.Float() == 0 {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "arith", "division by zero")
		}
		return doubleValue(l.Float() / r.Float()), nil
	case "//":
		if r.Float() == 0 {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "arith", "division by zero")
		}
		q := int64(l.Float() / r.Float())
		if useFloat {
			return doubleValue(float64(q)), nil
		}
		return intValue(q), nil
	case "%":
		if r.Integer() == 0 {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "arith", "modulo by zero")
		}
		return intValue(l.Integer() % r.Integer()), nil
	case "**":
		result := 1.0
		base := l.Float()
		for i := int64(0); i < r.Integer(); i++ {
			result *= base
		}
		if useFloat || r.Integer() < 0 {
			return doubleValue(result), nil
		}
		return intValue(int64(result)), nil
	}
	return Empty, nil
}

type unaryExpr struct {
	op      string
	operand Expression
}

func (e *unaryExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	v, err := e.operand.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if !v.IsNumber() {
		return nil, newError(ErrInvalidValueType, "", 0, 0, "unary", e.op)
	}
	if e.op == "-" {
		if v.IsFloat() {
			return doubleValue(-v.Float()), nil
		}
		return intValue(-v.Integer()), nil
	}
	return v, nil
}

type condExpr struct {
	cond, ifTrue, ifFalse Expression
}

func (e *condExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	c, err := e.cond.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if c.IsTrue() {
		return e.ifTrue.Evaluate(ctx)
	}
	return e.ifFalse.Evaluate(ctx)
}

type filterExpr struct {
	name   string
	input  Expression
	args   []Expression
	kwargs map[string]Expression
	tok    *Token
}

func (e *filterExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	in, err := e.input.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	fn, ok := filterRegistry[e.name]
	if !ok {
		return nil, newError(ErrUnexpectedException, "", 0, 0, "filter", "unknown filter "+e.name).withToken(e.tok)
	}
	args := make([]*Value, len(e.args))
	for i, a := range e.args {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	kwargs := map[string]*Value{}
	for k, a := range e.kwargs {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		kwargs[k] = v
	}
	return fn(ctx, in, args, kwargs)
}

type attrExpr struct {
	target Expression
	name   string
}

func (e *attrExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	t, err := e.target.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return t.Attr(e.name), nil
}

type indexExpr struct {
	target, index Expression
}

func (e *indexExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	t, err := e.target.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := e.index.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return t.Index(idx)
}

type callExpr struct {
	callee Expression
	args   []Expression
	kwargs map[string]Expression
}

func (e *callExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	calleeV, err := e.callee.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if !calleeV.IsCallable() {
		// A Map value can still be invoked if it carries a reserved
		// "__call__" entry, the mechanism loop(...) recursion
		// (statements_for.go) uses to let `loop` double as a variable
		// and a callable without widening the Value kind set.
		if calleeV.IsMap() {
			if hook, ok := calleeV.MapProvider().Get("__call__"); ok && hook.IsCallable() {
				calleeV = hook
			}
		}
		if !calleeV.IsCallable() {
			if attr, ok := e.callee.(*attrExpr); ok {
				return nil, newError(ErrUnexpectedException, "", 0, 0, "call", "'"+attr.name+"' is not callable")
			}
			return nil, newError(ErrUnexpectedException, "", 0, 0, "call", "value is not callable")
		}
	}
	args := make([]*Value, len(e.args))
	for i, a := range e.args {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	kwargs := map[string]*Value{}
	for k, a := range e.kwargs {
		v, err := a.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		kwargs[k] = v
	}
	return calleeV.Callable().Call(ctx, &CallArgs{Positional: args, Kwargs: kwargs})
}

type listExpr struct{ items []Expression }

func (e *listExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	out := make([]*Value, len(e.items))
	for i, item := range e.items {
		v, err := item.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return ListOf(out...), nil
}

type dictExpr struct {
	keys, vals []Expression
}

func (e *dictExpr) Evaluate(ctx *RenderContext) (*Value, error) {
	keys := make([]string, len(e.keys))
	values := make(map[string]*Value, len(e.keys))
	for i := range e.keys {
		k, err := e.keys[i].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		v, err := e.vals[i].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		keys[i] = k.String()
		values[keys[i]] = v
	}
	return MapOf(keys, values), nil
}

// joinPath is a small helper used by import/include tags: it strips a
// leading "/" so an absolute-style name matches the loader-relative
// name, and otherwise returns name unchanged (base is not used;
// relative resolution is left to the loader's Abs).
func joinPath(base, name string) string {
	if strings.HasPrefix(name, "/") {
		return strings.TrimPrefix(name, "/")
	}
	return name
}
