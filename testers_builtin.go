package gojinja2

import "strings"

// init registers the minimum tester catalog required by spec.md §4.5.
func init() {
	RegisterTester("boolean", func(v *Value, _ []*Value) (bool, error) { return v.IsBool(), nil })
	RegisterTester("defined", func(v *Value, _ []*Value) (bool, error) { return !v.IsEmpty(), nil })
	RegisterTester("undefined", func(v *Value, _ []*Value) (bool, error) { return v.IsEmpty(), nil })
	RegisterTester("none", func(v *Value, _ []*Value) (bool, error) { return v.IsEmpty(), nil })
	RegisterTester("float", func(v *Value, _ []*Value) (bool, error) { return v.IsFloat(), nil })
	RegisterTester("integer", func(v *Value, _ []*Value) (bool, error) { return v.IsInt(), nil })
	RegisterTester("number", func(v *Value, _ []*Value) (bool, error) { return v.IsNumber(), nil })
	RegisterTester("string", func(v *Value, _ []*Value) (bool, error) { return v.IsString(), nil })
	RegisterTester("mapping", func(v *Value, _ []*Value) (bool, error) { return v.IsMap(), nil })
	RegisterTester("sequence", func(v *Value, _ []*Value) (bool, error) {
		return v.IsList() || v.IsString() || v.IsMap(), nil
	})
	RegisterTester("iterable", func(v *Value, _ []*Value) (bool, error) {
		return v.IsList() || v.IsMap() || v.IsString(), nil
	})
	RegisterTester("true", func(v *Value, _ []*Value) (bool, error) { return v.IsBool() && v.Bool(), nil })
	RegisterTester("false", func(v *Value, _ []*Value) (bool, error) { return v.IsBool() && !v.Bool(), nil })

	RegisterTester("even", func(v *Value, _ []*Value) (bool, error) { return v.Integer()%2 == 0, nil })
	RegisterTester("odd", func(v *Value, _ []*Value) (bool, error) { return v.Integer()%2 != 0, nil })

	RegisterTester("divisibleby", func(v *Value, args []*Value) (bool, error) {
		if len(args) < 1 || args[0].Integer() == 0 {
			return false, nil
		}
		return v.Integer()%args[0].Integer() == 0, nil
	})

	eqFn := func(v *Value, args []*Value) (bool, error) {
		if len(args) < 1 {
			return false, nil
		}
		return v.Equal(args[0]), nil
	}
	RegisterTester("eq", eqFn)
	RegisterTester("equalto", eqFn)
	RegisterTester("==", eqFn)

	neFn := func(v *Value, args []*Value) (bool, error) {
		if len(args) < 1 {
			return true, nil
		}
		return !v.Equal(args[0]), nil
	}
	RegisterTester("ne", neFn)

	cmpFn := func(want int, orEqual bool) TesterFunction {
		return func(v *Value, args []*Value) (bool, error) {
			if len(args) < 1 {
				return false, nil
			}
			c, ok := v.Compare(args[0])
			if !ok {
				return false, nil
			}
			if orEqual && c == 0 {
				return true, nil
			}
			if want < 0 {
				return c < 0, nil
			}
			return c > 0, nil
		}
	}
	RegisterTester("lessthan", cmpFn(-1, false))
	RegisterTester("lt", cmpFn(-1, false))
	RegisterTester("le", cmpFn(-1, true))
	RegisterTester("greaterthan", cmpFn(1, false))
	RegisterTester("gt", cmpFn(1, false))
	RegisterTester("ge", cmpFn(1, true))

	RegisterTester("in", func(v *Value, args []*Value) (bool, error) {
		if len(args) < 1 {
			return false, nil
		}
		return args[0].Contains(v), nil
	})

	RegisterTester("lower", func(v *Value, _ []*Value) (bool, error) {
		s := v.String()
		return s == strings.ToLower(s), nil
	})
	RegisterTester("upper", func(v *Value, _ []*Value) (bool, error) {
		s := v.String()
		return s == strings.ToUpper(s), nil
	})

	RegisterTester("sameas", func(v *Value, args []*Value) (bool, error) {
		if len(args) < 1 {
			return false, nil
		}
		return v == args[0], nil
	})

	RegisterTester("callable", func(v *Value, _ []*Value) (bool, error) { return v.IsCallable(), nil })
}
