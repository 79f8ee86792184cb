package gojinja2

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of Value variants described in
// spec.md §3. Pattern-matching on Kind (rather than a class hierarchy)
// keeps every evaluator/filter/tester exhaustive and total.
type Kind int

const (
	KindEmpty Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindList
	KindMap
	KindKeyValuePair
	KindCallable
)

// KeyValuePair is produced by Map iteration (spec.md §3).
type KeyValuePair struct {
	Key   string
	Value *Value
}

// Value is a tagged union over the variants in spec.md §3. Construction
// from a host Go type is total: AsValue never produces an "invalid"
// Value, only Empty in the absence of better information.
type Value struct {
	kind Kind

	b bool
	i int64
	f float64
	s string

	list ListProvider
	m    MapProvider
	kv   *KeyValuePair
	call *Callable

	// safe marks a String as exempt from autoescaping (produced by the
	// `safe` filter or a `{% autoescape false %}` region).
	safe bool
}

// Empty is the singleton "undefined" value: equal only to itself,
// falsy, and the result of any failed lookup.
var Empty = &Value{kind: KindEmpty}

func boolValue(b bool) *Value    { return &Value{kind: KindBool, b: b} }
func intValue(i int64) *Value    { return &Value{kind: KindInt, i: i} }
func doubleValue(f float64) *Value { return &Value{kind: KindDouble, f: f} }
func stringValue(s string) *Value { return &Value{kind: KindString, s: s} }

// AsSafeValue wraps a string marked as safe, bypassing autoescape.
func AsSafeValue(s string) *Value {
	return &Value{kind: KindString, s: s, safe: true}
}

// ListOf builds an owned List value from already-constructed elements.
func ListOf(items ...*Value) *Value {
	return &Value{kind: KindList, list: newOwnedList(items)}
}

// MapOf builds an owned Map value, preserving the given key order.
func MapOf(keys []string, values map[string]*Value) *Value {
	return &Value{kind: KindMap, m: newOwnedMap(keys, values)}
}

// ValueFromList and ValueFromMap wrap a custom ListProvider/MapProvider, the
// extension point external data (reflected structs, lazy generators,
// parsed documents from any backend) uses to participate without
// copying, per spec.md §3 "List and Map accessors".
func ValueFromList(p ListProvider) *Value { return &Value{kind: KindList, list: p} }
func ValueFromMap(p MapProvider) *Value   { return &Value{kind: KindMap, m: p} }

// AsValue constructs a Value from an arbitrary Go value using reflection
// where no exact variant match exists. It is total: every input maps to
// some Value, Empty in the worst case (nil, or an unrepresentable kind
// such as a channel or func without the UserCallable shape).
func AsValue(i interface{}) *Value {
	switch v := i.(type) {
	case nil:
		return Empty
	case *Value:
		if v == nil {
			return Empty
		}
		return v
	case Value:
		return &v
	case bool:
		return boolValue(v)
	case string:
		return stringValue(v)
	case int:
		return intValue(int64(v))
	case int8:
		return intValue(int64(v))
	case int16:
		return intValue(int64(v))
	case int32:
		return intValue(int64(v))
	case int64:
		return intValue(v)
	case uint:
		return intValue(int64(v))
	case uint8:
		return intValue(int64(v))
	case uint16:
		return intValue(int64(v))
	case uint32:
		return intValue(int64(v))
	case uint64:
		return intValue(int64(v))
	case float32:
		return doubleValue(float64(v))
	case float64:
		return doubleValue(v)
	case []*Value:
		return ListOf(v...)
	case Context:
		return mapFromContext(v)
	case map[string]interface{}:
		return reflectAdaptMap(v)
	case []interface{}:
		out := make([]*Value, len(v))
		for idx, e := range v {
			out[idx] = AsValue(e)
		}
		return ListOf(out...)
	case func(...*Value) (*Value, error):
		return &Value{kind: KindCallable, call: &Callable{Kind: CallableUser, Fn: v}}
	case *Callable:
		return &Value{kind: KindCallable, call: v}
	case error:
		return stringValue(v.Error())
	}
	return reflectAdapt(i)
}

func mapFromContext(c Context) *Value {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make(map[string]*Value, len(c))
	for k, v := range c {
		values[k] = AsValue(v)
	}
	return MapOf(keys, values)
}

func reflectAdaptMap(m map[string]interface{}) *Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make(map[string]*Value, len(m))
	for k, v := range m {
		values[k] = AsValue(v)
	}
	return MapOf(keys, values)
}

// Kind returns the value's variant tag.
func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsEmpty() bool    { return v == nil || v.kind == KindEmpty }
func (v *Value) IsBool() bool     { return v.kind == KindBool }
func (v *Value) IsInt() bool      { return v.kind == KindInt }
func (v *Value) IsFloat() bool    { return v.kind == KindDouble }
func (v *Value) IsNumber() bool   { return v.kind == KindInt || v.kind == KindDouble }
func (v *Value) IsString() bool   { return v.kind == KindString }
func (v *Value) IsList() bool     { return v.kind == KindList }
func (v *Value) IsMap() bool      { return v.kind == KindMap }
func (v *Value) IsCallable() bool { return v.kind == KindCallable }
func (v *Value) IsSafe() bool     { return v.safe }

// MarkSafe returns a copy of v flagged to bypass autoescaping.
func (v *Value) MarkSafe() *Value {
	if v.kind != KindString {
		return v
	}
	cp := *v
	cp.safe = true
	return &cp
}

// Bool returns the raw boolean payload (zero value if not a Bool).
func (v *Value) Bool() bool { return v.kind == KindBool && v.b }

// Integer returns the value's integer form, converting from Double or
// parsing from String as needed (0 on failure), matching the teacher's
// permissive coercion behavior.
func (v *Value) Integer() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindDouble:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
			if ferr == nil {
				return int64(f)
			}
			return 0
		}
		return n
	}
	return 0
}

// Float returns the value's float64 form.
func (v *Value) Float() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindDouble:
		return v.f
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// String renders the value's stringification per spec.md §4.6:
// Bool->true/false, Empty->"", Int/Double->decimal, String->as-is,
// List/Map->a bracketed pprint form.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	switch v.kind {
	case KindEmpty:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return formatDouble(v.f)
	case KindString:
		return v.s
	case KindList:
		return v.pprintList()
	case KindMap:
		return v.pprintMap()
	case KindKeyValuePair:
		return fmt.Sprintf("(%s, %s)", v.kv.Key, v.kv.Value.String())
	case KindCallable:
		return "<callable>"
	}
	return ""
}

func formatDouble(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (v *Value) pprintList() string {
	var b strings.Builder
	b.WriteByte('[')
	n := 0
	v.Each(func(_ int, item *Value) bool {
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
		n++
		return true
	})
	b.WriteByte(']')
	return b.String()
}

func (v *Value) pprintMap() string {
	var b strings.Builder
	b.WriteByte('{')
	keys := v.m.Keys()
	for idx, k := range keys {
		if idx > 0 {
			b.WriteString(", ")
		}
		val, _ := v.m.Get(k)
		fmt.Fprintf(&b, "%q: ", k)
		if val.IsString() {
			fmt.Fprintf(&b, "%q", val.s)
		} else {
			b.WriteString(val.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}

// IsTrue implements Jinja2 truthiness: Empty is falsy; numbers are
// truthy iff nonzero; strings/lists/maps are truthy iff non-empty;
// bools as-is; callables are always truthy.
func (v *Value) IsTrue() bool {
	switch v.kind {
	case KindEmpty:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindDouble:
		return v.f != 0
	case KindString:
		return len(v.s) > 0
	case KindList:
		return v.Len() > 0
	case KindMap:
		return v.m.Size() > 0
	case KindCallable, KindKeyValuePair:
		return true
	}
	return false
}

// Len returns the element count for List/Map/String, 0 otherwise. For a
// lazy List whose provider cannot report a size, Len forces a full
// single-pass enumeration (the provider's single-pass contract then
// makes the list unusable for further iteration -- callers needing both
// a length and iteration should prefer a restartable provider).
func (v *Value) Len() int {
	switch v.kind {
	case KindString:
		return len([]rune(v.s))
	case KindList:
		if n, ok := v.list.Size(); ok {
			return n
		}
		n := 0
		it := v.list.Enumerate()
		for {
			_, ok := it.Next()
			if !ok {
				break
			}
			n++
		}
		return n
	case KindMap:
		return v.m.Size()
	}
	return 0
}

// Each iterates a List value in order, stopping early if fn returns
// false. No-op for non-List values.
func (v *Value) Each(fn func(idx int, item *Value) bool) {
	if v.kind != KindList {
		return
	}
	it := v.list.Enumerate()
	idx := 0
	for {
		item, ok := it.Next()
		if !ok {
			return
		}
		if !fn(idx, item) {
			return
		}
		idx++
	}
}

// Equal implements the equality semantics of spec.md §3: Empty equals
// only itself; Int/Double mix promotes to Double with epsilon
// tolerance; String/Bool compare directly; List compares element-wise;
// Map compares key sets and per-key values.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind == KindEmpty || other.kind == KindEmpty {
		return v.kind == other.kind
	}
	if v.IsNumber() && other.IsNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.i == other.i
		}
		return math.Abs(v.Float()-other.Float()) < 1e-9
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindList:
		if v.Len() != other.Len() {
			return false
		}
		ok := true
		i1 := v.list.Enumerate()
		i2 := other.list.Enumerate()
		for {
			a, oka := i1.Next()
			b, okb := i2.Next()
			if oka != okb {
				return false
			}
			if !oka {
				break
			}
			if !a.Equal(b) {
				ok = false
				break
			}
		}
		return ok
	case KindMap:
		if v.m.Size() != other.m.Size() {
			return false
		}
		for _, k := range v.m.Keys() {
			a, _ := v.m.Get(k)
			b, okb := other.m.Get(k)
			if !okb || !a.Equal(b) {
				return false
			}
		}
		return true
	case KindKeyValuePair:
		return v.kv.Key == other.kv.Key && v.kv.Value.Equal(other.kv.Value)
	}
	return false
}

// Compare implements ordering for numeric, string, and list variants
// only, per spec.md §3. ok is false for variants with no defined order.
func (v *Value) Compare(other *Value) (cmp int, ok bool) {
	switch {
	case v.IsNumber() && other.IsNumber():
		a, b := v.Float(), other.Float()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	case v.kind == KindString && other.kind == KindString:
		return strings.Compare(v.s, other.s), true
	case v.kind == KindList && other.kind == KindList:
		i1, i2 := v.list.Enumerate(), other.list.Enumerate()
		for {
			a, oka := i1.Next()
			b, okb := i2.Next()
			if !oka && !okb {
				return 0, true
			}
			if !oka {
				return -1, true
			}
			if !okb {
				return 1, true
			}
			if c, ok := a.Compare(b); ok && c != 0 {
				return c, true
			}
		}
	}
	return 0, false
}

// Contains implements `in`: for String, substring test; for List, true
// iff any element equals other; for Map, true iff other's string form
// is a key.
func (v *Value) Contains(other *Value) bool {
	switch v.kind {
	case KindString:
		return strings.Contains(v.s, other.String())
	case KindList:
		found := false
		v.Each(func(_ int, item *Value) bool {
			if item.Equal(other) {
				found = true
				return false
			}
			return true
		})
		return found
	case KindMap:
		return v.m.Has(other.String())
	}
	return false
}

// Negate implements unary `not`.
func (v *Value) Negate() *Value { return boolValue(!v.IsTrue()) }

// ListProvider returns the underlying provider for a List value, or nil.
func (v *Value) ListProvider() ListProvider {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// MapProvider returns the underlying provider for a Map value, or nil.
func (v *Value) MapProvider() MapProvider {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// Callable returns the underlying Callable payload, or nil.
func (v *Value) Callable() *Callable {
	if v.kind != KindCallable {
		return nil
	}
	return v.call
}

// KeyValue returns the underlying KeyValuePair payload, or nil.
func (v *Value) KeyValue() *KeyValuePair {
	if v.kind != KindKeyValuePair {
		return nil
	}
	return v.kv
}

func keyValueOf(k string, val *Value) *Value {
	return &Value{kind: KindKeyValuePair, kv: &KeyValuePair{Key: k, Value: val}}
}

// Index implements `x[i]` for List (integer index, negative counts from
// the end), Map (string key), and String (length-1 substring). Returns
// Empty for any other combination, per spec.md §4.2. Indexing a List
// whose provider cannot support random access (a single-pass
// generator-backed list) is an error, never a silent re-enumeration.
func (v *Value) Index(idx *Value) (*Value, error) {
	switch v.kind {
	case KindList:
		if !idx.IsNumber() {
			return Empty, nil
		}
		if !v.list.CanIndex() {
			return nil, newError(ErrInvalidValueType, "", 0, 0, "index", "list does not support random access")
		}
		i := int(idx.Integer())
		n := v.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return Empty, nil
		}
		val, ok := v.list.Index(i)
		if !ok {
			return Empty, nil
		}
		return val, nil
	case KindMap:
		if val, ok := v.m.Get(idx.String()); ok {
			return val, nil
		}
		return Empty, nil
	case KindString:
		runes := []rune(v.s)
		i := int(idx.Integer())
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return Empty, nil
		}
		return stringValue(string(runes[i])), nil
	}
	return Empty, nil
}

// Attr implements `x.y`: map lookup first, then reflected-attribute
// lookup, else Empty.
func (v *Value) Attr(name string) *Value {
	if v.kind == KindMap {
		if val, ok := v.m.Get(name); ok {
			return val
		}
	}
	if val, ok := reflectAttr(v, name); ok {
		return val
	}
	return Empty
}
