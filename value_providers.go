package gojinja2

import (
	"reflect"
	"sort"
)

// ListEnumerator walks a List's elements once, in order. Enumerate may
// be called more than once on a provider that supports it (Reset); a
// single-pass provider (a generator-backed list) returns an enumerator
// that can only be drained once, and a second Enumerate call on it
// yields nothing, per spec.md §3 "single-pass" note.
type ListEnumerator interface {
	// Next returns the next element, or ok=false at the end.
	Next() (item *Value, ok bool)
}

// ListProvider is the indirection behind a List Value, per spec.md §3's
// "List and Map accessors" design note: it lets borrowed slices,
// reflected arrays, and lazy/generator sequences all participate as
// Jinja2 lists without being copied into an owned representation.
type ListProvider interface {
	// Size reports the element count, if known without a full scan.
	Size() (n int, ok bool)

	// Index performs O(1)-ish random access, if supported. ok is false
	// for an out-of-range i; callers must consult CanIndex to tell an
	// out-of-range lookup apart from a provider that cannot index at all.
	Index(i int) (item *Value, ok bool)

	// CanIndex reports whether Index is meaningful for this provider.
	// A single-pass/generator-backed list returns false: random
	// indexing on it must fail rather than silently re-enumerate from
	// the start, per spec.md §3.
	CanIndex() bool

	// Enumerate returns a fresh traversal. Restartable providers return
	// an independent enumerator each call; single-pass providers return
	// their one traversal on the first call and an empty enumerator on
	// every later call (effectively: call this once).
	Enumerate() ListEnumerator

	// ExtendsLifetime reports whether the provider holds its own copy of
	// the underlying data (true) or merely borrows from memory whose
	// lifetime the caller controls (false). A borrowing provider must be
	// copied out (e.g. via CollectList) before being retained past the
	// render call that produced it.
	ExtendsLifetime() bool
}

// MapProvider is the Map-side counterpart of ListProvider.
type MapProvider interface {
	Size() int
	Has(key string) bool
	Get(key string) (val *Value, ok bool)
	// Keys returns keys in the provider's canonical order (insertion
	// order for an owned map, sorted for a reflected Go map).
	Keys() []string
	// Set assigns a key, returning false if the provider is read-only.
	Set(key string, val *Value) bool
	ExtendsLifetime() bool
}

// --- owned list: backs List/KeyValuePair literals and filter output ---

type ownedList struct {
	items []*Value
}

func newOwnedList(items []*Value) *ownedList {
	return &ownedList{items: items}
}

func (l *ownedList) Size() (int, bool) { return len(l.items), true }

func (l *ownedList) Index(i int) (*Value, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

func (l *ownedList) CanIndex() bool { return true }

func (l *ownedList) Enumerate() ListEnumerator {
	return &sliceEnumerator{items: l.items}
}

func (l *ownedList) ExtendsLifetime() bool { return true }

type sliceEnumerator struct {
	items []*Value
	pos   int
}

func (e *sliceEnumerator) Next() (*Value, bool) {
	if e.pos >= len(e.items) {
		return nil, false
	}
	v := e.items[e.pos]
	e.pos++
	return v, true
}

// CollectList forces full materialization of a List value's elements,
// useful before retaining a value that might be backed by a
// non-lifetime-extending or single-pass provider.
func CollectList(v *Value) []*Value {
	if v == nil || v.kind != KindList {
		return nil
	}
	out := make([]*Value, 0, v.Len())
	v.Each(func(_ int, item *Value) bool {
		out = append(out, item)
		return true
	})
	return out
}

// generatorList adapts a single-pass Go function into a ListProvider
// (range() and the map()/select() filters build owned lists instead). Calling
// Enumerate a second time returns an enumerator that yields nothing,
// matching the single-pass contract documented on ListProvider.
type generatorList struct {
	next    func() (*Value, bool)
	drained bool
}

func newGeneratorList(next func() (*Value, bool)) *generatorList {
	return &generatorList{next: next}
}

func (g *generatorList) Size() (int, bool)         { return 0, false }
func (g *generatorList) Index(int) (*Value, bool)  { return nil, false }
func (g *generatorList) CanIndex() bool            { return false }

func (g *generatorList) Enumerate() ListEnumerator {
	if g.drained {
		return &sliceEnumerator{}
	}
	g.drained = true
	return &generatorEnumerator{next: g.next}
}

func (g *generatorList) ExtendsLifetime() bool { return false }

type generatorEnumerator struct {
	next func() (*Value, bool)
}

func (e *generatorEnumerator) Next() (*Value, bool) {
	if e.next == nil {
		return nil, false
	}
	return e.next()
}

// --- owned map: backs Map literals and dict()/filter output ---

type ownedMap struct {
	keys   []string
	values map[string]*Value
}

func newOwnedMap(keys []string, values map[string]*Value) *ownedMap {
	if values == nil {
		values = map[string]*Value{}
	}
	return &ownedMap{keys: keys, values: values}
}

func (m *ownedMap) Size() int { return len(m.keys) }

func (m *ownedMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *ownedMap) Get(key string) (*Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *ownedMap) Keys() []string { return m.keys }

func (m *ownedMap) Set(key string, val *Value) bool {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = val
	return true
}

func (m *ownedMap) ExtendsLifetime() bool { return true }

// --- reflect-based adapters: native Go slices/arrays/maps/structs ---

// reflectAdapt builds a Value for an arbitrary Go value not covered by
// AsValue's direct type switch, by reflecting over slices, arrays,
// maps, structs, and pointers to them. Anything else (channel, func of
// the wrong shape, complex) collapses to Empty.
func reflectAdapt(i interface{}) *Value {
	rv := reflect.ValueOf(i)
	return reflectAdaptValue(rv)
}

func reflectAdaptValue(rv reflect.Value) *Value {
	if !rv.IsValid() {
		return Empty
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Empty
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return boolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intValue(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return intValue(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return doubleValue(rv.Float())
	case reflect.String:
		return stringValue(rv.String())
	case reflect.Slice, reflect.Array:
		return ValueFromList(newReflectList(rv))
	case reflect.Map:
		return ValueFromMap(newReflectMap(rv))
	case reflect.Struct:
		return ValueFromMap(newReflectStruct(rv))
	}
	return Empty
}

// reflectList wraps a reflect.Value slice/array, extending its
// lifetime only when the underlying Go value was itself a copy (arrays
// are; slices merely borrow their backing store so ExtendsLifetime is
// false for them, matching spec.md's distinction).
type reflectList struct {
	rv reflect.Value
}

func newReflectList(rv reflect.Value) *reflectList { return &reflectList{rv: rv} }

func (r *reflectList) Size() (int, bool) { return r.rv.Len(), true }

func (r *reflectList) Index(i int) (*Value, bool) {
	if i < 0 || i >= r.rv.Len() {
		return nil, false
	}
	return reflectAdaptValue(r.rv.Index(i)), true
}

func (r *reflectList) CanIndex() bool { return true }

func (r *reflectList) Enumerate() ListEnumerator {
	return &reflectListEnumerator{rv: r.rv}
}

func (r *reflectList) ExtendsLifetime() bool { return r.rv.Kind() == reflect.Array }

type reflectListEnumerator struct {
	rv  reflect.Value
	pos int
}

func (e *reflectListEnumerator) Next() (*Value, bool) {
	if e.pos >= e.rv.Len() {
		return nil, false
	}
	v := reflectAdaptValue(e.rv.Index(e.pos))
	e.pos++
	return v, true
}

// reflectMap wraps a reflect.Value of Kind Map. Every key, whatever its
// Go type, is stringified through AsValue(key).String(), and the
// resulting string keys are kept sorted.
type reflectMap struct {
	rv   reflect.Value
	keys []string
}

func newReflectMap(rv reflect.Value) *reflectMap {
	mkeys := rv.MapKeys()
	keys := make([]string, 0, len(mkeys))
	for _, k := range mkeys {
		keys = append(keys, AsValue(k.Interface()).String())
	}
	sort.Strings(keys)
	return &reflectMap{rv: rv, keys: keys}
}

func (r *reflectMap) Size() int { return len(r.keys) }

func (r *reflectMap) Has(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (r *reflectMap) Get(key string) (*Value, bool) {
	iter := r.rv.MapRange()
	for iter.Next() {
		if AsValue(iter.Key().Interface()).String() == key {
			return reflectAdaptValue(iter.Value()), true
		}
	}
	return nil, false
}

func (r *reflectMap) Keys() []string { return r.keys }

func (r *reflectMap) Set(string, *Value) bool { return false }

func (r *reflectMap) ExtendsLifetime() bool { return false }

// reflectStruct exposes a Go struct's exported fields as a read-only
// Map, keyed by field name (Jinja2 attribute access convention).
type reflectStruct struct {
	rv   reflect.Value
	keys []string
}

func newReflectStruct(rv reflect.Value) *reflectStruct {
	t := rv.Type()
	keys := make([]string, 0, t.NumField())
	for idx := 0; idx < t.NumField(); idx++ {
		if t.Field(idx).PkgPath == "" {
			keys = append(keys, t.Field(idx).Name)
		}
	}
	return &reflectStruct{rv: rv, keys: keys}
}

func (r *reflectStruct) Size() int { return len(r.keys) }

func (r *reflectStruct) Has(key string) bool {
	return r.rv.FieldByName(key).IsValid()
}

func (r *reflectStruct) Get(key string) (*Value, bool) {
	fv := r.rv.FieldByName(key)
	if !fv.IsValid() {
		return nil, false
	}
	return reflectAdaptValue(fv), true
}

func (r *reflectStruct) Keys() []string { return r.keys }

func (r *reflectStruct) Set(string, *Value) bool { return false }

func (r *reflectStruct) ExtendsLifetime() bool { return false }

// reflectAttr resolves `x.name` against a reflected Go value held
// inside a non-Map Value is not possible (Value has no "raw interface"
// escape hatch for non-Map/List kinds), so this only ever applies to
// values whose Kind is already KindMap produced via reflection; this
// hook exists for future extension (e.g. method calls) and currently
// always misses for any other kind.
func reflectAttr(v *Value, name string) (*Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m.Get(name)
}
