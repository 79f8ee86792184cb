package gojinja2

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
	"github.com/kr/pretty"
)

var tagStripper = regexp.MustCompile(`<[^>]*>`)

// init registers the minimum filter catalog required by spec.md §4.5.
func init() {
	RegisterFilter("abs", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsFloat() {
			return doubleValue(math.Abs(in.Float())), nil
		}
		n := in.Integer()
		if n < 0 {
			n = -n
		}
		return intValue(n), nil
	})

	RegisterFilter("attr", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		if len(args) < 1 {
			return Empty, nil
		}
		return in.Attr(args[0].String()), nil
	})

	RegisterFilter("batch", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		size := int(arg(args, 0, intValue(1)).Integer())
		if size <= 0 {
			size = 1
		}
		fill := arg(args, 1, nil)
		items := CollectList(in)
		var batches []*Value
		for i := 0; i < len(items); i += size {
			end := i + size
			var chunk []*Value
			if end > len(items) {
				chunk = append([]*Value{}, items[i:]...)
				if fill != nil {
					for len(chunk) < size {
						chunk = append(chunk, fill)
					}
				}
			} else {
				chunk = items[i:end]
			}
			batches = append(batches, ListOf(chunk...))
		}
		return ListOf(batches...), nil
	})

	RegisterFilter("capitalize", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		s := in.String()
		if s == "" {
			return stringValue(s), nil
		}
		r := []rune(strings.ToLower(s))
		r[0] = unicode.ToUpper(r[0])
		return stringValue(string(r)), nil
	})

	RegisterFilter("center", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		width := int(arg(args, 0, intValue(80)).Integer())
		s := in.String()
		if len(s) >= width {
			return stringValue(s), nil
		}
		total := width - len(s)
		left := total / 2
		right := total - left
		return stringValue(strings.Repeat(" ", left) + s + strings.Repeat(" ", right)), nil
	})

	defaultFn := func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		boolean := kwarg(kwargs, "boolean", arg(args, 1, boolValue(false))).IsTrue()
		def := arg(args, 0, stringValue(""))
		if in.IsEmpty() || (boolean && !in.IsTrue()) {
			return def, nil
		}
		return in, nil
	}
	RegisterFilter("default", defaultFn)
	RegisterFilter("d", defaultFn)

	RegisterFilter("dictsort", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		if !in.IsMap() {
			return ListOf(), nil
		}
		byValue := kwarg(kwargs, "by", stringValue("key")).String() == "value"
		keys := append([]string{}, in.MapProvider().Keys()...)
		if byValue {
			sort.Slice(keys, func(i, j int) bool {
				vi, _ := in.MapProvider().Get(keys[i])
				vj, _ := in.MapProvider().Get(keys[j])
				c, _ := vi.Compare(vj)
				return c < 0
			})
		} else {
			sort.Strings(keys)
		}
		out := make([]*Value, len(keys))
		for i, k := range keys {
			v, _ := in.MapProvider().Get(k)
			out[i] = keyValueOf(k, v)
		}
		return ListOf(out...), nil
	})

	escapeFn := func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsSafe() {
			return in, nil
		}
		return AsSafeValue(htmlEscape(in.String())), nil
	}
	RegisterFilter("escape", escapeFn)
	RegisterFilter("e", escapeFn)
	RegisterFilter("forceescape", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return AsSafeValue(htmlEscape(in.String())), nil
	})

	RegisterFilter("filesizeformat", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		binary := arg(args, 0, boolValue(false)).IsTrue()
		return stringValue(formatFileSize(in.Float(), binary)), nil
	})

	RegisterFilter("first", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsString() {
			r := []rune(in.String())
			if len(r) == 0 {
				return Empty, nil
			}
			return stringValue(string(r[0])), nil
		}
		var result *Value = Empty
		in.Each(func(_ int, item *Value) bool {
			result = item
			return false
		})
		return result, nil
	})

	RegisterFilter("last", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsString() {
			r := []rune(in.String())
			if len(r) == 0 {
				return Empty, nil
			}
			return stringValue(string(r[len(r)-1])), nil
		}
		items := CollectList(in)
		if len(items) == 0 {
			return Empty, nil
		}
		return items[len(items)-1], nil
	})

	RegisterFilter("float", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return doubleValue(in.Float()), nil
	})

	RegisterFilter("int", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsString() && in.String() == "" {
			return intValue(arg(args, 0, intValue(0)).Integer()), nil
		}
		return intValue(in.Integer()), nil
	})

	RegisterFilter("format", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		fargs := make([]interface{}, len(args))
		for i, a := range args {
			if a.IsNumber() {
				fargs[i] = a.Float()
			} else {
				fargs[i] = a.String()
			}
		}
		return stringValue(fmt.Sprintf(in.String(), fargs...)), nil
	})

	RegisterFilter("groupby", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		if len(args) < 1 {
			return ListOf(), nil
		}
		attrName := args[0].String()
		groups := map[string][]*Value{}
		order := []string{}
		in.Each(func(_ int, item *Value) bool {
			key := item.Attr(attrName).String()
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], item)
			return true
		})
		sort.Strings(order)
		out := make([]*Value, len(order))
		for i, k := range order {
			out[i] = keyValueOf(k, ListOf(groups[k]...))
		}
		return ListOf(out...), nil
	})

	RegisterFilter("indent", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		width := int(arg(args, 0, intValue(4)).Integer())
		first := kwarg(kwargs, "first", boolValue(false)).IsTrue()
		pad := strings.Repeat(" ", width)
		lines := strings.Split(in.String(), "\n")
		for i := range lines {
			if i == 0 && !first {
				continue
			}
			if lines[i] == "" {
				continue
			}
			lines[i] = pad + lines[i]
		}
		return stringValue(strings.Join(lines, "\n")), nil
	})

	RegisterFilter("items", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if !in.IsMap() {
			return ListOf(), nil
		}
		keys := in.MapProvider().Keys()
		out := make([]*Value, len(keys))
		for i, k := range keys {
			v, _ := in.MapProvider().Get(k)
			out[i] = keyValueOf(k, v)
		}
		return ListOf(out...), nil
	})

	RegisterFilter("join", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		sep := arg(args, 0, stringValue("")).String()
		attrName := kwarg(kwargs, "attribute", nil)
		var parts []string
		in.Each(func(_ int, item *Value) bool {
			if attrName != nil {
				item = item.Attr(attrName.String())
			}
			parts = append(parts, item.String())
			return true
		})
		return stringValue(strings.Join(parts, sep)), nil
	})

	lenFn := func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return intValue(int64(in.Len())), nil
	}
	RegisterFilter("length", lenFn)
	RegisterFilter("count", lenFn)

	RegisterFilter("list", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsList() {
			return ListOf(CollectList(in)...), nil
		}
		if in.IsString() {
			runes := []rune(in.String())
			out := make([]*Value, len(runes))
			for i, r := range runes {
				out[i] = stringValue(string(r))
			}
			return ListOf(out...), nil
		}
		if in.IsMap() {
			keys := in.MapProvider().Keys()
			out := make([]*Value, len(keys))
			for i, k := range keys {
				out[i] = stringValue(k)
			}
			return ListOf(out...), nil
		}
		return ListOf(), nil
	})

	RegisterFilter("lower", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return stringValue(strings.ToLower(in.String())), nil
	})
	RegisterFilter("upper", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return stringValue(strings.ToUpper(in.String())), nil
	})

	RegisterFilter("map", func(ctx *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		var filterName string
		if len(args) > 0 {
			filterName = args[0].String()
			args = args[1:]
		} else if attrName, ok := kwargs["attribute"]; ok {
			items := CollectList(in)
			out := make([]*Value, len(items))
			for i, item := range items {
				out[i] = item.Attr(attrName.String())
			}
			return ListOf(out...), nil
		}
		fn, ok := filterRegistry[filterName]
		if !ok {
			return nil, newError(ErrUnexpectedException, "", 0, 0, "map", "unknown filter "+filterName)
		}
		items := CollectList(in)
		out := make([]*Value, len(items))
		for i, item := range items {
			v, err := fn(ctx, item, args, nil)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return ListOf(out...), nil
	})

	minMaxFn := func(wantMax bool) FilterFunction {
		return func(_ *RenderContext, in *Value, _ []*Value, kwargs map[string]*Value) (*Value, error) {
			attrName := kwarg(kwargs, "attribute", nil)
			items := CollectList(in)
			if len(items) == 0 {
				return Empty, nil
			}
			best := items[0]
			bestKey := best
			if attrName != nil {
				bestKey = best.Attr(attrName.String())
			}
			for _, item := range items[1:] {
				key := item
				if attrName != nil {
					key = item.Attr(attrName.String())
				}
				c, ok := key.Compare(bestKey)
				if ok && ((wantMax && c > 0) || (!wantMax && c < 0)) {
					best = item
					bestKey = key
				}
			}
			return best, nil
		}
	}
	RegisterFilter("max", minMaxFn(true))
	RegisterFilter("min", minMaxFn(false))

	RegisterFilter("pprint", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return stringValue(pretty.Sprint(in.String())), nil
	})

	RegisterFilter("random", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		items := CollectList(in)
		if len(items) == 0 {
			return Empty, nil
		}
		return items[rand.Intn(len(items))], nil
	})

	selectRejectFn := func(want bool, byAttr bool) FilterFunction {
		return func(ctx *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
			var attrName string
			if byAttr {
				if len(args) < 1 {
					return ListOf(), nil
				}
				attrName = args[0].String()
				args = args[1:]
			}
			var testName string
			if len(args) > 0 {
				testName = args[0].String()
				args = args[1:]
			}
			var out []*Value
			in.Each(func(_ int, item *Value) bool {
				subject := item
				if byAttr {
					subject = item.Attr(attrName)
				}
				ok := subject.IsTrue()
				if testName != "" {
					if fn, found := testerRegistry[testName]; found {
						r, _ := fn(subject, args)
						ok = r
					}
				}
				if ok == want {
					out = append(out, item)
				}
				return true
			})
			return ListOf(out...), nil
		}
	}
	RegisterFilter("select", selectRejectFn(true, false))
	RegisterFilter("reject", selectRejectFn(false, false))
	RegisterFilter("selectattr", selectRejectFn(true, true))
	RegisterFilter("rejectattr", selectRejectFn(false, true))

	RegisterFilter("replace", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		if len(args) < 2 {
			return in, nil
		}
		count := -1
		if len(args) > 2 {
			count = int(args[2].Integer())
		}
		return stringValue(strings.Replace(in.String(), args[0].String(), args[1].String(), count)), nil
	})

	RegisterFilter("reverse", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		if in.IsString() {
			r := []rune(in.String())
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
			return stringValue(string(r)), nil
		}
		items := CollectList(in)
		out := make([]*Value, len(items))
		for i, item := range items {
			out[len(items)-1-i] = item
		}
		return ListOf(out...), nil
	})

	RegisterFilter("round", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		precision := int(arg(args, 0, intValue(0)).Integer())
		method := kwarg(kwargs, "method", stringValue("common")).String()
		mul := math.Pow(10, float64(precision))
		f := in.Float() * mul
		switch method {
		case "ceil":
			f = math.Ceil(f)
		case "floor":
			f = math.Floor(f)
		default:
			f = math.Round(f)
		}
		return doubleValue(f / mul), nil
	})

	RegisterFilter("safe", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return in.MarkSafe(), nil
	})

	RegisterFilter("slice", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		n := int(arg(args, 0, intValue(1)).Integer())
		if n <= 0 {
			n = 1
		}
		fill := kwarg(kwargs, "fill_with", nil)
		items := CollectList(in)
		perSlice := len(items) / n
		extra := len(items) % n
		out := make([]*Value, 0, n)
		idx := 0
		for i := 0; i < n; i++ {
			size := perSlice
			if i < extra {
				size++
			}
			chunk := append([]*Value{}, items[idx:idx+size]...)
			idx += size
			if fill != nil && size < perSlice+1 && i >= extra {
				chunk = append(chunk, fill)
			}
			out = append(out, ListOf(chunk...))
		}
		return ListOf(out...), nil
	})

	RegisterFilter("sort", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		reverse := kwarg(kwargs, "reverse", boolValue(false)).IsTrue()
		caseSensitive := kwarg(kwargs, "case_sensitive", boolValue(false)).IsTrue()
		attrName := kwarg(kwargs, "attribute", nil)
		items := append([]*Value{}, CollectList(in)...)
		keyOf := func(v *Value) *Value {
			if attrName != nil {
				v = v.Attr(attrName.String())
			}
			if v.IsString() && !caseSensitive {
				return stringValue(strings.ToLower(v.String()))
			}
			return v
		}
		sort.SliceStable(items, func(i, j int) bool {
			c, _ := keyOf(items[i]).Compare(keyOf(items[j]))
			if reverse {
				return c > 0
			}
			return c < 0
		})
		return ListOf(items...), nil
	})

	RegisterFilter("string", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return stringValue(in.String()), nil
	})

	RegisterFilter("striptags", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		s := tagStripper.ReplaceAllString(in.String(), "")
		return stringValue(strings.Join(strings.Fields(s), " ")), nil
	})

	RegisterFilter("sum", func(_ *RenderContext, in *Value, _ []*Value, kwargs map[string]*Value) (*Value, error) {
		attrName := kwarg(kwargs, "attribute", nil)
		start := kwarg(kwargs, "start", intValue(0))
		total := start.Float()
		allInt := start.IsInt()
		in.Each(func(_ int, item *Value) bool {
			v := item
			if attrName != nil {
				v = v.Attr(attrName.String())
			}
			if !v.IsInt() {
				allInt = false
			}
			total += v.Float()
			return true
		})
		if allInt {
			return intValue(int64(total)), nil
		}
		return doubleValue(total), nil
	})

	RegisterFilter("title", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return stringValue(strings.Title(strings.ToLower(in.String()))), nil
	})

	RegisterFilter("tojson", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		data, err := jsoniter.Marshal(valueToInterface(in))
		if err != nil {
			return nil, wrapError(ErrInvalidValueType, err, "", 0, 0, "tojson")
		}
		return AsSafeValue(string(data)), nil
	})

	RegisterFilter("trim", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		cutset := " \t\r\n"
		if len(args) > 0 {
			cutset = args[0].String()
		}
		return stringValue(strings.Trim(in.String(), cutset)), nil
	})

	RegisterFilter("truncate", func(_ *RenderContext, in *Value, args []*Value, kwargs map[string]*Value) (*Value, error) {
		length := int(arg(args, 0, intValue(255)).Integer())
		killwords := arg(args, 1, boolValue(false)).IsTrue()
		end := arg(args, 2, stringValue("...")).String()
		s := in.String()
		if len([]rune(s)) <= length {
			return stringValue(s), nil
		}
		r := []rune(s)
		cut := r[:length]
		if !killwords {
			if idx := strings.LastIndexByte(string(cut), ' '); idx >= 0 {
				cut = []rune(string(cut)[:idx])
			}
		}
		return stringValue(string(cut) + end), nil
	})

	RegisterFilter("unique", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		var out []*Value
		in.Each(func(_ int, item *Value) bool {
			for _, o := range out {
				if o.Equal(item) {
					return true
				}
			}
			out = append(out, item)
			return true
		})
		return ListOf(out...), nil
	})

	RegisterFilter("urlencode", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return stringValue(url.QueryEscape(in.String())), nil
	})

	RegisterFilter("wordcount", func(_ *RenderContext, in *Value, _ []*Value, _ map[string]*Value) (*Value, error) {
		return intValue(int64(len(strings.Fields(in.String())))), nil
	})

	RegisterFilter("wordwrap", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		width := int(arg(args, 0, intValue(79)).Integer())
		return stringValue(wrapText(in.String(), width)), nil
	})

	RegisterFilter("xmlattr", func(_ *RenderContext, in *Value, args []*Value, _ map[string]*Value) (*Value, error) {
		if !in.IsMap() {
			return stringValue(""), nil
		}
		autospace := arg(args, 0, boolValue(true)).IsTrue()
		var b strings.Builder
		for _, k := range in.MapProvider().Keys() {
			v, _ := in.MapProvider().Get(k)
			if v.IsEmpty() {
				continue
			}
			if autospace {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=\"%s\"", k, htmlEscape(v.String()))
		}
		return AsSafeValue(b.String()), nil
	})
}

func formatFileSize(bytes float64, binary bool) string {
	base := 1000.0
	units := []string{"kB", "MB", "GB", "TB", "PB"}
	if binary {
		base = 1024.0
		units = []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	}
	if bytes < base {
		return strconv.FormatFloat(bytes, 'f', 0, 64) + " Bytes"
	}
	val := bytes
	unit := ""
	for _, u := range units {
		val /= base
		unit = u
		if val < base {
			break
		}
	}
	return strconv.FormatFloat(val, 'f', 1, 64) + " " + unit
}

func wrapText(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// valueToInterface converts a Value tree to plain Go data for JSON
// marshaling via jsoniter.
func valueToInterface(v *Value) interface{} {
	switch v.Kind() {
	case KindEmpty:
		return nil
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Integer()
	case KindDouble:
		return v.Float()
	case KindString:
		return v.String()
	case KindList:
		items := CollectList(v)
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = valueToInterface(item)
		}
		return out
	case KindMap:
		out := map[string]interface{}{}
		for _, k := range v.MapProvider().Keys() {
			val, _ := v.MapProvider().Get(k)
			out[k] = valueToInterface(val)
		}
		return out
	}
	return v.String()
}
