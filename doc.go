// Package gojinja2 implements a Jinja2-compatible text-templating engine.
//
// A template source is lexed, parsed into a tree of renderers and
// expressions, and executed against a caller-supplied Context to produce
// a rendered string.
//
// Current caveats
//   - Parallelism: a compiled *Template is immutable and safe to render
//     concurrently, but never share a RenderContext or Context between
//     concurrent Execute calls.
//   - Internal strings are UTF-8 only; there is no "wide string" variant.
//
// A tiny example with template strings:
//
//	tpl, err := gojinja2.FromString("Hello {{ name|capitalize }}!")
//	if err != nil {
//	    panic(err)
//	}
//	out, err := tpl.RenderString(gojinja2.Context{"name": "florian"})
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(out) // Output: Hello Florian!
package gojinja2

// Version is the engine's semantic version string, exposed to templates
// through the reserved "gojinja2" context key.
const Version = "1.0.0"
