package gojinja2

// TesterFunction implements one `is` test.
type TesterFunction func(target *Value, args []*Value) (bool, error)

var testerRegistry = map[string]TesterFunction{}

// RegisterTester adds a test to the engine-wide registry, the
// tester-side counterpart of RegisterFilter.
func RegisterTester(name string, fn TesterFunction) {
	testerRegistry[name] = fn
}
