package gojinja2

import (
	"os"

	"github.com/juju/loggo"
	yaml "gopkg.in/yaml.v2"
)

// logger is the package-wide loggo logger, configured below at WARNING
// level writing to stdout. No code in the package logs through it, and
// Environment.Debug is not consulted.
var logger = loggo.GetLogger("gojinja2")

func init() {
	loggo.ConfigureLoggers("gojinja2=WARNING")
	loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(os.Stdout, loggo.DefaultFormatter))
}

// Options configures engine-wide whitespace, escaping, and extension
// behavior, per spec.md §6 "Environment API: configure".
type Options struct {
	// TrimBlocks strips the first newline after a statement block's
	// closing marker (one newline only, unlike "-%}", which strips all
	// following whitespace).
	TrimBlocks bool

	// LstripBlocks strips whitespace between the start of a line and a
	// statement block's opening marker.
	LstripBlocks bool

	// KeepTrailingNewline disables the default behavior of stripping a
	// single trailing newline from the template source before lexing.
	KeepTrailingNewline bool

	// AutoescapeDefault is the render context's initial autoescape mode.
	AutoescapeDefault bool

	// DoExtension enables the {% do %} statement.
	DoExtension bool

	// LoopControlsExtension enables {% break %}/{% continue %} inside for-loops.
	LoopControlsExtension bool
}

func newOptions() *Options {
	return &Options{
		AutoescapeDefault: false,
	}
}

// yamlOptions mirrors Options with YAML tags; kept distinct so Options
// itself stays free of serialization concerns used only by the config
// loader.
type yamlOptions struct {
	TrimBlocks             bool `yaml:"trim_blocks"`
	LstripBlocks           bool `yaml:"lstrip_blocks"`
	KeepTrailingNewline    bool `yaml:"keep_trailing_newline"`
	AutoescapeDefault      bool `yaml:"autoescape"`
	DoExtension            bool `yaml:"do_extension"`
	LoopControlsExtension  bool `yaml:"loopcontrols_extension"`
}

// LoadOptionsFromYAML reads an Options value from a YAML document, the
// common case for a render pipeline that configures the engine from a
// deploy-time config file alongside its templates.
func LoadOptionsFromYAML(data []byte) (*Options, error) {
	var y yamlOptions
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, wrapError(ErrUnknown, err, "", 0, 0, "options")
	}
	return &Options{
		TrimBlocks:             y.TrimBlocks,
		LstripBlocks:           y.LstripBlocks,
		KeepTrailingNewline:    y.KeepTrailingNewline,
		AutoescapeDefault:      y.AutoescapeDefault,
		DoExtension:            y.DoExtension,
		LoopControlsExtension:  y.LoopControlsExtension,
	}, nil
}
