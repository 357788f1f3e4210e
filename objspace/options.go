package objspace

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is a package-level singleton; constructing a validator per call
// is expensive.
var validate = validator.New()

// Options tune the object space. The zero value is not useful; start from
// DefaultOptions or use New's functional options.
type Options struct {
	// SmallIntMin and SmallIntMax bound the interned small-integer cache.
	// Integers in this range are shared immortal objects.
	SmallIntMin int64 `yaml:"small-int-min" validate:"ltefield=SmallIntMax"`
	SmallIntMax int64 `yaml:"small-int-max"`

	// InitialCapacity preallocates the handle table.
	InitialCapacity int `yaml:"initial-capacity" validate:"gte=0"`

	// TraceAllocs emits a debug trace line per allocation on the
	// "quill.objspace" trace channel.
	TraceAllocs bool `yaml:"trace-allocs"`
}

// DefaultOptions returns the options New starts from.
func DefaultOptions() Options {
	return Options{
		SmallIntMin:     -5,
		SmallIntMax:     256,
		InitialCapacity: 64,
	}
}

// OptionsFromYAML decodes options from YAML, on top of the defaults, and
// validates them. Hosts that load engine limits from configuration files use
// this together with WithOptions.
func OptionsFromYAML(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("objspace: parsing options: %w", err)
	}
	if err := validate.Struct(&opts); err != nil {
		return Options{}, fmt.Errorf("objspace: invalid options: %w", err)
	}
	return opts, nil
}

// Option is a functional option for New.
type Option func(*Options)

// WithOptions replaces the full option set, e.g. with one decoded by
// OptionsFromYAML.
func WithOptions(o Options) Option {
	return func(opts *Options) { *opts = o }
}

// WithSmallIntRange sets the interned small-integer range.
func WithSmallIntRange(min, max int64) Option {
	return func(opts *Options) {
		opts.SmallIntMin = min
		opts.SmallIntMax = max
	}
}

// WithInitialCapacity preallocates the handle table.
func WithInitialCapacity(n int) Option {
	return func(opts *Options) { opts.InitialCapacity = n }
}

// WithTraceAllocs turns on per-allocation debug tracing.
func WithTraceAllocs() Option {
	return func(opts *Options) { opts.TraceAllocs = true }
}
