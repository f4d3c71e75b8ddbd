package config

import (
	"fmt"
	"io"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/nodebound/exmgraph/xcore"
)

// Format selects the loader's input syntax. Only YAML is implemented;
// the type exists so a JSON/TOML parser can be added later without
// changing Load's signature.
type Format int

const (
	FormatYAML Format = iota
)

// Load reads a Descriptor from r in the given format, validates it, and
// returns xcore.ErrConfigError on any failure -- parse or validation.
// Unlike New's Options, Load never panics: malformed input is data, not
// a programmer mistake.
func Load(r io.Reader, format Format) (*Descriptor, error) {
	if format != FormatYAML {
		return nil, fmt.Errorf("config: unsupported format %d: %w", format, xcore.ErrConfigError)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read input: %w: %w", err, xcore.ErrConfigError)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w: %w", err, xcore.ErrConfigError)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w: %w", err, xcore.ErrConfigError)
	}

	var d Descriptor
	if err := k.Unmarshal("", &d); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w: %w", err, xcore.ErrConfigError)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func defaultValues() map[string]any {
	return map[string]any{
		"scale_degree":          1.0,
		"gamma":                 -2.0,
		"input_method":          string(InputHH),
		"internal_memory_bytes": int64(1) << 28,
	}
}
