package view

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bjaus/tabula"
)

// Config is the process-wide view configuration, usually read from a YAML
// file. Unset switches default to on.
type Config struct {
	Pager        *bool       `yaml:"pager,omitempty"`
	Formatter    *bool       `yaml:"formatter,omitempty"`
	Width        int         `yaml:"width,omitempty"`
	Height       int         `yaml:"height,omitempty"`
	PagerCommand string      `yaml:"pager_command,omitempty"`
	Table        TableConfig `yaml:"table,omitempty"`
}

// TableConfig holds default table options. Field keys use the same syntax as
// the CLI: a name, or a non-negative integer for a sequence index.
type TableConfig struct {
	Fields       []string          `yaml:"fields,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	HeaderList   []string          `yaml:"header_list,omitempty"`
	NoHeaders    bool              `yaml:"no_headers,omitempty"`
	FieldLengths map[string]int    `yaml:"field_lengths,omitempty"`
	MaxWidth     int               `yaml:"max_width,omitempty"`
	Number       bool              `yaml:"number,omitempty"`
	Vertical     bool              `yaml:"vertical,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	pager, formatter := true, true
	return Config{Pager: &pager, Formatter: &formatter}
}

// PagerEnabled reports the pager switch, defaulting to on.
func (c Config) PagerEnabled() bool { return c.Pager == nil || *c.Pager }

// FormatterEnabled reports the formatter switch, defaulting to on.
func (c Config) FormatterEnabled() bool { return c.Formatter == nil || *c.Formatter }

// LoadConfig reads a YAML config file and merges it over DefaultConfig. An
// empty path or a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return MergeConfig(cfg, file), nil
}

// MergeConfig returns base with every value set in override applied on top.
// Maps are merged key by key.
func MergeConfig(base, override Config) Config {
	out := base
	if override.Pager != nil {
		v := *override.Pager
		out.Pager = &v
	}
	if override.Formatter != nil {
		v := *override.Formatter
		out.Formatter = &v
	}
	if override.Width > 0 {
		out.Width = override.Width
	}
	if override.Height > 0 {
		out.Height = override.Height
	}
	if override.PagerCommand != "" {
		out.PagerCommand = override.PagerCommand
	}
	t, o := base.Table, override.Table
	if len(o.Fields) > 0 {
		t.Fields = slices.Clone(o.Fields)
	}
	t.Headers = mergeMaps(t.Headers, o.Headers)
	if len(o.HeaderList) > 0 {
		t.HeaderList = slices.Clone(o.HeaderList)
	}
	t.NoHeaders = t.NoHeaders || o.NoHeaders
	t.FieldLengths = mergeMaps(t.FieldLengths, o.FieldLengths)
	if o.MaxWidth != 0 {
		t.MaxWidth = o.MaxWidth
	}
	t.Number = t.Number || o.Number
	t.Vertical = t.Vertical || o.Vertical
	out.Table = t
	return out
}

// Options converts the table defaults into render options.
func (t TableConfig) Options() tabula.Options {
	var opts tabula.Options
	for _, f := range t.Fields {
		opts.Fields = append(opts.Fields, tabula.ParseField(f))
	}
	if len(t.Headers) > 0 {
		opts.Headers = make(map[tabula.Field]string, len(t.Headers))
		for k, v := range t.Headers {
			opts.Headers[tabula.ParseField(k)] = v
		}
	}
	opts.HeaderList = slices.Clone(t.HeaderList)
	opts.NoHeaders = t.NoHeaders
	if len(t.FieldLengths) > 0 {
		opts.FieldLengths = make(map[tabula.Field]int, len(t.FieldLengths))
		for k, v := range t.FieldLengths {
			opts.FieldLengths[tabula.ParseField(k)] = v
		}
	}
	opts.MaxWidth = t.MaxWidth
	opts.Number = t.Number
	opts.Vertical = t.Vertical
	return opts
}

// MergeOptions layers caller options over configured defaults. Anything the
// caller sets wins; maps are merged key by key and booleans are combined.
func MergeOptions(defaults, caller tabula.Options) tabula.Options {
	out := caller
	if len(out.Fields) == 0 {
		out.Fields = slices.Clone(defaults.Fields)
	}
	out.Headers = mergeMaps(defaults.Headers, caller.Headers)
	if len(out.HeaderList) == 0 {
		out.HeaderList = slices.Clone(defaults.HeaderList)
	}
	out.NoHeaders = defaults.NoHeaders || caller.NoHeaders
	out.FieldLengths = mergeMaps(defaults.FieldLengths, caller.FieldLengths)
	if out.MaxWidth == 0 {
		out.MaxWidth = defaults.MaxWidth
	}
	if out.WidthFunc == nil {
		out.WidthFunc = defaults.WidthFunc
	}
	out.Filters = mergeMaps(defaults.Filters, caller.Filters)
	out.Number = defaults.Number || caller.Number
	out.Vertical = defaults.Vertical || caller.Vertical
	return out
}

func mergeMaps[K comparable, V any](base, override map[K]V) map[K]V {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[K]V, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}
