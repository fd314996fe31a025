package cli

import (
	"fmt"
	"strings"

	"github.com/bjaus/tabula"
	"github.com/bjaus/tabula/internal/expr"
)

type flags struct {
	format       string
	fields       []string
	headerList   []string
	headers      map[string]string
	noHeaders    bool
	fieldLengths map[string]int
	maxWidth     int
	noLimit      bool
	filters      []string
	chains       []string
	number       bool
	vertical     bool
	variant      string
	config       string
	noPager      bool
	logLevel     string
}

// options turns parsed flags into render options. CEL filters are compiled
// with ev.
func (f *flags) options(ev *expr.Evaluator) (tabula.Options, error) {
	var opts tabula.Options
	for _, name := range f.fields {
		opts.Fields = append(opts.Fields, tabula.ParseField(strings.TrimSpace(name)))
	}
	if len(f.headers) > 0 {
		opts.Headers = make(map[tabula.Field]string, len(f.headers))
		for k, v := range f.headers {
			opts.Headers[tabula.ParseField(k)] = v
		}
	}
	opts.HeaderList = f.headerList
	opts.NoHeaders = f.noHeaders
	if len(f.fieldLengths) > 0 {
		opts.FieldLengths = make(map[tabula.Field]int, len(f.fieldLengths))
		for k, v := range f.fieldLengths {
			opts.FieldLengths[tabula.ParseField(k)] = v
		}
	}

	switch {
	case f.noLimit:
		opts.MaxWidth = tabula.NoLimit
	case f.maxWidth < 0:
		return opts, fmt.Errorf("--max-width must not be negative, got %d", f.maxWidth)
	default:
		opts.MaxWidth = f.maxWidth
	}

	opts.Number = f.number
	opts.Vertical = f.vertical
	if f.variant != "" {
		v, err := tabula.ParseVariant(f.variant)
		if err != nil {
			return opts, err
		}
		opts = opts.WithVariant(v)
	}

	for _, raw := range f.chains {
		field, path, err := splitAssignment("--chain", raw)
		if err != nil {
			return opts, err
		}
		opts.Filters = setFilter(opts.Filters, field, tabula.Chain(strings.Split(path, ".")...))
	}
	for _, raw := range f.filters {
		field, src, err := splitAssignment("--filter", raw)
		if err != nil {
			return opts, err
		}
		filter, err := ev.Filter(src)
		if err != nil {
			return opts, fmt.Errorf("--filter %s: %w", field, err)
		}
		opts.Filters = setFilter(opts.Filters, field, filter)
	}
	return opts, nil
}

func setFilter(filters map[tabula.Field]tabula.Filter, field string, f tabula.Filter) map[tabula.Field]tabula.Filter {
	if filters == nil {
		filters = make(map[tabula.Field]tabula.Filter)
	}
	filters[tabula.ParseField(field)] = f
	return filters
}

// splitAssignment splits "field=value" at the first equals sign.
func splitAssignment(flag, raw string) (string, string, error) {
	field, value, ok := strings.Cut(raw, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" || value == "" {
		return "", "", fmt.Errorf("%s expects field=value, got %q", flag, raw)
	}
	return field, value, nil
}
