package tabula

import (
	"fmt"
	"slices"
	"strconv"
)

type filterKind uint8

const (
	filterDirect filterKind = iota + 1
	filterChain
)

// Filter transforms a raw field value before it is stringified.
type Filter struct {
	kind      filterKind
	fn        func(any) any
	accessors []string
}

// Direct returns a filter applying fn to the raw value.
func Direct(fn func(any) any) Filter {
	return Filter{kind: filterDirect, fn: fn}
}

// Chain returns a filter that resolves each accessor in turn, starting from
// the raw value. Accessors name map keys, slice indexes, struct fields, or
// zero-arg methods.
func Chain(accessors ...string) Filter {
	return Filter{kind: filterChain, accessors: slices.Clone(accessors)}
}

// Apply runs the filter on v. ok is false when a chain step cannot be
// resolved.
func (f Filter) Apply(v any) (any, bool) {
	switch f.kind {
	case filterDirect:
		if f.fn == nil {
			return v, true
		}
		return f.fn(v), true
	case filterChain:
		for _, name := range f.accessors {
			next, ok := access(v, name)
			if !ok {
				return nil, false
			}
			v = next
		}
	}
	return v, true
}

// extractCell returns the display string of field f for the record at row.
// Missing keys, indexes, and chain steps render as the empty string.
func extractCell(r Record, f Field, row int, filters map[Field]Filter) string {
	if f == NumberField {
		return strconv.Itoa(row + 1)
	}
	v, ok := r.lookup(f)
	if !ok {
		return ""
	}
	if filter, ok := optionFor(filters, f); ok {
		if v, ok = filter.Apply(v); !ok {
			return ""
		}
	}
	return stringify(v)
}

func stringify(v any) string {
	if isNilPointer(v) {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	default:
		return fmt.Sprint(v)
	}
}

// extractGrid materializes every cell of records.
func extractGrid(records []Record, fields []Field, filters map[Field]Filter) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = extractCell(r, f, i, filters)
		}
		rows[i] = row
	}
	return rows
}
