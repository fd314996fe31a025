package tabula

import (
	"slices"
	"strconv"
)

// resolveFields returns the ordered columns for records. Explicit fields are
// copied so that prepending the number column never touches opts.Fields.
func resolveFields(records []Record, opts Options) []Field {
	var fields []Field
	switch {
	case len(opts.Fields) > 0:
		fields = slices.Clone(opts.Fields)
	case len(records) > 0:
		fields = records[0].defaultFields()
	default:
		fields = []Field{}
	}
	if opts.Number {
		fields = slices.Insert(fields, 0, NumberField)
	}
	return fields
}

// resolveHeaders returns one label per field, or nil when headers are
// suppressed.
func resolveHeaders(fields []Field, opts Options) []string {
	if opts.NoHeaders {
		return nil
	}
	return labels(fields, opts)
}

// labels returns one label per field regardless of NoHeaders. Vertical
// output always needs them.
func labels(fields []Field, opts Options) []string {
	out := make([]string, len(fields))
	pos := 0
	for i, f := range fields {
		out[i] = f.String()
		if f == NumberField {
			continue
		}
		if pos < len(opts.HeaderList) {
			out[i] = opts.HeaderList[pos]
		}
		pos++
		if h, ok := optionFor(opts.Headers, f); ok {
			out[i] = h
		}
	}
	return out
}

// optionFor returns the per-field option for f. Name("2") and Index(2) address
// the same entry, so a digit token from ParseField still reaches a map key
// spelled with digits.
func optionFor[V any](m map[Field]V, f Field) (V, bool) {
	if v, ok := m[f]; ok {
		return v, true
	}
	switch f.kind {
	case fieldName:
		if i, err := strconv.Atoi(f.name); err == nil && i >= 0 {
			v, ok := m[Index(i)]
			return v, ok
		}
	case fieldIndex:
		v, ok := m[Name(strconv.Itoa(f.index))]
		return v, ok
	}
	var zero V
	return zero, false
}
