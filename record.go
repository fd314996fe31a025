package tabula

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
)

type fieldKind uint8

const (
	fieldName fieldKind = iota
	fieldIndex
	fieldNumber
	fieldValue
)

// Field identifies a column across all records. Fields are comparable and
// may be used as map keys.
type Field struct {
	kind  fieldKind
	name  string
	index int
}

// Synthetic fields.
var (
	// NumberField holds the 1-based row index when Options.Number is set.
	NumberField = Field{kind: fieldNumber, name: "number"}

	// ValueField holds the record itself, for scalars and objects without
	// declared columns.
	ValueField = Field{kind: fieldValue, name: "value"}
)

// Name returns the field addressed by key or accessor name.
func Name(name string) Field { return Field{kind: fieldName, name: name} }

// Index returns the field addressed by position.
func Index(i int) Field { return Field{kind: fieldIndex, index: i} }

// Names is shorthand for a list of named fields.
func Names(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Name(n)
	}
	return out
}

// String returns the default header label.
func (f Field) String() string {
	if f.kind == fieldIndex {
		return strconv.Itoa(f.index)
	}
	return f.name
}

// ParseField reads a CLI-style field token: all-digit tokens become Index
// fields, anything else a Name.
func ParseField(s string) Field {
	if i, err := strconv.Atoi(s); err == nil && i >= 0 {
		return Index(i)
	}
	return Name(s)
}

// Kind is the shape of a record.
type Kind int

const (
	KindMap Kind = iota
	KindSeq
	KindObject
	KindScalar
)

var kindNames = [...]string{"map", "seq", "object", "scalar"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Pair is a single key-value entry of an ordered map record.
type Pair struct {
	Key   string
	Value any
}

// Getter is implemented by objects that resolve their own named accessors.
type Getter interface {
	Get(name string) (any, bool)
}

// Columned declares the default columns of an object record.
// Default: the single ValueField.
type Columned interface {
	Columns() []string
}

// Record is one row of input, tagged with its shape.
type Record struct {
	kind   Kind
	pairs  []Pair
	values []any
	object any
}

// Map returns an ordered map record. Later duplicates of a key are ignored.
func Map(pairs ...Pair) Record {
	return Record{kind: KindMap, pairs: slices.Clone(pairs)}
}

// FromMap returns a map record with keys in sorted order.
func FromMap[V any](m map[string]V) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Key: k, Value: m[k]}
	}
	return Record{kind: KindMap, pairs: pairs}
}

// Seq returns a positional record.
func Seq(values ...any) Record {
	return Record{kind: KindSeq, values: slices.Clone(values)}
}

// Object returns a record whose fields are read through named accessors.
func Object(v any) Record { return Record{kind: KindObject, object: v} }

// Scalar returns a record with the single ValueField.
func Scalar(v any) Record { return Record{kind: KindScalar, object: v} }

// Kind reports the record's shape.
func (r Record) Kind() Kind { return r.kind }

// String renders the record on one line without table layout: maps as
// map[k:v ...] in key order, sequences as [v ...], and other records as
// their value.
func (r Record) String() string {
	var b strings.Builder
	switch r.kind {
	case KindMap:
		b.WriteString("map[")
		for i, p := range r.pairs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(p.Key)
			b.WriteByte(':')
			b.WriteString(stringify(p.Value))
		}
		b.WriteByte(']')
	case KindSeq:
		b.WriteByte('[')
		for i, v := range r.values {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(stringify(v))
		}
		b.WriteByte(']')
	default:
		b.WriteString(stringify(r.object))
	}
	return b.String()
}

// NewRecord classifies v. Records pass through; []Pair and string-keyed
// maps become map records; slices and arrays become sequences; structs,
// pointers to structs, and values implementing Getter or Columned become
// objects; everything else is a scalar.
func NewRecord(v any) Record {
	switch t := v.(type) {
	case Record:
		return t
	case []Pair:
		return Map(t...)
	case map[string]any:
		return FromMap(t)
	case []any:
		return Seq(t...)
	case Getter, Columned:
		if isNilPointer(v) {
			return Scalar(v)
		}
		return Object(v)
	case nil, string, []byte, error:
		return Scalar(v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return mapFromReflect(rv)
		}
	case reflect.Slice, reflect.Array:
		values := make([]any, rv.Len())
		for i := range values {
			values[i] = rv.Index(i).Interface()
		}
		return Record{kind: KindSeq, values: values}
	case reflect.Struct:
		return Object(v)
	case reflect.Pointer:
		if !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			return Object(v)
		}
	}
	return Scalar(v)
}

func mapFromReflect(rv reflect.Value) Record {
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Key: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	return Record{kind: KindMap, pairs: pairs}
}

// Records normalizes v into a record set. A slice or array yields one record
// per element, a nil value yields none, and any other value becomes a
// single-record set.
func Records(v any) []Record {
	switch t := v.(type) {
	case nil:
		return nil
	case []Record:
		return slices.Clone(t)
	case Record:
		return []Record{t}
	case []Pair, string, []byte:
		return []Record{NewRecord(v)}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []Record{NewRecord(v)}
	}
	out := make([]Record, rv.Len())
	for i := range out {
		out[i] = NewRecord(rv.Index(i).Interface())
	}
	return out
}

// defaultFields derives the column list from the record's shape.
func (r Record) defaultFields() []Field {
	switch r.kind {
	case KindMap:
		fields := make([]Field, 0, len(r.pairs))
		seen := make(map[string]bool, len(r.pairs))
		for _, p := range r.pairs {
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			fields = append(fields, Name(p.Key))
		}
		return fields
	case KindSeq:
		fields := make([]Field, len(r.values))
		for i := range r.values {
			fields[i] = Index(i)
		}
		return fields
	case KindObject:
		if c, ok := r.object.(Columned); ok {
			return Names(c.Columns()...)
		}
	}
	return []Field{ValueField}
}

// lookup returns the raw value of field f. ok is false when the record has
// no such key, index, or accessor.
func (r Record) lookup(f Field) (any, bool) {
	if f.kind == fieldValue {
		if r.kind == KindScalar || r.kind == KindObject {
			return r.object, true
		}
		return nil, false
	}
	switch r.kind {
	case KindMap:
		key := f.String()
		for _, p := range r.pairs {
			if p.Key == key {
				return p.Value, true
			}
		}
	case KindSeq:
		if f.kind == fieldIndex && f.index < len(r.values) {
			return r.values[f.index], true
		}
	case KindObject, KindScalar:
		if f.kind == fieldName {
			return access(r.object, f.name)
		}
	}
	return nil, false
}

// access resolves one named accessor on an arbitrary value. Getter and
// Record come first, then exported zero-arg methods, then map keys, slice
// indexes, and struct fields. Method and field names match case-insensitively.
func access(v any, name string) (any, bool) {
	if isNilPointer(v) {
		return nil, false
	}
	switch t := v.(type) {
	case nil:
		return nil, false
	case Getter:
		return t.Get(name)
	case Record:
		return t.lookup(ParseField(name))
	}
	rv := reflect.ValueOf(v)
	if m, ok := method(rv, name); ok {
		return m, true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		fv := rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
		if fv.IsValid() && fv.CanInterface() {
			return fv.Interface(), true
		}
	}
	return nil, false
}

func method(rv reflect.Value, name string) (any, bool) {
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil, false
	}
	t := rv.Type()
	for i := range t.NumMethod() {
		m := t.Method(i)
		if !strings.EqualFold(m.Name, name) || m.Type.NumIn() != 1 || m.Type.NumOut() == 0 {
			continue
		}
		return rv.Method(i).Call(nil)[0].Interface(), true
	}
	return nil, false
}

// isNilPointer reports whether v holds a typed nil pointer.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
