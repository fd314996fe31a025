package tabula

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrTooManyFields      = errors.New("too many fields for the available width")
	ErrUnsupportedVariant = errors.New("unsupported variant")
)

// Variant selects how records are laid out.
type Variant string

const (
	Table    Variant = "table"
	Vertical Variant = "vertical"
)

var variants = []Variant{Table, Vertical}

// String returns the variant name.
func (v Variant) String() string { return string(v) }

// Variants returns all supported variant names.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// ParseVariant parses a variant name such as a CLI flag value.
func ParseVariant(s string) (Variant, error) {
	for _, v := range variants {
		if string(v) == strings.ToLower(s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedVariant, s)
}

const (
	// DefaultWidth is the width budget used when neither MaxWidth nor
	// WidthFunc supplies one.
	DefaultWidth = 120

	// NoLimit disables the width budget when set as MaxWidth.
	NoLimit = -1
)

// Options controls a single render call. Options is passed by value and is
// never modified; slices and maps it holds are only read.
type Options struct {
	// Fields lists the columns to show in order. Empty means derive them from
	// the first record.
	Fields []Field

	// Headers relabels columns by field. Fields without an entry use their
	// String form.
	Headers map[Field]string

	// HeaderList relabels columns positionally. The synthetic number column
	// is not counted.
	HeaderList []string

	// NoHeaders suppresses the header row.
	NoHeaders bool

	// FieldLengths replaces the natural width of a column. Entries for fields
	// not shown are ignored.
	FieldLengths map[Field]int

	// MaxWidth is the total width budget including borders. Zero asks
	// WidthFunc (or DefaultWidth); NoLimit renders every column at full width.
	MaxWidth int

	// WidthFunc supplies the budget when MaxWidth is zero, typically a
	// terminal size probe.
	WidthFunc func() int

	// Filters transform raw values before they are stringified.
	Filters map[Field]Filter

	// Number prepends a row counter column.
	Number bool

	// Vertical renders one field per line instead of a grid.
	Vertical bool
}

// WithVariant returns a copy of o rendering as v.
func (o Options) WithVariant(v Variant) Options {
	o.Vertical = v == Vertical
	return o
}

func (o Options) budget() (int, bool) {
	switch {
	case o.MaxWidth == NoLimit:
		return 0, false
	case o.MaxWidth > 0:
		return o.MaxWidth, true
	case o.WidthFunc != nil:
		if w := o.WidthFunc(); w > 0 {
			return w, true
		}
	}
	return DefaultWidth, true
}

// Render lays out records and returns the text block. The result has no
// trailing newline; an empty record set yields exactly "0 rows in set".
func Render(records []Record, opts Options) (string, error) {
	if opts.Vertical {
		return renderVertical(records, opts), nil
	}
	return renderTable(records, opts)
}

// Write lays out items and writes the text block followed by a newline.
// Nothing is written when layout fails.
func Write[T any](w io.Writer, opts Options, items ...T) error {
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = NewRecord(item)
	}
	out, err := Render(records, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

// Marshal lays out items and returns the bytes.
func Marshal[T any](opts Options, items ...T) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, opts, items...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func footer(n int) string {
	noun := "rows"
	if n == 1 {
		noun = "row"
	}
	return fmt.Sprintf("%d %s in set", n, noun)
}
