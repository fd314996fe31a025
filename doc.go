// Package tabula lays out heterogeneous records as fixed-width ASCII tables.
//
// Records may be ordered maps, positional sequences, or opaque objects queried
// through named accessors. The central entry points are [Render], [Write], and
// [Marshal], which accept [Options] and the records to show:
//
//	out, err := tabula.Render(tabula.Records(rows), tabula.Options{MaxWidth: 80})
//
// # Records
//
// A [Record] is a closed variant resolved once at the boundary:
//
//   - [Map] / [FromMap]: named fields in key order
//   - [Seq]: positional fields addressed by [Index]
//   - [Object]: named accessors ([Getter], struct fields, zero-arg methods)
//   - [Scalar]: a single [ValueField] holding the value itself
//
// Use [NewRecord] or [Records] to classify arbitrary Go values.
//
// # Fields
//
// Without [Options.Fields], the columns come from the shape of the first
// record. [Options.Number] prepends a [NumberField] counting rows from one.
// Unknown fields render as empty columns rather than failing.
//
// # Widths
//
// Each column starts at its natural width (widest header or cell), replaced by
// [Options.FieldLengths] when given. When the table would exceed the width
// budget, [RestrictFieldLengths] shrinks the single outlier column first, then
// all columns proportionally, and finally falls back to equal widths. Cells
// longer than their column end in "...".
//
// # Variants
//
// [Table] renders a bordered grid; [Vertical] renders one "field: value" block
// per record. Both end with a "<n> rows in set" footer.
//
// # Errors
//
//   - [ErrTooManyFields]: the columns cannot fit the budget even at width 1
//   - [ErrUnsupportedVariant]: unknown variant name
package tabula
