package tabula

import (
	"fmt"
	"strings"
)

// renderVertical lists each record as a numbered block of "label: value"
// lines. Widths are not allocated and nothing is truncated.
func renderVertical(records []Record, opts Options) string {
	if len(records) == 0 {
		return footer(0)
	}
	fields := resolveFields(records, opts)
	names := labels(fields, opts)
	rows := extractGrid(records, fields, opts.Filters)

	var sb strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&sb, "*** %d. row ***\n", i+1)
		for j, cell := range row {
			sb.WriteString(names[j])
			sb.WriteString(": ")
			sb.WriteString(cell)
			sb.WriteString("\n")
		}
	}
	sb.WriteString(footer(len(records)))
	return sb.String()
}
