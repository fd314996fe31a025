package tabula

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	borderCorner     = "+"
	borderHorizontal = "-"
	borderVertical   = "|"
)

// Column is one resolved column of a layout.
type Column struct {
	Field  Field
	Header string
	Width  int
}

// Layout is the resolved shape of a horizontal table: its columns with final
// widths and the untruncated cell grid. It is recomputed on every render.
type Layout struct {
	Columns []Column
	Headers bool
	Rows    [][]string
}

// NewLayout resolves fields, extracts cells, and allocates column widths for
// records. It fails with ErrTooManyFields when the budget cannot be met.
func NewLayout(records []Record, opts Options) (Layout, error) {
	fields := resolveFields(records, opts)
	headers := resolveHeaders(fields, opts)
	rows := extractGrid(records, fields, opts.Filters)

	widths := naturalWidths(fields, headers, rows, opts.FieldLengths)
	if maxWidth, ok := opts.budget(); ok {
		if err := RestrictFieldLengths(widths, maxWidth); err != nil {
			return Layout{}, err
		}
	}

	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Field: f, Width: widths[i]}
		if headers != nil {
			cols[i].Header = headers[i]
		}
	}
	return Layout{Columns: cols, Headers: headers != nil, Rows: rows}, nil
}

// Widths returns the final width of every column in order.
func (l Layout) Widths() []int {
	widths := make([]int, len(l.Columns))
	for i, c := range l.Columns {
		widths[i] = c.Width
	}
	return widths
}

// TotalWidth returns the width of every rendered table line.
func (l Layout) TotalWidth() int {
	return sum(l.Widths()) + borderOverhead(len(l.Columns))
}

func renderTable(records []Record, opts Options) (string, error) {
	if len(records) == 0 {
		return footer(0), nil
	}
	l, err := NewLayout(records, opts)
	if err != nil {
		return "", err
	}
	widths := l.Widths()

	var sb strings.Builder
	drawHLine(&sb, widths)
	if l.Headers {
		header := make([]string, len(l.Columns))
		for i, c := range l.Columns {
			header[i] = c.Header
		}
		drawRow(&sb, header, widths)
		drawHLine(&sb, widths)
	}
	for _, row := range l.Rows {
		drawRow(&sb, row, widths)
	}
	drawHLine(&sb, widths)
	sb.WriteString(footer(len(records)))
	return sb.String(), nil
}

func drawHLine(sb *strings.Builder, widths []int) {
	sb.WriteString(borderCorner)
	for _, width := range widths {
		sb.WriteString(strings.Repeat(borderHorizontal, width+2))
		sb.WriteString(borderCorner)
	}
	sb.WriteString("\n")
}

func drawRow(sb *strings.Builder, cells []string, widths []int) {
	sb.WriteString(borderVertical)
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(" ")
		sb.WriteString(formatTableCell(cell, width))
		sb.WriteString(" ")
		sb.WriteString(borderVertical)
	}
	sb.WriteString("\n")
}

// formatTableCell truncates s to width and left-justifies it. Columns
// narrower than the ellipsis are cut without a marker.
func formatTableCell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		if width < EllipsisWidth {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, ellipsis)
		}
	}
	return padRight(s, width)
}

func padRight(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}
