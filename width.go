package tabula

import (
	"fmt"
	"slices"

	"github.com/mattn/go-runewidth"
)

const (
	// EllipsisWidth is the width of the "..." truncation marker and the
	// smallest column that can still show it.
	EllipsisWidth = 3

	// OutlierRatio is how many times wider than every other column the
	// longest column must be before it alone absorbs the overflow.
	OutlierRatio = 2

	ellipsis = "..."
)

// borderOverhead returns the characters a bordered row spends outside cell
// content: "| " before and " " after every cell, plus the closing "|".
func borderOverhead(n int) int {
	return 3*n + 1
}

// naturalWidths returns the widest header or cell of each column, replaced
// by any explicit override.
func naturalWidths(fields []Field, headers []string, rows [][]string, overrides map[Field]int) []int {
	widths := make([]int, len(fields))
	for i, h := range headers {
		if w := runewidth.StringWidth(h); w > widths[i] {
			widths[i] = w
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, f := range fields {
		if w, ok := optionFor(overrides, f); ok && w > 0 {
			widths[i] = w
		}
	}
	return widths
}

// RestrictFieldLengths shrinks lengths in place so a bordered table of those
// columns fits within maxWidth characters. It returns ErrTooManyFields when
// even one character per column does not fit.
//
// The longest column is shrunk alone when it is at least OutlierRatio times
// wider than the next. Otherwise, or when that is not enough, every column
// shrinks in proportion to its width. When proportional widths would squeeze
// a column below the ellipsis, all columns get the same width, budget / n,
// and any remainder is left unused.
func RestrictFieldLengths(lengths []int, maxWidth int) error {
	n := len(lengths)
	if n == 0 {
		return nil
	}
	budget := maxWidth - borderOverhead(n)
	if n > budget {
		return fmt.Errorf("%w: %d fields need at least %d columns, have %d",
			ErrTooManyFields, n, n+borderOverhead(n), maxWidth)
	}
	if sum(lengths) <= budget {
		return nil
	}
	if shrinkOutlier(lengths, budget) {
		return nil
	}
	if shrinkProportionally(lengths, budget) {
		return nil
	}
	equalize(lengths, budget)
	return nil
}

// shrinkOutlier narrows the longest column by the overflow, never below
// EllipsisWidth. It reports whether the budget is now met.
func shrinkOutlier(lengths []int, budget int) bool {
	longest := 0
	for i, l := range lengths {
		if l > lengths[longest] {
			longest = i
		}
	}
	second := 0
	for i, l := range lengths {
		if i != longest && l > second {
			second = l
		}
	}
	if len(lengths) > 1 && lengths[longest] < OutlierRatio*second {
		return false
	}
	shrunk := lengths[longest] - (sum(lengths) - budget)
	if shrunk < EllipsisWidth {
		shrunk = min(EllipsisWidth, lengths[longest])
	}
	lengths[longest] = shrunk
	return sum(lengths) <= budget
}

// shrinkProportionally scales every column to its share of the budget,
// rounding down with a floor of one. The result is kept only when it fits
// and no column lost the room for its ellipsis.
func shrinkProportionally(lengths []int, budget int) bool {
	total := sum(lengths)
	scaled := slices.Clone(lengths)
	for i, l := range lengths {
		scaled[i] = max(1, l*budget/total)
		if scaled[i] < min(l, EllipsisWidth) {
			return false
		}
	}
	if sum(scaled) > budget {
		return false
	}
	copy(lengths, scaled)
	return true
}

// equalize gives every column budget / n characters.
func equalize(lengths []int, budget int) {
	each := budget / len(lengths)
	for i := range lengths {
		lengths[i] = each
	}
}

func sum(lengths []int) int {
	total := 0
	for _, l := range lengths {
		total += l
	}
	return total
}
