package tabula

import (
	"io"
	"iter"
)

// WriteIter collects items from an iterator and writes them as one table.
// Column widths depend on every row, so nothing is written until the
// sequence is exhausted.
func WriteIter[T any](w io.Writer, opts Options, seq iter.Seq[T]) error {
	return Write(w, opts, collect(seq)...)
}

// WriteChan collects items from a channel until it is closed and writes them.
// It is a thin wrapper around [WriteIter].
func WriteChan[T any](w io.Writer, opts Options, ch <-chan T) error {
	return WriteIter(w, opts, chanToIter(ch))
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}

func collect[T any](seq iter.Seq[T]) []T {
	var items []T
	for item := range seq {
		items = append(items, item)
	}
	return items
}
