package view

import (
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	DefaultWidth  = 120
	DefaultHeight = 40
)

// sizeProbe reports the size of the terminal behind fd.
type sizeProbe func(fd int) (width, height int, err error)

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr and stdin, then the COLUMNS and LINES variables.
// Dimensions that cannot be found fall back to DefaultWidth and DefaultHeight.
func DetectTerminalSize() (width, height int) {
	fds := []int{int(os.Stdout.Fd()), int(os.Stderr.Fd()), int(os.Stdin.Fd())}
	return detectSize(term.GetSize, os.Getenv, fds)
}

func detectSize(probe sizeProbe, getenv func(string) string, fds []int) (width, height int) {
	for _, fd := range fds {
		if w, h, err := probe(fd); err == nil && (w > 0 || h > 0) {
			width, height = w, h
			break
		}
	}
	if width <= 0 {
		width = envInt(getenv, "COLUMNS")
	}
	if height <= 0 {
		height = envInt(getenv, "LINES")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

func envInt(getenv func(string) string, key string) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// determineSize keeps explicit dimensions and detects the rest.
func determineSize(width, height int, detect func() (int, int)) (int, int) {
	if width > 0 && height > 0 {
		return width, height
	}
	w, h := detect()
	if width <= 0 {
		width = w
	}
	if height <= 0 {
		height = h
	}
	return width, height
}

// IsTerminal reports whether w writes to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
