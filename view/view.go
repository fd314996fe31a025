// Package view sits between the layout engine and a terminal. It detects the
// screen size, applies configured defaults, and prints or pages rendered
// tables. The engine itself never touches the terminal.
package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"

	"github.com/bjaus/tabula"
)

// ErrAlreadyEnabled is returned by Enable on an enabled view.
var ErrAlreadyEnabled = errors.New("view already enabled")

// RenderFunc receives finished output. The default pages or prints it; a
// replacement could write it to a file instead.
type RenderFunc func(ctx context.Context, output string) error

// View holds display state: the switches, the screen size, and the pager.
// It is safe for concurrent use.
type View struct {
	mu      sync.Mutex
	cfg     Config
	enabled bool
	width   int
	height  int
	pager   *Pager
	out     io.Writer
	log     logr.Logger
	detect  func() (int, int)
	render  RenderFunc
}

// Option configures a View.
type Option func(*View)

// WithOutput sets where output is printed and paged. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(v *View) { v.out = w }
}

// WithLogger sets the logger. Defaults to logr.Discard().
func WithLogger(l logr.Logger) Option {
	return func(v *View) { v.log = l }
}

// WithSizeDetector replaces terminal size detection.
func WithSizeDetector(fn func() (width, height int)) Option {
	return func(v *View) { v.detect = fn }
}

// New returns a disabled view for cfg.
func New(cfg Config, opts ...Option) *View {
	v := &View{
		cfg:    MergeConfig(DefaultConfig(), cfg),
		out:    os.Stdout,
		log:    logr.Discard(),
		detect: DetectTerminalSize,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.width, v.height = determineSize(v.cfg.Width, v.cfg.Height, v.detect)
	v.pager = NewPager(v.width, v.height, v.cfg.PagerCommand)
	v.pager.SetOutput(v.out)
	return v
}

// Enable turns the view on with cfg merged over the current configuration
// and re-reads the screen size.
func (v *View) Enable(cfg Config) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.enabled {
		return ErrAlreadyEnabled
	}
	v.enabled = true
	v.cfg = MergeConfig(v.cfg, cfg)
	if cfg.PagerCommand != "" {
		v.pager.SetCommand(cfg.PagerCommand)
	}
	v.resize(v.cfg.Width, v.cfg.Height)
	v.log.V(1).Info("view enabled", "width", v.width, "height", v.height,
		"pager", v.cfg.PagerEnabled(), "formatter", v.cfg.FormatterEnabled())
	return nil
}

// Enabled reports whether the view is on.
func (v *View) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

// Disable turns the view off.
func (v *View) Disable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = false
}

// TogglePager flips the pager switch and returns the new state.
func (v *View) TogglePager() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	on := !v.cfg.PagerEnabled()
	v.cfg.Pager = &on
	return on
}

// ToggleFormatter flips the formatter switch and returns the new state.
func (v *View) ToggleFormatter() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	on := !v.cfg.FormatterEnabled()
	v.cfg.Formatter = &on
	return on
}

// Config returns a copy of the current configuration.
func (v *View) Config() Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// Resize sets the screen size used for tables and paging. Zero dimensions
// are detected from the terminal.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resize(width, height)
}

func (v *View) resize(width, height int) {
	v.width, v.height = determineSize(width, height, v.detect)
	v.cfg.Width, v.cfg.Height = v.width, v.height
	v.pager.Resize(v.width, v.height)
}

// Width returns the current screen width.
func (v *View) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// Height returns the current screen height.
func (v *View) Height() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// RenderMethod returns the function that receives finished output.
func (v *View) RenderMethod() RenderFunc {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.render == nil {
		return v.defaultRender
	}
	return v.render
}

// SetRenderMethod replaces the function that receives finished output.
func (v *View) SetRenderMethod(fn RenderFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.render = fn
}

// ResetRenderMethod restores paging or printing.
func (v *View) ResetRenderMethod() { v.SetRenderMethod(nil) }

func (v *View) defaultRender(ctx context.Context, output string) error {
	paged, err := v.PageOutput(ctx, output)
	if err != nil || paged {
		return err
	}
	_, err = fmt.Fprintln(v.out, output)
	return err
}

// PageOutput pages output when the view is enabled, the pager is on, and the
// output does not fit the screen. It reports whether the output was paged. A
// missing pager command is logged and treated as not paged.
func (v *View) PageOutput(ctx context.Context, output string) (bool, error) {
	v.mu.Lock()
	active := v.enabled && v.cfg.PagerEnabled() && v.pager.ActivatedBy(output)
	v.mu.Unlock()
	if !active {
		return false, nil
	}
	if err := v.pager.Page(ctx, output); err != nil {
		if errors.Is(err, ErrNoPager) {
			v.log.V(1).Info("paging skipped", "reason", err.Error())
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Render lays out records with the configured table defaults under opts and
// hands the text to the render method. It reports false without output when
// the view or its formatter is off. Options without a width budget use the
// view's width.
func (v *View) Render(ctx context.Context, records []tabula.Record, opts tabula.Options) (bool, error) {
	v.mu.Lock()
	active := v.enabled && v.cfg.FormatterEnabled()
	defaults := v.cfg.Table.Options()
	width := v.width
	v.mu.Unlock()
	if !active {
		return false, nil
	}

	opts = MergeOptions(defaults, opts)
	if opts.MaxWidth == 0 && opts.WidthFunc == nil {
		opts.WidthFunc = func() int { return width }
	}
	out, err := tabula.Render(records, opts)
	if err != nil {
		v.log.Error(err, "render failed", "records", len(records), "width", width)
		return false, err
	}
	if err := v.RenderMethod()(ctx, out); err != nil {
		return false, err
	}
	return true, nil
}

// CaptureAndRender runs fn against a buffer and hands what it wrote to the
// render method, so ordinary output can be paged.
func (v *View) CaptureAndRender(ctx context.Context, fn func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	return v.RenderMethod()(ctx, buf.String())
}
