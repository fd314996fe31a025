package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/tabula"
)

func fixedSize(w, h int) Option {
	return WithSizeDetector(func() (int, int) { return w, h })
}

func newTestView(t *testing.T, cfg Config, w, h int) (*View, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(cfg, WithOutput(&buf), fixedSize(w, h)), &buf
}

func enabled(t *testing.T, v *View) *View {
	t.Helper()
	require.NoError(t, v.Enable(Config{}))
	return v
}

var sample = []tabula.Record{
	tabula.Map(tabula.Pair{Key: "a", Value: 1}, tabula.Pair{Key: "b", Value: 2}),
	tabula.Map(tabula.Pair{Key: "a", Value: 3}, tabula.Pair{Key: "b", Value: 4}),
}

const sampleTable = `+---+---+
| a | b |
+---+---+
| 1 | 2 |
| 3 | 4 |
+---+---+
2 rows in set
`

func TestNewDetectsSize(t *testing.T) {
	t.Parallel()
	v, _ := newTestView(t, Config{}, 100, 30)
	assert.Equal(t, 100, v.Width())
	assert.Equal(t, 30, v.Height())

	v, _ = newTestView(t, Config{Width: 70}, 100, 30)
	assert.Equal(t, 70, v.Width())
	assert.Equal(t, 30, v.Height())
}

func TestEnableDisable(t *testing.T) {
	t.Parallel()
	v, _ := newTestView(t, Config{}, 100, 30)
	assert.False(t, v.Enabled())

	require.NoError(t, v.Enable(Config{Width: 60}))
	assert.True(t, v.Enabled())
	assert.Equal(t, 60, v.Width())
	assert.ErrorIs(t, v.Enable(Config{}), ErrAlreadyEnabled)

	v.Disable()
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Enable(Config{}))
}

func TestToggles(t *testing.T) {
	t.Parallel()
	v, _ := newTestView(t, Config{}, 100, 30)
	assert.False(t, v.TogglePager())
	assert.False(t, v.Config().PagerEnabled())
	assert.True(t, v.TogglePager())

	assert.False(t, v.ToggleFormatter())
	assert.False(t, v.Config().FormatterEnabled())
	assert.True(t, v.ToggleFormatter())
}

func TestResize(t *testing.T) {
	t.Parallel()
	v, _ := newTestView(t, Config{}, 100, 30)
	v.Resize(50, 10)
	assert.Equal(t, 50, v.Width())
	assert.Equal(t, 10, v.Height())
	assert.Equal(t, 50, v.Config().Width)

	v.Resize(0, 0)
	assert.Equal(t, 100, v.Width())
	assert.Equal(t, 30, v.Height())
}

func TestRenderPrints(t *testing.T) {
	t.Parallel()
	v, buf := newTestView(t, Config{}, 100, 30)
	enabled(t, v)

	ok, err := v.Render(context.Background(), sample, tabula.Options{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleTable, buf.String())
}

func TestRenderInactive(t *testing.T) {
	t.Parallel()
	tests := map[string]func(t *testing.T, v *View){
		"disabled":      func(*testing.T, *View) {},
		"formatter off": func(t *testing.T, v *View) { enabled(t, v).ToggleFormatter() },
	}
	for name, setup := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v, buf := newTestView(t, Config{}, 100, 30)
			setup(t, v)
			ok, err := v.Render(context.Background(), sample, tabula.Options{})
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, buf.String())
		})
	}
}

func TestRenderUsesViewWidth(t *testing.T) {
	t.Parallel()
	v, _ := newTestView(t, Config{}, 30, 30)
	enabled(t, v)
	var got string
	v.SetRenderMethod(func(_ context.Context, output string) error {
		got = output
		return nil
	})

	records := []tabula.Record{tabula.Map(
		tabula.Pair{Key: "a", Value: strings.Repeat("A", 50)},
		tabula.Pair{Key: "b", Value: 2},
		tabula.Pair{Key: "c", Value: strings.Repeat("C", 10)},
	)}
	_, err := v.Render(context.Background(), records, tabula.Options{})
	require.NoError(t, err)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 30)
	}
	assert.Contains(t, got, "| AAAAAA... | 2 | CCCCCCCCCC |")
}

func TestRenderConfiguredDefaults(t *testing.T) {
	t.Parallel()
	cfg := Config{Table: TableConfig{Fields: []string{"b"}, Headers: map[string]string{"b": "B"}}}
	v, buf := newTestView(t, cfg, 100, 30)
	enabled(t, v)

	_, err := v.Render(context.Background(), sample, tabula.Options{})
	require.NoError(t, err)
	assert.Equal(t, "+---+\n| B |\n+---+\n| 2 |\n| 4 |\n+---+\n2 rows in set\n", buf.String())

	buf.Reset()
	_, err = v.Render(context.Background(), sample, tabula.Options{Fields: tabula.Names("a")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "| a |")
}

func TestRenderError(t *testing.T) {
	t.Parallel()
	v, buf := newTestView(t, Config{}, 100, 30)
	enabled(t, v)
	ok, err := v.Render(context.Background(), sample, tabula.Options{MaxWidth: 6})
	require.ErrorIs(t, err, tabula.ErrTooManyFields)
	assert.False(t, ok)
	assert.Empty(t, buf.String())
}

func TestRenderMethodReplaceAndReset(t *testing.T) {
	t.Parallel()
	v, buf := newTestView(t, Config{}, 100, 30)
	enabled(t, v)

	var captured []string
	v.SetRenderMethod(func(_ context.Context, output string) error {
		captured = append(captured, output)
		return nil
	})
	_, err := v.Render(context.Background(), sample, tabula.Options{})
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, strings.TrimSuffix(sampleTable, "\n"), captured[0])
	assert.Empty(t, buf.String())

	v.ResetRenderMethod()
	_, err = v.Render(context.Background(), sample, tabula.Options{})
	require.NoError(t, err)
	assert.Equal(t, sampleTable, buf.String())
}

func TestRenderMethodError(t *testing.T) {
	t.Parallel()
	v, _ := newTestView(t, Config{}, 100, 30)
	enabled(t, v)
	errSink := errors.New("sink closed")
	v.SetRenderMethod(func(context.Context, string) error { return errSink })
	ok, err := v.Render(context.Background(), sample, tabula.Options{})
	assert.ErrorIs(t, err, errSink)
	assert.False(t, ok)
}

func TestPageOutput(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	tall := strings.Repeat("row\n", 10)
	tests := map[string]struct {
		setup func(t *testing.T, v *View)
		out   string
		want  bool
	}{
		"fits":      {setup: func(t *testing.T, v *View) { enabled(t, v) }, out: "short", want: false},
		"disabled":  {setup: func(*testing.T, *View) {}, out: tall, want: false},
		"pager off": {setup: func(t *testing.T, v *View) { enabled(t, v).TogglePager() }, out: tall, want: false},
		"paged":     {setup: func(t *testing.T, v *View) { enabled(t, v) }, out: tall, want: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v, buf := newTestView(t, Config{PagerCommand: "cat"}, 100, 5)
			tt.setup(t, v)
			paged, err := v.PageOutput(context.Background(), tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paged)
			if tt.want {
				assert.Equal(t, tt.out, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnableWhilePaging(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	v := New(Config{}, WithOutput(io.Discard), fixedSize(100, 2))
	tall := strings.Repeat("row\n", 5)

	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() {
			for range 10 {
				_ = v.Enable(Config{PagerCommand: "cat"})
				_, err := v.PageOutput(context.Background(), tall)
				assert.NoError(t, err)
				v.Disable()
			}
		})
	}
	wg.Wait()

	got, err := v.pager.Command()
	require.NoError(t, err)
	assert.Equal(t, "cat", got)
}

func TestCaptureAndRender(t *testing.T) {
	t.Parallel()
	v, buf := newTestView(t, Config{}, 100, 30)
	err := v.CaptureAndRender(context.Background(), func(w io.Writer) error {
		_, err := fmt.Fprint(w, "captured")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "captured\n", buf.String())

	errCapture := errors.New("boom")
	err = v.CaptureAndRender(context.Background(), func(io.Writer) error { return errCapture })
	assert.ErrorIs(t, err, errCapture)
}
