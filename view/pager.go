package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

// ErrNoPager is returned by Page when no pager command can be found.
var ErrNoPager = errors.New("no pager command available")

// fallbackPagers are tried in order when neither a command nor $PAGER is set.
var fallbackPagers = []string{"less -r", "more"}

// Pager hands output that does not fit the screen to an external pager. It
// is safe for concurrent use.
type Pager struct {
	mu      sync.Mutex
	width   int
	height  int
	command string
	out     io.Writer
	lookEnv func(string) string
}

// NewPager returns a pager for a screen of width by height. An empty command
// selects $PAGER, then less, then more.
func NewPager(width, height int, command string) *Pager {
	return &Pager{
		width:   width,
		height:  height,
		command: command,
		out:     os.Stdout,
		lookEnv: os.Getenv,
	}
}

// Width returns the screen width the pager compares output against.
func (p *Pager) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// Height returns the screen height the pager compares output against.
func (p *Pager) Height() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

// Resize changes the screen dimensions.
func (p *Pager) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

// SetCommand replaces the configured pager command. An empty command falls
// back to $PAGER, then less, then more.
func (p *Pager) SetCommand(command string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.command = command
}

// SetOutput sets where the pager process writes.
func (p *Pager) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
}

// ActivatedBy reports whether output is taller or wider than the screen.
func (p *Pager) ActivatedBy(output string) bool {
	p.mu.Lock()
	width, height := p.width, p.height
	p.mu.Unlock()
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if height > 0 && len(lines) > height {
		return true
	}
	if width <= 0 {
		return false
	}
	for _, line := range lines {
		if runewidth.StringWidth(line) > width {
			return true
		}
	}
	return false
}

// Command returns the pager command line that Page would run.
func (p *Pager) Command() (string, error) {
	p.mu.Lock()
	candidates := []string{p.command, p.lookEnv("PAGER")}
	p.mu.Unlock()
	candidates = append(candidates, fallbackPagers...)
	for _, c := range candidates {
		args := strings.Fields(c)
		if len(args) == 0 {
			continue
		}
		if _, err := exec.LookPath(args[0]); err == nil {
			return c, nil
		}
	}
	return "", ErrNoPager
}

// Page pipes output through the pager command and waits for it to exit.
func (p *Pager) Page(ctx context.Context, output string) error {
	command, err := p.Command()
	if err != nil {
		return err
	}
	p.mu.Lock()
	out := p.out
	p.mu.Unlock()
	args := strings.Fields(command)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(output)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager %q: %w", command, err)
	}
	return nil
}
