// Package console is a line-mode chat panel for pipes and dumb terminals.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
	"github.com/zhouzirui/canyon-webchat/internal/render"
)

const (
	QuitCommand  = "/quit"
	ResetCommand = "/reset"

	reloadBanner = "──── conversation reset ────"
)

// Console implements every panel port on top of plain readers and writers.
type Console struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	mu       sync.Mutex
	onSubmit func(string)
	onReset  func()
	settle   func()
}

// Option customises a Console.
type Option func(*Console)

// WithSettle makes Run call settle after every submitted line, typically the
// controller's Wait, so replies print before the next line is read.
func WithSettle(settle func()) Option {
	return func(c *Console) { c.settle = settle }
}

// New builds a console reading from in. Messages go to out, alerts to errOut.
func New(in io.Reader, out, errOut io.Writer, opts ...Option) *Console {
	c := &Console{in: in, out: out, errOut: errOut}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append prints msg with a sender prefix; continuation lines are indented
// under the first.
func (c *Console) Append(msg chat.Message) {
	prefix := "bot › "
	if msg.Sender == chat.SenderUser {
		prefix = "you › "
	}
	indent := strings.Repeat(" ", len([]rune(prefix)))

	var b strings.Builder
	for i, line := range render.Lines(msg.Text) {
		if i == 0 {
			b.WriteString(prefix)
		} else {
			b.WriteString(indent)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, b.String())
}

// ScrollToBottom is a no-op: the terminal already follows the output.
func (c *Console) ScrollToBottom() {}

// Clear is a no-op: a line is consumed as soon as it is read.
func (c *Console) Clear() {}

func (c *Console) OnSubmit(handler func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSubmit = handler
}

func (c *Console) OnActivate(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReset = handler
}

// Alert prints a highlighted notice on the error stream.
func (c *Console) Alert(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.errOut, "! %s\n", render.Sanitize(text))
}

// Reload prints a separator; earlier output stays in the scrollback.
func (c *Console) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, reloadBanner)
}

// Run reads lines until EOF, /quit or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case line := <-lines:
			if done := c.dispatch(line); done {
				return nil
			}
		}
	}
}

func (c *Console) dispatch(line string) (quit bool) {
	c.mu.Lock()
	submit, reset, settle := c.onSubmit, c.onReset, c.settle
	c.mu.Unlock()

	switch strings.TrimSpace(line) {
	case QuitCommand:
		return true
	case ResetCommand:
		if reset == nil {
			c.Alert("There is no reset control in this panel.")
			return false
		}
		reset()
	default:
		if submit != nil {
			submit(line)
		}
	}
	if settle != nil {
		settle()
	}
	return false
}
