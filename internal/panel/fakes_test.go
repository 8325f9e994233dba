package panel_test

import (
	"context"
	"sync"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
	"github.com/zhouzirui/canyon-webchat/internal/panel"
)

type fakeView struct {
	mu       sync.Mutex
	messages []chat.Message
	scrolls  int
	resets   int
}

func (v *fakeView) Append(msg chat.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, msg)
}

func (v *fakeView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls++
}

func (v *fakeView) Reload() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = nil
	v.resets++
}

func (v *fakeView) snapshot() []chat.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]chat.Message, len(v.messages))
	copy(out, v.messages)
	return out
}

type fakeInput struct {
	mu      sync.Mutex
	cleared int
}

func (i *fakeInput) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cleared++
}

func (i *fakeInput) clears() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cleared
}

type fakeSubmit struct {
	handler func(string)
}

func (s *fakeSubmit) OnSubmit(h func(string)) { s.handler = h }

type fakeReset struct {
	mu       sync.Mutex
	handlers []func()
}

func (r *fakeReset) OnActivate(h func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

func (r *fakeReset) click() {
	r.mu.Lock()
	hs := append([]func(){}, r.handlers...)
	r.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) Alert(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, text)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.alerts...)
}

// fakeIndicator records every waiting transition.
type fakeIndicator struct {
	mu      sync.Mutex
	changes []bool
}

func (f *fakeIndicator) SetWaiting(waiting bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, waiting)
}

func (f *fakeIndicator) all() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.changes...)
}

// sendResult scripts one Send outcome.
type sendResult struct {
	reply string
	err   error
}

// fakeBackend answers Send from a script. When gate is set, each Send waits
// for a value on it before answering, letting tests control completion order.
type fakeBackend struct {
	mu      sync.Mutex
	sent    []string
	replies map[string]sendResult
	gates   map[string]chan struct{}

	resetOK  bool
	resetErr error
	resets   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		replies: make(map[string]sendResult),
		gates:   make(map[string]chan struct{}),
		resetOK: true,
	}
}

func (b *fakeBackend) on(text string, res sendResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[text] = res
}

// hold makes Send(text) block until release(text) is called.
func (b *fakeBackend) hold(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gates[text] = make(chan struct{})
}

func (b *fakeBackend) release(text string) {
	b.mu.Lock()
	gate := b.gates[text]
	b.mu.Unlock()
	close(gate)
}

func (b *fakeBackend) Send(ctx context.Context, text string) (string, error) {
	b.mu.Lock()
	b.sent = append(b.sent, text)
	gate := b.gates[text]
	res, ok := b.replies[text]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if !ok {
		return "echo: " + text, nil
	}
	return res.reply, res.err
}

func (b *fakeBackend) Reset(context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resets++
	return b.resetOK, b.resetErr
}

func (b *fakeBackend) sentTexts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sent...)
}

type harness struct {
	view      *fakeView
	input     *fakeInput
	submit    *fakeSubmit
	reset     *fakeReset
	notifier  *fakeNotifier
	indicator *fakeIndicator
	backend   *fakeBackend
	ctrl      *panel.Controller
}

func texts(msgs []chat.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, string(m.Sender)+":"+m.Text)
	}
	return out
}
