package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
)

type (
	appendMsg     struct{ msg chat.Message }
	scrollMsg     struct{}
	clearInputMsg struct{}
	alertMsg      struct{ text string }
	reloadMsg     struct{}
	waitingMsg    struct{ waiting bool }
)

// Bridge adapts a running tea.Program to the panel ports. Every port call is
// forwarded as a message, so it is safe from any goroutine except the
// program's own Update loop.
type Bridge struct {
	mu       sync.Mutex
	program  *tea.Program
	onSubmit func(string)
	onReset  func()
	onInit   func()
}

// NewBridge returns an unattached bridge. Attach must be called before the
// program runs.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach binds the program that receives port calls.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// OnInit registers the function run once the program is live, typically the
// controller's Initialize.
func (b *Bridge) OnInit(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onInit = fn
}

func (b *Bridge) Append(msg chat.Message) { b.send(appendMsg{msg: msg}) }
func (b *Bridge) ScrollToBottom()         { b.send(scrollMsg{}) }
func (b *Bridge) Clear()                  { b.send(clearInputMsg{}) }
func (b *Bridge) Alert(text string)       { b.send(alertMsg{text: text}) }
func (b *Bridge) Reload()                 { b.send(reloadMsg{}) }

func (b *Bridge) SetWaiting(waiting bool) { b.send(waitingMsg{waiting: waiting}) }

func (b *Bridge) OnSubmit(handler func(string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSubmit = handler
}

func (b *Bridge) OnActivate(handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReset = handler
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *Bridge) handlers() (submit func(string), reset func(), init func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.onSubmit, b.onReset, b.onInit
}
