package panel

import (
	"context"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
)

// MessageView is the scrolling message list. Implementations must be safe to
// call from any goroutine.
type MessageView interface {
	Append(msg chat.Message)
	ScrollToBottom()
}

// InputField is the text box the user types into.
type InputField interface {
	Clear()
}

// SubmitTrigger fires whenever the user submits the form, carrying the raw
// input value.
type SubmitTrigger interface {
	OnSubmit(handler func(value string))
}

// ResetTrigger is the optional "reset conversation" control.
type ResetTrigger interface {
	OnActivate(handler func())
}

// Notifier presents a blocking, user-visible notice.
type Notifier interface {
	Alert(text string)
}

// Reloader discards all view state, the equivalent of a page reload.
type Reloader interface {
	Reload()
}

// PendingIndicator is told when the panel starts and stops waiting for a
// reply, so the view can show that input is on hold.
type PendingIndicator interface {
	SetWaiting(waiting bool)
}

// Backend is the remote chat service.
type Backend interface {
	// Send posts the user's text and returns the bot reply.
	Send(ctx context.Context, text string) (string, error)
	// Reset discards the server-side conversation. ok reports a 2xx status;
	// err is set only when the request itself failed.
	Reset(ctx context.Context) (ok bool, err error)
}

// Ports groups the collaborators a Controller is wired to. Reset and
// Indicator may be nil.
type Ports struct {
	View      MessageView
	Input     InputField
	Submit    SubmitTrigger
	Reset     ResetTrigger
	Notifier  Notifier
	Reloader  Reloader
	Indicator PendingIndicator
}

// ReloadFunc adapts a plain function to Reloader.
type ReloadFunc func()

func (f ReloadFunc) Reload() { f() }

// NotifyFunc adapts a plain function to Notifier.
type NotifyFunc func(text string)

func (f NotifyFunc) Alert(text string) { f(text) }
