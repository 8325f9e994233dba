// Package panel implements the chat panel controller: it mediates between
// user input, the remote chat service and the message view.
package panel

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
)

var (
	// ErrBusy is returned by Submit under PendingBlock while a reply is
	// outstanding.
	ErrBusy = errors.New("a reply is still pending")
	// ErrResetRejected is returned by ResetSession when the service answered
	// with a non-2xx status.
	ErrResetRejected = errors.New("reset rejected by server")
)

// Options tunes controller behaviour.
type Options struct {
	Pending PendingPolicy
	Reset   ResetPolicy
	// Timeout bounds each backend request. Zero means no timeout.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Controller owns the conversation shown in a MessageView.
type Controller struct {
	ports   Ports
	backend Backend
	opts    Options
	logger  zerolog.Logger
	baseCtx context.Context

	mu         sync.Mutex
	messages   []chat.Message
	pending    int
	seq        uint64
	epoch      uint64
	resetBound bool
	// epochCtx is cancelled by a successful reset so that requests issued
	// before the reload are aborted.
	epochCtx    context.Context
	cancelEpoch context.CancelFunc

	wg sync.WaitGroup
}

// New wires a controller to its ports and binds the submit trigger. ctx is
// the lifetime of the panel: requests started from the submit and reset
// triggers derive from it.
func New(ctx context.Context, backend Backend, ports Ports, opts Options) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("panel: backend is required")
	}
	switch {
	case ports.View == nil:
		return nil, errors.New("panel: message view is required")
	case ports.Input == nil:
		return nil, errors.New("panel: input field is required")
	case ports.Submit == nil:
		return nil, errors.New("panel: submit trigger is required")
	case ports.Notifier == nil:
		return nil, errors.New("panel: notifier is required")
	case ports.Reloader == nil:
		return nil, errors.New("panel: reloader is required")
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	c := &Controller{
		ports:   ports,
		backend: backend,
		opts:    opts,
		logger:  logger.With().Str("component", "panel").Logger(),
		baseCtx: ctx,
	}
	c.epochCtx, c.cancelEpoch = context.WithCancel(ctx)

	ports.Submit.OnSubmit(func(value string) {
		if err := c.Submit(c.baseCtx, value); err != nil {
			c.logger.Debug().Err(err).Msg("submit ignored")
		}
	})

	return c, nil
}

// Initialize shows the welcome message and binds the reset control when one
// is present. The reset control is bound at most once.
func (c *Controller) Initialize() {
	c.mu.Lock()
	c.appendLocked(chat.WelcomeText, chat.SenderBot)
	bind := c.ports.Reset != nil && !c.resetBound
	if bind {
		c.resetBound = true
	}
	c.mu.Unlock()

	if bind {
		c.ports.Reset.OnActivate(c.onResetActivated)
	}
}

// AppendMessage adds exactly one message to the end of the view and scrolls
// to it.
func (c *Controller) AppendMessage(text string, sender chat.Sender) chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendLocked(text, sender)
}

// Submit sends the trimmed value to the backend. Whitespace-only input is
// ignored. The reply, or the fallback text on any failure, is appended once
// the request completes; Submit itself does not wait for it.
func (c *Controller) Submit(ctx context.Context, value string) error {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.opts.Pending == PendingBlock && c.pending > 0 {
		c.mu.Unlock()
		return ErrBusy
	}
	c.appendLocked(text, chat.SenderUser)
	c.ports.Input.Clear()
	c.setPendingLocked(c.pending + 1)
	c.seq++
	seq, epoch, epochCtx := c.seq, c.epoch, c.epochCtx
	c.wg.Add(1)
	c.mu.Unlock()

	go c.exchange(ctx, epochCtx, text, seq, epoch)
	return nil
}

func (c *Controller) exchange(ctx, epochCtx context.Context, text string, seq, epoch uint64) {
	defer c.wg.Done()

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(epochCtx, cancel)
	defer stop()
	if c.opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		reqCtx, cancelTimeout = context.WithTimeout(reqCtx, c.opts.Timeout)
		defer cancelTimeout()
	}

	reply, err := c.backend.Send(reqCtx, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With().Uint64("seq", seq).Logger()

	// pending was zeroed by the reload; only the current epoch counts.
	if epoch != c.epoch {
		logger.Debug().Msg("dropping reply from before reload")
		return
	}
	c.setPendingLocked(c.pending - 1)
	if c.opts.Pending == PendingDropStale && seq != c.seq {
		logger.Debug().Uint64("latest", c.seq).Msg("dropping stale reply")
		return
	}
	if err != nil {
		logger.Debug().Err(err).Msg("send failed, showing fallback")
		c.appendLocked(chat.FallbackText, chat.SenderBot)
		return
	}
	c.appendLocked(reply, chat.SenderBot)
}

// ResetSession asks the backend to drop the conversation. On success the view
// is reloaded and re-initialized; on failure the user is alerted and the view
// is left untouched.
func (c *Controller) ResetSession(ctx context.Context) error {
	reqCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	ok, err := c.backend.Reset(reqCtx)
	if err != nil {
		c.ports.Notifier.Alert(chat.ResetFailedText)
		return err
	}
	if !ok {
		if c.opts.Reset == ResetAlertOnNonOK {
			c.ports.Notifier.Alert(chat.ResetFailedText)
		}
		return ErrResetRejected
	}

	c.mu.Lock()
	c.cancelEpoch()
	c.epochCtx, c.cancelEpoch = context.WithCancel(c.baseCtx)
	c.messages = nil
	c.epoch++
	c.ports.Reloader.Reload()
	c.setPendingLocked(0)
	c.mu.Unlock()

	c.Initialize()
	return nil
}

func (c *Controller) onResetActivated() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.ResetSession(c.baseCtx); err != nil {
			c.logger.Debug().Err(err).Msg("reset failed")
		}
	}()
}

// Messages returns a copy of everything appended since the last reload.
func (c *Controller) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Pending reports how many requests of the current view are still
// outstanding. Requests aborted by a reload are not counted.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Wait blocks until every request started by the controller has finished and
// its continuation has run.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// setPendingLocked updates the pending count and tells the indicator, if
// any, when the panel starts or stops waiting.
func (c *Controller) setPendingLocked(n int) {
	was := c.pending > 0
	c.pending = n
	if is := n > 0; is != was && c.ports.Indicator != nil {
		c.ports.Indicator.SetWaiting(is)
	}
}

func (c *Controller) appendLocked(text string, sender chat.Sender) chat.Message {
	msg := chat.NewMessage(text, sender)
	c.messages = append(c.messages, msg)
	c.ports.View.Append(msg)
	c.ports.View.ScrollToBottom()
	return msg
}
