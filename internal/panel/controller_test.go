package panel_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
	"github.com/zhouzirui/canyon-webchat/internal/panel"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newHarness(t *testing.T, withReset bool, opts panel.Options) *harness {
	t.Helper()

	h := &harness{
		view:      &fakeView{},
		input:     &fakeInput{},
		submit:    &fakeSubmit{},
		notifier:  &fakeNotifier{},
		indicator: &fakeIndicator{},
		backend:   newFakeBackend(),
	}
	ports := panel.Ports{
		View:      h.view,
		Input:     h.input,
		Submit:    h.submit,
		Notifier:  h.notifier,
		Reloader:  h.view,
		Indicator: h.indicator,
	}
	if withReset {
		h.reset = &fakeReset{}
		ports.Reset = h.reset
	}

	ctrl, err := panel.New(context.Background(), h.backend, ports, opts)
	require.NoError(t, err)
	h.ctrl = ctrl
	t.Cleanup(ctrl.Wait)
	return h
}

func TestNewRequiresPorts(t *testing.T) {
	_, err := panel.New(context.Background(), newFakeBackend(), panel.Ports{}, panel.Options{})
	require.Error(t, err)

	_, err = panel.New(context.Background(), nil, panel.Ports{}, panel.Options{})
	require.Error(t, err)
}

func TestInitializeShowsWelcomeFirst(t *testing.T) {
	h := newHarness(t, true, panel.Options{})
	h.ctrl.Initialize()

	msgs := h.view.snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.SenderBot, msgs[0].Sender)
	assert.Equal(t, chat.WelcomeText, msgs[0].Text)
	assert.Len(t, h.reset.handlers, 1)
	assert.Equal(t, 1, h.view.scrolls)
}

func TestInitializeWithoutResetControl(t *testing.T) {
	h := newHarness(t, false, panel.Options{})
	assert.NotPanics(t, h.ctrl.Initialize)
	assert.Len(t, h.view.snapshot(), 1)
}

func TestSubmitAppendsUserThenReply(t *testing.T) {
	h := newHarness(t, false, panel.Options{})
	h.ctrl.Initialize()
	h.backend.on("where is the bathroom?", sendResult{reply: "Past Gallery 1.\nHere's a map"})

	require.NoError(t, h.ctrl.Submit(context.Background(), "  where is the bathroom?\n"))

	// The user message and input clear happen before the reply arrives.
	msgs := h.view.snapshot()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, "user:where is the bathroom?", texts(msgs[1:2])[0])
	assert.Equal(t, 1, h.input.clears())

	h.ctrl.Wait()
	assert.Equal(t, []string{
		"bot:" + chat.WelcomeText,
		"user:where is the bathroom?",
		"bot:Past Gallery 1.\nHere's a map",
	}, texts(h.view.snapshot()))
	assert.Equal(t, []string{"where is the bathroom?"}, h.backend.sentTexts())
}

func TestSubmitIgnoresBlankInput(t *testing.T) {
	h := newHarness(t, false, panel.Options{})

	for _, value := range []string{"", " ", "\t\n", "   \r\n  "} {
		require.NoError(t, h.ctrl.Submit(context.Background(), value))
	}
	h.ctrl.Wait()

	assert.Empty(t, h.view.snapshot())
	assert.Empty(t, h.backend.sentTexts())
	assert.Zero(t, h.input.clears())
}

func TestSubmitFailureShowsFallback(t *testing.T) {
	h := newHarness(t, false, panel.Options{})
	h.backend.on("hi", sendResult{err: errors.New("connection refused")})

	require.NoError(t, h.ctrl.Submit(context.Background(), "hi"))
	h.ctrl.Wait()

	msgs := h.view.snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.SenderBot, msgs[1].Sender)
	assert.Equal(t, "Oops, something glitched. Try again?", msgs[1].Text)
	assert.Empty(t, h.notifier.all())
}

func TestViewIsAppendOnly(t *testing.T) {
	h := newHarness(t, false, panel.Options{})
	h.ctrl.Initialize()

	for _, text := range []string{"one", "two", "three"} {
		before := h.view.snapshot()
		require.NoError(t, h.ctrl.Submit(context.Background(), text))
		h.ctrl.Wait()

		after := h.view.snapshot()
		require.Len(t, after, len(before)+2)
		assert.Equal(t, before, after[:len(before)])
	}
	assert.Equal(t, h.view.snapshot(), h.ctrl.Messages())
}

func TestSubmitTriggerUsesController(t *testing.T) {
	h := newHarness(t, false, panel.Options{})
	require.NotNil(t, h.submit.handler)

	h.submit.handler("  menu  ")
	h.ctrl.Wait()

	assert.Equal(t, []string{"user:menu", "bot:echo: menu"}, texts(h.view.snapshot()))
}

func TestPendingBlockRejectsOverlap(t *testing.T) {
	h := newHarness(t, false, panel.Options{Pending: panel.PendingBlock})
	h.backend.hold("first")

	require.NoError(t, h.ctrl.Submit(context.Background(), "first"))
	err := h.ctrl.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, panel.ErrBusy)
	assert.Equal(t, 1, h.input.clears())
	assert.Equal(t, 1, h.ctrl.Pending())

	h.backend.release("first")
	h.ctrl.Wait()

	require.NoError(t, h.ctrl.Submit(context.Background(), "second"))
	h.ctrl.Wait()

	assert.Equal(t, []string{
		"user:first", "bot:echo: first",
		"user:second", "bot:echo: second",
	}, texts(h.view.snapshot()))
}

func TestPendingAllowRendersInArrivalOrder(t *testing.T) {
	h := newHarness(t, false, panel.Options{Pending: panel.PendingAllow})
	h.backend.hold("slow")

	require.NoError(t, h.ctrl.Submit(context.Background(), "slow"))
	require.NoError(t, h.ctrl.Submit(context.Background(), "fast"))

	require.Eventually(t, func() bool { return len(h.view.snapshot()) == 3 }, time.Second, time.Millisecond)
	h.backend.release("slow")
	h.ctrl.Wait()

	assert.Equal(t, []string{
		"user:slow", "user:fast",
		"bot:echo: fast", "bot:echo: slow",
	}, texts(h.view.snapshot()))
}

func TestPendingDropStaleDiscardsOlderReplies(t *testing.T) {
	h := newHarness(t, false, panel.Options{Pending: panel.PendingDropStale})
	h.backend.hold("old")

	require.NoError(t, h.ctrl.Submit(context.Background(), "old"))
	require.NoError(t, h.ctrl.Submit(context.Background(), "new"))
	require.Eventually(t, func() bool { return len(h.view.snapshot()) == 3 }, time.Second, time.Millisecond)

	h.backend.release("old")
	h.ctrl.Wait()

	assert.Equal(t, []string{"user:old", "user:new", "bot:echo: new"}, texts(h.view.snapshot()))
}

func TestTimeoutFallsBackToGlitch(t *testing.T) {
	h := newHarness(t, false, panel.Options{Timeout: 10 * time.Millisecond})
	h.backend.hold("stuck")

	require.NoError(t, h.ctrl.Submit(context.Background(), "stuck"))
	h.ctrl.Wait()

	assert.Equal(t, []string{"user:stuck", "bot:" + chat.FallbackText}, texts(h.view.snapshot()))
}

func TestResetSessionReloads(t *testing.T) {
	h := newHarness(t, true, panel.Options{})
	h.ctrl.Initialize()
	require.NoError(t, h.ctrl.Submit(context.Background(), "hello"))
	h.ctrl.Wait()
	require.Len(t, h.view.snapshot(), 3)

	require.NoError(t, h.ctrl.ResetSession(context.Background()))

	assert.Equal(t, 1, h.view.resets)
	assert.Equal(t, []string{"bot:" + chat.WelcomeText}, texts(h.view.snapshot()))
	assert.Equal(t, []string{"bot:" + chat.WelcomeText}, texts(h.ctrl.Messages()))
	assert.Len(t, h.reset.handlers, 1, "reset control must not be bound twice")
	assert.Empty(t, h.notifier.all())
}

func TestResetSessionFailureAlertsAndKeepsView(t *testing.T) {
	h := newHarness(t, true, panel.Options{})
	h.ctrl.Initialize()
	require.NoError(t, h.ctrl.Submit(context.Background(), "hello"))
	h.ctrl.Wait()
	before := h.view.snapshot()

	h.backend.resetErr = errors.New("network down")
	err := h.ctrl.ResetSession(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"Could not reset session."}, h.notifier.all())
	assert.Equal(t, before, h.view.snapshot())
	assert.Zero(t, h.view.resets)
}

func TestResetSessionNonOKPolicy(t *testing.T) {
	t.Run("alert on error only", func(t *testing.T) {
		h := newHarness(t, true, panel.Options{Reset: panel.ResetAlertOnError})
		h.ctrl.Initialize()
		h.backend.resetOK = false

		err := h.ctrl.ResetSession(context.Background())
		assert.ErrorIs(t, err, panel.ErrResetRejected)
		assert.Empty(t, h.notifier.all())
		assert.Zero(t, h.view.resets)
		assert.Len(t, h.view.snapshot(), 1)
	})

	t.Run("alert on non-ok", func(t *testing.T) {
		h := newHarness(t, true, panel.Options{Reset: panel.ResetAlertOnNonOK})
		h.ctrl.Initialize()
		h.backend.resetOK = false

		err := h.ctrl.ResetSession(context.Background())
		assert.ErrorIs(t, err, panel.ErrResetRejected)
		assert.Equal(t, []string{chat.ResetFailedText}, h.notifier.all())
		assert.Zero(t, h.view.resets)
	})
}

func TestResetControlClick(t *testing.T) {
	h := newHarness(t, true, panel.Options{})
	h.ctrl.Initialize()
	require.NoError(t, h.ctrl.Submit(context.Background(), "hello"))
	h.ctrl.Wait()

	h.reset.click()
	h.ctrl.Wait()

	assert.Equal(t, 1, h.backend.resets)
	assert.Equal(t, []string{"bot:" + chat.WelcomeText}, texts(h.view.snapshot()))
}

func TestReplyFromBeforeReloadIsDropped(t *testing.T) {
	h := newHarness(t, true, panel.Options{Pending: panel.PendingAllow})
	h.ctrl.Initialize()
	h.backend.hold("late")

	require.NoError(t, h.ctrl.Submit(context.Background(), "late"))
	require.NoError(t, h.ctrl.ResetSession(context.Background()))
	h.backend.release("late")
	h.ctrl.Wait()

	assert.Equal(t, []string{"bot:" + chat.WelcomeText}, texts(h.view.snapshot()))
}

func TestResetAbortsPendingSendAndFreesInput(t *testing.T) {
	h := newHarness(t, true, panel.Options{Pending: panel.PendingBlock})
	h.ctrl.Initialize()
	h.backend.hold("late")

	require.NoError(t, h.ctrl.Submit(context.Background(), "late"))
	require.NoError(t, h.ctrl.ResetSession(context.Background()))
	assert.Zero(t, h.ctrl.Pending())

	// the held send is never released; only the reload can end it
	require.NoError(t, h.ctrl.Submit(context.Background(), "fresh"))
	h.ctrl.Wait()

	assert.Equal(t, []string{
		"bot:" + chat.WelcomeText,
		"user:fresh", "bot:echo: fresh",
	}, texts(h.view.snapshot()))
	assert.Zero(t, h.ctrl.Pending())
}

func TestIndicatorFollowsPendingState(t *testing.T) {
	h := newHarness(t, true, panel.Options{Pending: panel.PendingAllow})
	h.ctrl.Initialize()
	h.backend.hold("one")
	h.backend.hold("two")

	require.NoError(t, h.ctrl.Submit(context.Background(), "one"))
	require.NoError(t, h.ctrl.Submit(context.Background(), "two"))
	assert.Equal(t, []bool{true}, h.indicator.all())

	h.backend.release("one")
	require.Eventually(t, func() bool { return h.ctrl.Pending() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []bool{true}, h.indicator.all())

	require.NoError(t, h.ctrl.ResetSession(context.Background()))
	h.ctrl.Wait()
	assert.Equal(t, []bool{true, false}, h.indicator.all())
}

func TestAppendMessageKeepsNewlines(t *testing.T) {
	h := newHarness(t, false, panel.Options{})

	msg := h.ctrl.AppendMessage("line one\nline two", chat.SenderBot)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "line one\nline two", msg.Text)
	assert.Equal(t, []chat.Message{msg}, h.view.snapshot())
}

func TestParsePendingPolicy(t *testing.T) {
	for raw, want := range map[string]panel.PendingPolicy{
		"":           panel.PendingBlock,
		"block":      panel.PendingBlock,
		"ALLOW":      panel.PendingAllow,
		"drop-stale": panel.PendingDropStale,
	} {
		got, err := panel.ParsePendingPolicy(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
		if raw != "" && raw != "ALLOW" {
			assert.Equal(t, raw, got.String())
		}
	}

	_, err := panel.ParsePendingPolicy("sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"sometimes"`)
	assert.Contains(t, fmt.Sprintf("%+v", err), "ParsePendingPolicy", "error carries a stack trace")
}
