package engine

import (
	"context"
	"testing"
	"time"

	"hackerbot/app/config"
	"hackerbot/app/service/conversation"
	"hackerbot/app/service/locale"
	"hackerbot/app/service/queue"
	"hackerbot/app/service/reply"
	"hackerbot/app/service/topic"
	"hackerbot/app/service/typing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInjector(t *testing.T, delay time.Duration) *do.Injector {
	t.Helper()

	cfg := config.Default()
	cfg.Chat.TypingDelay = delay
	cfg.Chat.IDs = "counter"

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.ProvideValue(di, cfg)
	do.Provide(di, locale.New)
	do.Provide(di, topic.New)
	do.Provide(di, reply.New)
	do.Provide(di, typing.New)
	do.Provide(di, conversation.New)
	do.Provide(di, queue.New)
	do.Provide(di, New)

	return di
}

func runEngine(t *testing.T, di *do.Injector) (context.CancelFunc, <-chan struct{}) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		do.MustInvoke[*Service](di).Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return cancel, done
}

func TestRunAppliesEvents(t *testing.T) {
	di := newTestInjector(t, time.Millisecond)
	queueSvc := do.MustInvoke[*queue.Service](di)
	session := do.MustInvoke[*conversation.Session](di)

	runEngine(t, di)

	require.True(t, queueSvc.Add(queue.ChangeLocale(locale.ES)))
	require.True(t, queueSvc.Add(queue.ChangeTopic(topic.School)))
	require.True(t, queueSvc.Add(queue.Submit("   ", topic.School, locale.ES)))
	require.True(t, queueSvc.Add(queue.Submit("ayuda con la tarea", topic.School, locale.ES)))

	require.Eventually(t, func() bool {
		state := session.Snapshot()
		return state.Phase == conversation.PhaseIdle && len(state.Messages) == 2
	}, time.Second, 5*time.Millisecond)

	state := session.Snapshot()
	assert.Equal(t, locale.ES, state.ActiveLocale)
	assert.Equal(t, topic.School, state.ActiveTopic)
	assert.Equal(t, "ayuda con la tarea", state.Messages[0].Content)
	assert.Contains(t, state.Messages[1].Content, "Proceso tu señal y propongo acciones claras.")
}

func TestRunClosesSessionOnCancel(t *testing.T) {
	di := newTestInjector(t, time.Hour)
	queueSvc := do.MustInvoke[*queue.Service](di)
	session := do.MustInvoke[*conversation.Session](di)

	cancel, done := runEngine(t, di)

	require.True(t, queueSvc.Add(queue.Submit("hello", topic.Home, locale.EN)))
	require.Eventually(t, func() bool {
		return session.Snapshot().Phase == conversation.PhaseAwaitingReply
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.ErrorIs(t, session.Submit("again", topic.Home, locale.EN), conversation.ErrClosed)
	assert.Len(t, session.Snapshot().Messages, 1)
}

func TestRunStopsWhenQueueCloses(t *testing.T) {
	di := newTestInjector(t, time.Millisecond)
	queueSvc := do.MustInvoke[*queue.Service](di)

	_, done := runEngine(t, di)

	require.NoError(t, queueSvc.Shutdown())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop after queue shutdown")
	}
}

func TestHandleUnknownEvent(t *testing.T) {
	di := newTestInjector(t, time.Millisecond)
	svc := do.MustInvoke[*Service](di)

	svc.handle(queue.Event{Kind: "bogus"})

	assert.Empty(t, do.MustInvoke[*conversation.Session](di).Snapshot().Messages)
}
