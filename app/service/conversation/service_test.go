package conversation

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hackerbot/app/config"
	"hackerbot/app/service/locale"
	"hackerbot/app/service/reply"
	"hackerbot/app/service/topic"
	"hackerbot/app/service/typing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 900 * time.Millisecond

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type fixture struct {
	session  *Session
	clock    *typing.ManualClock
	composer *reply.Composer
	registry *topic.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.Provide(di, locale.New)
	do.Provide(di, topic.New)
	do.Provide(di, reply.New)

	clock := typing.NewManualClock()
	composer := do.MustInvoke[*reply.Composer](di)

	session := NewSession(composer, typing.NewSimulator(clock), Options{
		Delay:  testDelay,
		Topic:  topic.Home,
		Locale: locale.EN,
		IDs:    &CounterGenerator{},
		Now:    func() time.Time { return testNow },
	})

	return &fixture{
		session:  session,
		clock:    clock,
		composer: composer,
		registry: do.MustInvoke[*topic.Registry](di),
	}
}

func TestInitialState(t *testing.T) {
	f := newFixture(t)

	state := f.session.Snapshot()
	assert.Empty(t, state.Messages)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, topic.Home, state.ActiveTopic)
	assert.Equal(t, locale.EN, state.ActiveLocale)
}

func TestSubmitEmptyInput(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"", "  ", "\n\t "} {
		err := f.session.Submit(text, topic.Home, locale.EN)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Equal(t, ReasonEmptyInput, Reason(err))
	}

	state := f.session.Snapshot()
	assert.Empty(t, state.Messages)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, uint64(0), state.Version)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestSubmitAndDeliver(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("how do I harden ssh", topic.Hacking, locale.EN))

	state := f.session.Snapshot()
	require.Len(t, state.Messages, 1)
	assert.Equal(t, PhaseAwaitingReply, state.Phase)
	assert.Equal(t, topic.Hacking, state.ActiveTopic)
	assert.Equal(t, ChatMessage{
		ID:        "msg-1",
		Role:      RoleUser,
		Content:   "how do I harden ssh",
		Topic:     topic.Hacking,
		CreatedAt: testNow,
	}, state.Messages[0])

	f.clock.Advance(testDelay)

	state = f.session.Snapshot()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, PhaseIdle, state.Phase)

	assistant := state.Messages[1]
	assert.Equal(t, "msg-2", assistant.ID)
	assert.Equal(t, RoleAssistant, assistant.Role)
	assert.Equal(t, topic.Hacking, assistant.Topic)
	assert.True(t, strings.HasPrefix(assistant.Content, f.registry.StatusText(topic.Hacking, locale.EN)))
	assert.Contains(t, assistant.Content, "how do I harden ssh")
}

func TestSubmitTrimsContent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("   padded text \n", topic.Work, locale.EN))

	assert.Equal(t, "padded text", f.session.Snapshot().Messages[0].Content)
}

func TestSubmitWhileAwaitingIsBusy(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("how do I harden ssh", topic.Hacking, locale.EN))
	before := f.session.Snapshot()

	err := f.session.Submit("second message", topic.Work, locale.EN)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, ReasonBusy, Reason(err))

	after := f.session.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.clock.Pending())

	// blank input while awaiting is still busy
	err = f.session.Submit("   ", topic.Work, locale.EN)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, ReasonBusy, Reason(err))
	assert.Equal(t, before, f.session.Snapshot())
}

func TestSubmitAcceptedAgainAfterDelivery(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("first", topic.General, locale.EN))
	f.clock.Advance(testDelay)
	require.NoError(t, f.session.Submit("second", topic.Work, locale.ES))
	f.clock.Advance(testDelay)

	messages := f.session.Snapshot().Messages
	require.Len(t, messages, 4)

	roles := []Role{messages[0].Role, messages[1].Role, messages[2].Role, messages[3].Role}
	assert.Equal(t, []Role{RoleUser, RoleAssistant, RoleUser, RoleAssistant}, roles)
	assert.Equal(t, "first", messages[0].Content)
	assert.Contains(t, messages[1].Content, "» first")
	assert.Equal(t, "second", messages[2].Content)
	assert.True(t, strings.HasPrefix(messages[3].Content, f.registry.StatusText(topic.Work, locale.ES)))
	assert.Equal(t, []string{"msg-1", "msg-2", "msg-3", "msg-4"},
		[]string{messages[0].ID, messages[1].ID, messages[2].ID, messages[3].ID})
}

func TestReplyUsesLocaleAndTopicCapturedAtSubmit(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("status?", topic.Hacking, locale.EN))

	f.session.ChangeLocale(locale.RU)
	f.session.ChangeTopic(topic.School)

	state := f.session.Snapshot()
	assert.Equal(t, PhaseAwaitingReply, state.Phase)
	assert.Equal(t, locale.RU, state.ActiveLocale)
	assert.Equal(t, topic.School, state.ActiveTopic)

	f.clock.Advance(testDelay)

	state = f.session.Snapshot()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, f.composer.Compose(topic.Hacking, locale.EN, "status?"), state.Messages[1].Content)
	assert.Equal(t, topic.Hacking, state.Messages[1].Topic)
	assert.Equal(t, locale.RU, state.ActiveLocale)
}

func TestLocaleChangeDoesNotRewriteMessages(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("hello", topic.Home, locale.EN))
	f.clock.Advance(testDelay)
	before := f.session.Snapshot().Messages

	f.session.ChangeLocale(locale.TT)
	f.session.ChangeTopic(topic.Cheats)

	assert.Equal(t, before, f.session.Snapshot().Messages)
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("hello", topic.Home, locale.EN))

	state := f.session.Snapshot()
	state.Messages[0].Content = "mutated"

	assert.Equal(t, "hello", f.session.Snapshot().Messages[0].Content)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)

	var states []State
	unsubscribe := f.session.Subscribe(func(state State) {
		states = append(states, state)
	})

	require.NoError(t, f.session.Submit("hello", topic.Home, locale.EN))
	_ = f.session.Submit("ignored", topic.Home, locale.EN)
	f.clock.Advance(testDelay)
	f.session.ChangeLocale(locale.ES)
	f.session.ChangeLocale(locale.ES)

	require.Len(t, states, 3)
	assert.Equal(t, PhaseAwaitingReply, states[0].Phase)
	assert.Len(t, states[0].Messages, 1)
	assert.Equal(t, PhaseIdle, states[1].Phase)
	assert.Len(t, states[1].Messages, 2)
	assert.Equal(t, locale.ES, states[2].ActiveLocale)
	assert.Less(t, states[0].Version, states[1].Version)
	assert.Less(t, states[1].Version, states[2].Version)

	unsubscribe()
	f.session.ChangeTopic(topic.Work)
	assert.Len(t, states, 3)
}

func TestUnsubscribeKeepsOthers(t *testing.T) {
	f := newFixture(t)

	var first, second int
	unsubscribeFirst := f.session.Subscribe(func(State) { first++ })
	f.session.Subscribe(func(State) { second++ })

	unsubscribeFirst()
	f.session.ChangeTopic(topic.Work)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestCloseCancelsPendingReply(t *testing.T) {
	f := newFixture(t)

	notified := 0
	f.session.Subscribe(func(State) { notified++ })

	require.NoError(t, f.session.Submit("hello", topic.Home, locale.EN))
	f.session.Close()
	f.session.Close()

	assert.Equal(t, 0, f.clock.Pending())
	f.clock.Advance(time.Hour)

	state := f.session.Snapshot()
	assert.Len(t, state.Messages, 1)
	assert.Equal(t, 1, notified)

	err := f.session.Submit("again", topic.Home, locale.EN)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, ReasonClosed, Reason(err))
}

func TestStaleDeliveryIsDropped(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.Submit("hello", topic.Home, locale.EN))

	f.session.deliver(f.session.pendingSeq+1, topic.Home, "bogus")
	assert.Len(t, f.session.Snapshot().Messages, 1)

	f.clock.Advance(testDelay)
	f.session.deliver(f.session.pendingSeq, topic.Home, "duplicate")
	assert.Len(t, f.session.Snapshot().Messages, 2)
}

func TestReasonOfOtherErrors(t *testing.T) {
	assert.Equal(t, RejectReason(""), Reason(nil))
	assert.Equal(t, RejectReason(""), Reason(errors.New("boom")))
}

func TestTranscript(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "No messages", f.session.Transcript())

	require.NoError(t, f.session.Submit("hello", topic.Home, locale.EN))
	assert.Equal(t, "12:00:00 - user [home]: hello\n", f.session.Transcript())
}

func TestNewFromInjector(t *testing.T) {
	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	cfg := config.Default()
	cfg.Chat.DefaultLocale = "tt"
	cfg.Chat.DefaultTopic = "questions"
	cfg.Chat.IDs = "counter"
	cfg.Chat.TypingDelay = time.Millisecond

	do.ProvideValue(di, cfg)
	do.Provide(di, locale.New)
	do.Provide(di, topic.New)
	do.Provide(di, reply.New)
	do.Provide(di, typing.New)
	do.Provide(di, New)

	session := do.MustInvoke[*Session](di)

	state := session.Snapshot()
	assert.Equal(t, locale.TT, state.ActiveLocale)
	assert.Equal(t, topic.Questions, state.ActiveTopic)

	var delivered atomic.Bool
	session.Subscribe(func(state State) {
		if state.Phase == PhaseIdle && len(state.Messages) == 2 {
			delivered.Store(true)
		}
	})

	require.NoError(t, session.Submit("сәлам", topic.Questions, locale.TT))
	require.Eventually(t, delivered.Load, time.Second, 5*time.Millisecond)

	messages := session.Snapshot().Messages
	assert.Equal(t, "msg-1", messages[0].ID)
	assert.Equal(t, "msg-2", messages[1].ID)
}

func TestUUIDGenerator(t *testing.T) {
	var gen UUIDGenerator

	first, second := gen.NewID(), gen.NewID()
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
