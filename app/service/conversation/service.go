package conversation

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"hackerbot/app/config"
	"hackerbot/app/service/locale"
	"hackerbot/app/service/reply"
	"hackerbot/app/service/topic"
	"hackerbot/app/service/typing"

	"github.com/samber/do"
)

var _ do.Shutdownable = (*Session)(nil)

type Options struct {
	Delay  time.Duration
	Topic  topic.ID
	Locale locale.Locale
	IDs    IDGenerator
	Now    func() time.Time
}

// Session owns the message log and the submit/typing state machine.
// Subscribers must not call mutating Session methods synchronously.
type Session struct {
	composer  *reply.Composer
	simulator *typing.Simulator
	delay     time.Duration
	ids       IDGenerator
	now       func() time.Time

	mu           sync.Mutex
	history      ChatHistory
	phase        Phase
	activeTopic  topic.ID
	activeLocale locale.Locale
	version      uint64
	pending      *typing.Handle
	pendingSeq   uint64
	closed       bool

	subscribers []subscriber
	nextSubID   int
}

type subscriber struct {
	id int
	fn func(State)
}

func New(di *do.Injector) (*Session, error) {
	cfg := do.MustInvoke[*config.Config](di)
	catalog := do.MustInvoke[*locale.Catalog](di)
	registry := do.MustInvoke[*topic.Registry](di)

	loc, ok := catalog.Parse(cfg.Chat.DefaultLocale)
	if !ok {
		loc = catalog.Default()
	}

	id, ok := registry.Parse(cfg.Chat.DefaultTopic)
	if !ok {
		id = registry.List()[0].ID
	}

	return NewSession(
		do.MustInvoke[*reply.Composer](di),
		do.MustInvoke[*typing.Simulator](di),
		Options{
			Delay:  cfg.Chat.TypingDelay,
			Topic:  id,
			Locale: loc,
			IDs:    newIDGenerator(cfg.Chat.IDs),
		},
	), nil
}

func NewSession(composer *reply.Composer, simulator *typing.Simulator, opts Options) *Session {
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Session{
		composer:     composer,
		simulator:    simulator,
		delay:        opts.Delay,
		ids:          opts.IDs,
		now:          opts.Now,
		phase:        PhaseIdle,
		activeTopic:  opts.Topic,
		activeLocale: opts.Locale,
	}
}

// Submit appends the user's message and schedules the assistant reply.
// The reply is composed immediately, so the topic and locale in effect at
// submit time are the ones used for it.
func (s *Session) Submit(text string, id topic.ID, loc locale.Locale) error {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()

	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.phase == PhaseAwaitingReply:
		s.mu.Unlock()
		return ErrBusy
	case trimmed == "":
		s.mu.Unlock()
		return ErrEmptyInput
	}

	s.history.add(s.newMessage(RoleUser, trimmed, id))
	s.activeTopic = id
	s.activeLocale = loc
	s.phase = PhaseAwaitingReply

	s.pendingSeq++
	seq := s.pendingSeq
	payload := s.composer.Compose(id, loc, trimmed)
	s.pending = s.simulator.Start(payload, s.delay, func(replyText string) {
		s.deliver(seq, id, replyText)
	})

	state, subs := s.changedLocked()
	s.mu.Unlock()

	slog.Debug("Message submitted",
		"topic", id,
		"locale", loc,
		"length", len(trimmed),
	)

	notify(subs, state)

	return nil
}

func (s *Session) deliver(seq uint64, id topic.ID, replyText string) {
	s.mu.Lock()

	if s.closed || seq != s.pendingSeq || s.phase != PhaseAwaitingReply {
		s.mu.Unlock()
		slog.Debug("Dropped stale reply", "seq", seq)
		return
	}

	s.history.add(s.newMessage(RoleAssistant, replyText, id))
	s.phase = PhaseIdle
	s.pending = nil

	state, subs := s.changedLocked()
	s.mu.Unlock()

	slog.Debug("Reply delivered", "topic", id, "messages", len(state.Messages))

	notify(subs, state)
}

// ChangeLocale affects future replies only.
func (s *Session) ChangeLocale(loc locale.Locale) {
	s.mu.Lock()

	if s.closed || s.activeLocale == loc {
		s.mu.Unlock()
		return
	}

	s.activeLocale = loc

	state, subs := s.changedLocked()
	s.mu.Unlock()

	notify(subs, state)
}

// ChangeTopic affects future replies only.
func (s *Session) ChangeTopic(id topic.ID) {
	s.mu.Lock()

	if s.closed || s.activeTopic == id {
		s.mu.Unlock()
		return
	}

	s.activeTopic = id

	state, subs := s.changedLocked()
	s.mu.Unlock()

	notify(subs, state)
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Transcript renders the message log for diagnostics.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.format()
}

// Close cancels a pending reply and detaches subscribers. Later submits are
// rejected with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	canceled := s.simulator.Cancel(s.pending)
	s.pending = nil
	s.subscribers = nil

	slog.Debug("Session closed",
		"messages", s.history.len(),
		"canceled_reply", canceled,
	)
}

func (s *Session) Shutdown() error {
	s.Close()
	return nil
}

func (s *Session) newMessage(role Role, content string, id topic.ID) ChatMessage {
	return ChatMessage{
		ID:        s.ids.NewID(),
		Role:      role,
		Content:   content,
		Topic:     id,
		CreatedAt: s.now(),
	}
}

func (s *Session) snapshotLocked() State {
	return State{
		Version:      s.version,
		Messages:     s.history.snapshot(),
		Phase:        s.phase,
		ActiveTopic:  s.activeTopic,
		ActiveLocale: s.activeLocale,
	}
}

func (s *Session) changedLocked() (State, []subscriber) {
	s.version++

	return s.snapshotLocked(), append([]subscriber(nil), s.subscribers...)
}

func notify(subs []subscriber, state State) {
	for _, sub := range subs {
		sub.fn(state.clone())
	}
}
