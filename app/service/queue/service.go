package queue

import (
	"log/slog"
	"sync"

	"hackerbot/app/service/locale"
	"hackerbot/app/service/topic"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

type Kind string

const (
	KindSubmit       Kind = "submit"
	KindChangeLocale Kind = "change_locale"
	KindChangeTopic  Kind = "change_topic"
)

// Event is a user action coming from the UI.
type Event struct {
	Kind   Kind
	Text   string
	Topic  topic.ID
	Locale locale.Locale
}

func Submit(text string, id topic.ID, loc locale.Locale) Event {
	return Event{Kind: KindSubmit, Text: text, Topic: id, Locale: loc}
}

func ChangeLocale(loc locale.Locale) Event {
	return Event{Kind: KindChangeLocale, Locale: loc}
}

func ChangeTopic(id topic.ID) Event {
	return Event{Kind: KindChangeTopic, Topic: id}
}

type Service struct {
	mu     sync.RWMutex
	closed bool
	queue  chan Event
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Event, bufferSize),
	}, nil
}

// Add enqueues without blocking and reports whether the event was accepted.
func (s *Service) Add(event Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		slog.Warn("event queue is closed", "kind", event.Kind)
		return false
	}

	select {
	case s.queue <- event:
		return true
	default:
		slog.Warn("event queue is full", "kind", event.Kind)
		return false
	}
}

func (s *Service) Channel() <-chan Event {
	return s.queue
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.queue)
	}

	return nil
}
