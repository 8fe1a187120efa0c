package engine

import (
	"context"
	"log/slog"
	"time"

	"hackerbot/app/service/conversation"
	"hackerbot/app/service/queue"

	"github.com/samber/do"
)

// Service is the single actor that applies UI events to the session.
type Service struct {
	session  *conversation.Session
	queueSvc *queue.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		session:  do.MustInvoke[*conversation.Session](di),
		queueSvc: do.MustInvoke[*queue.Service](di),
	}, nil
}

// Run processes events until ctx is done or the queue is closed, then
// closes the session so no pending reply outlives it.
func (s *Service) Run(ctx context.Context) {
	defer func() {
		s.session.Close()
		slog.Debug("Conversation finished", "transcript", s.session.Transcript())
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.queueSvc.Channel():
			if !ok {
				return
			}

			start := time.Now()
			s.handle(event)

			slog.Debug("Processed event",
				"kind", event.Kind,
				"duration", time.Since(start))
		}
	}
}

func (s *Service) handle(event queue.Event) {
	switch event.Kind {
	case queue.KindSubmit:
		if err := s.session.Submit(event.Text, event.Topic, event.Locale); err != nil {
			slog.Debug("Submit rejected", "reason", conversation.Reason(err))
		}
	case queue.KindChangeLocale:
		s.session.ChangeLocale(event.Locale)
	case queue.KindChangeTopic:
		s.session.ChangeTopic(event.Topic)
	default:
		slog.Warn("Unknown event", "kind", event.Kind)
	}
}
