package ui

import (
	"context"
	"errors"
	"fmt"

	"hackerbot/app/service/conversation"
	"hackerbot/app/service/locale"
	"hackerbot/app/service/queue"
	"hackerbot/app/service/topic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/do"
)

type Service struct {
	catalog  *locale.Catalog
	registry *topic.Registry
	queueSvc *queue.Service
	session  *conversation.Session
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		catalog:  do.MustInvoke[*locale.Catalog](di),
		registry: do.MustInvoke[*topic.Registry](di),
		queueSvc: do.MustInvoke[*queue.Service](di),
		session:  do.MustInvoke[*conversation.Session](di),
	}, nil
}

// Run blocks until the user quits or ctx is canceled. Session changes are
// pushed to the program as they happen.
func (s *Service) Run(ctx context.Context) error {
	var program *tea.Program

	ready := make(chan struct{})
	unsubscribe := s.session.Subscribe(func(state conversation.State) {
		<-ready
		program.Send(stateMsg(state))
	})
	defer unsubscribe()

	model := NewModel(s.catalog, s.registry, s.queueSvc, s.session.Snapshot())
	program = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	close(ready)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal ui: %w", err)
	}

	return nil
}
