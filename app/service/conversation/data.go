package conversation

import (
	"time"

	"hackerbot/app/service/locale"
	"hackerbot/app/service/topic"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingReply Phase = "awaiting_reply"
)

// ChatMessage is immutable once appended.
type ChatMessage struct {
	ID        string
	Role      Role
	Content   string
	Topic     topic.ID
	CreatedAt time.Time
}

// State is a read-only snapshot of a session. Version grows with every
// change, so consumers can drop snapshots that arrive out of order.
type State struct {
	Version      uint64
	Messages     []ChatMessage
	Phase        Phase
	ActiveTopic  topic.ID
	ActiveLocale locale.Locale
}

func (s State) clone() State {
	s.Messages = append([]ChatMessage(nil), s.Messages...)
	return s
}
