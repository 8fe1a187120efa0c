package conversation

import (
	"fmt"
	"strings"
)

// ChatHistory is an append-only message log; insertion order is display order.
type ChatHistory struct {
	messages []ChatMessage
}

func (h *ChatHistory) add(msg ChatMessage) {
	h.messages = append(h.messages, msg)
}

func (h *ChatHistory) len() int {
	return len(h.messages)
}

func (h *ChatHistory) snapshot() []ChatMessage {
	return append([]ChatMessage(nil), h.messages...)
}

func (h *ChatHistory) format() string {
	if len(h.messages) == 0 {
		return "No messages"
	}

	var builder strings.Builder

	for _, msg := range h.messages {
		builder.WriteString(fmt.Sprintf("%s - %s [%s]: %s\n", formatTime(msg.CreatedAt), msg.Role, msg.Topic, msg.Content))
	}

	return builder.String()
}
