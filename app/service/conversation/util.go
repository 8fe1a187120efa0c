package conversation

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces unique message IDs.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator yields "msg-1", "msg-2", ... and is deterministic.
type CounterGenerator struct {
	next atomic.Uint64
}

func (g *CounterGenerator) NewID() string {
	return fmt.Sprintf("msg-%d", g.next.Add(1))
}

func newIDGenerator(kind string) IDGenerator {
	if kind == "counter" {
		return &CounterGenerator{}
	}

	return UUIDGenerator{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return t.Format("15:04:05")
}
