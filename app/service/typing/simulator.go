package typing

import (
	"sync"
	"time"

	"github.com/samber/do"
)

type state int

const (
	statePending state = iota
	stateFired
	stateCanceled
)

// Simulator delays delivery of a composed reply to model the assistant
// "thinking".
type Simulator struct {
	clock Clock
}

func New(_ *do.Injector) (*Simulator, error) {
	return NewSimulator(RealClock()), nil
}

func NewSimulator(clock Clock) *Simulator {
	return &Simulator{
		clock: clock,
	}
}

// Handle identifies one scheduled delivery.
type Handle struct {
	mu      sync.Mutex
	state   state
	timer   Timer
	payload string
	done    func(payload string)
}

// Start invokes done with payload once delay elapses, unless the handle is
// canceled first. done runs at most once.
func (s *Simulator) Start(payload string, delay time.Duration, done func(payload string)) *Handle {
	h := &Handle{
		payload: payload,
		done:    done,
	}

	h.mu.Lock()
	h.timer = s.clock.AfterFunc(delay, h.fire)
	h.mu.Unlock()

	return h
}

func (s *Simulator) Cancel(h *Handle) bool {
	if h == nil {
		return false
	}

	return h.Cancel()
}

func (h *Handle) fire() {
	h.mu.Lock()
	if h.state != statePending {
		h.mu.Unlock()
		return
	}
	h.state = stateFired
	h.mu.Unlock()

	h.done(h.payload)
}

// Cancel reports whether the delivery was stopped before it fired.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != statePending {
		return false
	}

	h.state = stateCanceled
	if h.timer != nil {
		h.timer.Stop()
	}

	return true
}

func (h *Handle) Fired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state == stateFired
}
