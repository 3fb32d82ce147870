package net

import (
	"sync"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

// EventQueue buffers game events between a game observer, which runs with
// the game locked and must not block, and a writer goroutine.
type EventQueue struct {
	mu     sync.Mutex
	events []log.GameEvent
	signal chan struct{}
}

func NewEventQueue() *EventQueue {
	return &EventQueue{signal: make(chan struct{}, 1)}
}

// Push appends an event and wakes the writer. It never blocks, so it can be
// passed directly to game.Game.Subscribe.
func (q *EventQueue) Push(e log.GameEvent) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Ready is signalled after one or more pushes.
func (q *EventQueue) Ready() <-chan struct{} {
	return q.signal
}

// Drain removes and returns everything queued so far.
func (q *EventQueue) Drain() []log.GameEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}
