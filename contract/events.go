package contract

import (
	"context"
	"sync"

	"okinoko_vote/contract/dao"
)

// Sink receives events after the emitting call has committed.
type Sink interface {
	Publish(ctx context.Context, ev dao.Event) error
}

// EventLog is an in-memory sink, handy for tests and the /events endpoint.
type EventLog struct {
	mu     sync.Mutex
	events []dao.Event
	limit  int
}

// NewEventLog keeps at most limit events, dropping the oldest. limit <= 0 keeps everything.
func NewEventLog(limit int) *EventLog {
	return &EventLog{limit: limit}
}

func (l *EventLog) Publish(_ context.Context, ev dao.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	if l.limit > 0 && len(l.events) > l.limit {
		l.events = append(l.events[:0:0], l.events[len(l.events)-l.limit:]...)
	}
	return nil
}

// Events returns a copy of the retained events, oldest first.
func (l *EventLog) Events() []dao.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]dao.Event(nil), l.events...)
}

// Kinds is a shorthand for asserting event sequences.
func (l *EventLog) Kinds() []string {
	evs := l.Events()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind()
	}
	return out
}

func (l *EventLog) Reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}
