package sinks

import (
	"context"
	"sync"

	"gridchase/logging"
)

// Memory retains written events in order. Tests point the router at one
// to assert on delivery.
type Memory struct {
	mu     sync.Mutex
	events []logging.Event
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *Memory {
	return &Memory{}
}

// Write implements logging.Sink.
func (m *Memory) Write(event logging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, detach(event))
	return nil
}

// Events returns a copy of everything written so far.
func (m *Memory) Events() []logging.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]logging.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Reset forgets retained events.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = m.events[:0]
}

// Close implements logging.Sink.
func (m *Memory) Close(context.Context) error {
	return nil
}

// detach copies the event's mutable members so later producer writes
// cannot reach retained state.
func detach(event logging.Event) logging.Event {
	out := event
	if len(event.Targets) > 0 {
		out.Targets = append([]logging.EntityRef(nil), event.Targets...)
	}
	if len(event.Extra) > 0 {
		out.Extra = make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
