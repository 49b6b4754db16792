package pollstest

import (
	"context"
	"sync"

	"shift_coordination_system/internal/polls"
)

// Materializer records every closed event it receives.
type Materializer struct {
	mu     sync.Mutex
	events []polls.ClosedEvent
}

func (m *Materializer) Materialize(ctx context.Context, event polls.ClosedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

func (m *Materializer) Events() []polls.ClosedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]polls.ClosedEvent{}, m.events...)
}
