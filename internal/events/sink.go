package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// MemorySink collects published events for inspection in tests and
// dry runs.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish records the event.
func (s *MemorySink) Publish(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the recorded events in publication order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// LogSink publishes events to the structured log. Used by the CLI where no
// external event channel is attached.
type LogSink struct{}

// Publish logs the event.
func (s *LogSink) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("kind", string(event.Kind)).
		Str("operation", string(event.Operation)).
		Str("principal", event.Principal).
		Str("actor", event.Actor).
		Str("path", event.Source.Path()).
		Msg("Domain event")
	return nil
}
