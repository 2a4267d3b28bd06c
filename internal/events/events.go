// Package events derives domain events from account change batches and
// delivers them to a sink.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/authsync/internal/models"
)

// Operation is the lifecycle operation an event describes.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// EventKind separates account-lifecycle events from group-membership
// change events.
type EventKind string

const (
	KindAuthorizable    EventKind = "authorizable"
	KindGroupMembership EventKind = "group-membership"
)

// Event is an immutable domain event describing one qualifying
// modification from a change batch. Never mutated after emission.
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	Operation Operation
	Principal string
	Actor     string
	Source    models.Modification
	EmittedAt time.Time
}

// Sink receives events in emission order. Implementations are expected to
// publish each event on the host's event channel with one
// synchronous-equivalent dispatch per event.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
