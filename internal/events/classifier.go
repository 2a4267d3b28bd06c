package events

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authsync/internal/models"
	"github.com/wolfeidau/authsync/internal/paths"
)

// MembersProperty is the membership-list property on group nodes. A
// modification addressing it is a group-membership change, not a profile
// attribute change.
const MembersProperty = "members"

// Classifier derives domain events from the modifications of a change
// batch.
type Classifier struct{}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify walks the batch's modifications once, in order, and returns the
// events they imply, in the same relative order.
//
// A modification on the membership-list property yields a group-membership
// event for MODIFY only; the other types carry no event semantics there
// and are dropped. Any other modification yields an account-lifecycle
// event only when its resolved path ends with the principal name.
func (c *Classifier) Classify(batch models.ChangeBatch, principalName string) []Event {
	var out []Event

	for _, m := range batch.Modifications {
		path := m.Path()

		if paths.LastSegment(path) == MembersProperty {
			if m.Type != models.ModificationModify {
				log.Debug().
					Str("type", string(m.Type)).
					Str("path", path).
					Msg("Ignoring membership modification with no event semantics")
				continue
			}
			out = append(out, Event{
				ID:        uuid.New(),
				Kind:      KindGroupMembership,
				Operation: OperationUpdate,
				Principal: principalName,
				Actor:     batch.Actor,
				Source:    m,
				EmittedAt: time.Now(),
			})
			continue
		}

		if !strings.HasSuffix(path, principalName) {
			continue
		}

		var op Operation
		switch m.Type {
		case models.ModificationCreate:
			op = OperationCreate
		case models.ModificationDelete:
			op = OperationDelete
		case models.ModificationCopy, models.ModificationModify, models.ModificationMove:
			op = OperationUpdate
		default:
			continue
		}

		out = append(out, Event{
			ID:        uuid.New(),
			Kind:      KindAuthorizable,
			Operation: op,
			Principal: principalName,
			Actor:     batch.Actor,
			Source:    m,
			EmittedAt: time.Now(),
		})
	}

	return out
}
