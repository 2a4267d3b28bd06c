package acl

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authsync/internal/store"
)

// GrantBuilder translates capability sets into access-control rows on
// content nodes. Rows are appended, never removed or reordered, so repeated
// grants are safe; duplicate rows may accumulate and downstream evaluation
// must tolerate them.
type GrantBuilder struct {
	store store.ContentStore
}

// NewGrantBuilder creates a grant builder over the given store.
func NewGrantBuilder(contentStore store.ContentStore) *GrantBuilder {
	return &GrantBuilder{store: contentStore}
}

// Grant appends one access entry per capability at targetPath for the
// principal. Store faults propagate unretried; the caller decides whether
// the surrounding provisioning step survives.
func (g *GrantBuilder) Grant(ctx context.Context, targetPath, principal string, caps ...Capability) error {
	for _, c := range caps {
		entry := store.AccessEntry{
			Principal: principal,
			Right:     c.Right,
			Allow:     c.Allow,
		}
		if err := g.store.AddAccessEntry(ctx, targetPath, entry); err != nil {
			return fmt.Errorf("failed to add access entry for %s on %s: %w", principal, targetPath, err)
		}
	}

	log.Debug().
		Str("path", targetPath).
		Str("principal", principal).
		Int("capabilities", len(caps)).
		Msg("Applied access entries")

	return nil
}
