package acl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/authsync/internal/store"
)

func TestGrantAppendsOneEntryPerCapability(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryContentStore()
	_, err := s.CreateIfAbsent(ctx, "/n")
	require.NoError(t, err)

	g := NewGrantBuilder(s)
	require.NoError(t, g.Grant(ctx, "/n", "alice", ReadGranted, WriteGranted, ReadDenied))

	entries, err := s.AccessEntries(ctx, "/n")
	require.NoError(t, err)
	require.Equal(t, []store.AccessEntry{
		{Principal: "alice", Right: store.RightRead, Allow: true},
		{Principal: "alice", Right: store.RightWrite, Allow: true},
		{Principal: "alice", Right: store.RightRead, Allow: false},
	}, entries)
}

func TestGrantNeverRemovesExistingEntries(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryContentStore()
	_, err := s.CreateIfAbsent(ctx, "/n")
	require.NoError(t, err)

	g := NewGrantBuilder(s)
	require.NoError(t, g.Grant(ctx, "/n", "alice", ReadGranted))
	require.NoError(t, g.Grant(ctx, "/n", "alice", ReadGranted))

	// Repeat grants accumulate duplicate rows; the readable outcome is
	// unchanged and nothing was reordered or dropped.
	entries, err := s.AccessEntries(ctx, "/n")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entries[0], entries[1])
}

func TestGrantMissingTargetPropagates(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryContentStore()

	g := NewGrantBuilder(s)
	err := g.Grant(ctx, "/missing", "alice", ReadGranted)
	require.ErrorIs(t, err, store.ErrNodeNotFound)
}

func TestOwnerCapabilitiesAllAllow(t *testing.T) {
	caps := OwnerCapabilities()
	require.Len(t, caps, 7)
	for _, c := range caps {
		require.True(t, c.Allow)
	}
}
