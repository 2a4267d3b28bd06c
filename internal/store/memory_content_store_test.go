package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryContentStoreCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	created, err := s.CreateIfAbsent(ctx, "/_user/public/alice/profile")
	require.NoError(t, err)
	require.True(t, created)

	// Intermediate nodes exist too.
	exists, err := s.Exists(ctx, "/_user/public/alice")
	require.NoError(t, err)
	require.True(t, exists)

	// Second call observes the existing node.
	created, err = s.CreateIfAbsent(ctx, "/_user/public/alice/profile")
	require.NoError(t, err)
	require.False(t, created)
}

func TestMemoryContentStoreProperties(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	_, err := s.CreateIfAbsent(ctx, "/n")
	require.NoError(t, err)

	require.NoError(t, s.SetProperty(ctx, "/n", Scalar("email", "alice@example.com")))
	require.NoError(t, s.SetProperty(ctx, "/n", Multi("tags", "a", "b")))

	prop, err := s.GetProperty(ctx, "/n", "email")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", prop.First())
	require.False(t, prop.Multi)

	prop, err = s.GetProperty(ctx, "/n", "tags")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, prop.Values)
	require.True(t, prop.Multi)

	_, err = s.GetProperty(ctx, "/n", "missing")
	require.ErrorIs(t, err, ErrPropertyNotFound)

	_, err = s.GetProperty(ctx, "/missing", "email")
	require.ErrorIs(t, err, ErrNodeNotFound)

	props, err := s.Properties(ctx, "/n")
	require.NoError(t, err)
	require.Len(t, props, 2)
}

func TestMemoryContentStoreProtectedProperty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	_, err := s.CreateIfAbsent(ctx, "/n")
	require.NoError(t, err)

	require.NoError(t, s.SetProperty(ctx, "/n", Property{Name: "uuid", Values: []string{"x"}, Protected: true}))

	err = s.SetProperty(ctx, "/n", Scalar("uuid", "y"))
	require.ErrorIs(t, err, ErrProtectedProperty)

	// The protected value is untouched.
	prop, err := s.GetProperty(ctx, "/n", "uuid")
	require.NoError(t, err)
	require.Equal(t, "x", prop.First())
}

func TestMemoryContentStoreRemoveNodeSubtree(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	_, err := s.CreateIfAbsent(ctx, "/a/b/c")
	require.NoError(t, err)

	require.NoError(t, s.RemoveNode(ctx, "/a/b"))

	exists, err := s.Exists(ctx, "/a/b/c")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = s.Exists(ctx, "/a")
	require.NoError(t, err)
	require.True(t, exists)

	require.ErrorIs(t, s.RemoveNode(ctx, "/a/b"), ErrNodeNotFound)
}

func TestMemoryContentStoreAccessEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	_, err := s.CreateIfAbsent(ctx, "/n")
	require.NoError(t, err)

	first := AccessEntry{Principal: "alice", Right: RightRead, Allow: true}
	second := AccessEntry{Principal: "anonymous", Right: RightRead, Allow: false}
	require.NoError(t, s.AddAccessEntry(ctx, "/n", first))
	require.NoError(t, s.AddAccessEntry(ctx, "/n", second))

	// Duplicate rows accumulate, nothing is replaced.
	require.NoError(t, s.AddAccessEntry(ctx, "/n", first))

	entries, err := s.AccessEntries(ctx, "/n")
	require.NoError(t, err)
	require.Equal(t, []AccessEntry{first, second, first}, entries)

	require.ErrorIs(t, s.AddAccessEntry(ctx, "/missing", first), ErrNodeNotFound)
}

func TestMemoryContentStoreConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	const workers = 16
	var wg sync.WaitGroup
	createdCount := make(chan bool, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.CreateIfAbsent(ctx, "/_user/private/alice")
			require.NoError(t, err)
			createdCount <- created
		}()
	}
	wg.Wait()
	close(createdCount)

	total := 0
	for created := range createdCount {
		if created {
			total++
		}
	}
	require.Equal(t, 1, total, "exactly one caller observes creation")
}
