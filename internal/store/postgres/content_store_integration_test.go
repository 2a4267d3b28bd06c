//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/authsync/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*ContentStore, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cs, err := NewContentStore(ctx, &Config{
		PoolConfig:  PoolConfig{ConnString: connString},
		AutoMigrate: true,
	})
	require.NoError(t, err)

	cleanup := func() {
		cs.Close()
		_ = container.Terminate(ctx)
	}

	return cs, cleanup
}

func TestIntegration_ContentStore(t *testing.T) {
	ctx := context.Background()
	cs, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	t.Run("create if absent is idempotent", func(t *testing.T) {
		created, err := cs.CreateIfAbsent(ctx, "/_user/public/alice/profile")
		require.NoError(t, err)
		require.True(t, created)

		created, err = cs.CreateIfAbsent(ctx, "/_user/public/alice/profile")
		require.NoError(t, err)
		require.False(t, created)

		// Intermediates were created too.
		exists, err := cs.Exists(ctx, "/_user/public")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("properties round trip", func(t *testing.T) {
		path := "/_user/public/alice/profile"
		require.NoError(t, cs.SetProperty(ctx, path, store.Scalar("email", "alice@example.com")))
		require.NoError(t, cs.SetProperty(ctx, path, store.Multi("tags", "a", "b")))

		prop, err := cs.GetProperty(ctx, path, "email")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", prop.First())
		require.False(t, prop.Multi)

		prop, err = cs.GetProperty(ctx, path, "tags")
		require.NoError(t, err)
		require.True(t, prop.Multi)
		require.Equal(t, []string{"a", "b"}, prop.Values)

		_, err = cs.GetProperty(ctx, path, "missing")
		require.ErrorIs(t, err, store.ErrPropertyNotFound)

		_, err = cs.GetProperty(ctx, "/missing", "email")
		require.ErrorIs(t, err, store.ErrNodeNotFound)
	})

	t.Run("protected property rejects writes", func(t *testing.T) {
		path := "/_user/public/alice/profile"
		require.NoError(t, cs.SetProperty(ctx, path, store.Property{
			Name: "uuid", Values: []string{"x"}, Protected: true,
		}))

		err := cs.SetProperty(ctx, path, store.Scalar("uuid", "y"))
		require.ErrorIs(t, err, store.ErrProtectedProperty)

		prop, err := cs.GetProperty(ctx, path, "uuid")
		require.NoError(t, err)
		require.Equal(t, "x", prop.First())
	})

	t.Run("access entries preserve order and duplicates", func(t *testing.T) {
		path := "/_user/private/alice"
		_, err := cs.CreateIfAbsent(ctx, path)
		require.NoError(t, err)

		owner := store.AccessEntry{Principal: "alice", Right: store.RightRead, Allow: true}
		deny := store.AccessEntry{Principal: "anonymous", Right: store.RightRead, Allow: false}
		require.NoError(t, cs.AddAccessEntry(ctx, path, owner))
		require.NoError(t, cs.AddAccessEntry(ctx, path, deny))
		require.NoError(t, cs.AddAccessEntry(ctx, path, owner))

		entries, err := cs.AccessEntries(ctx, path)
		require.NoError(t, err)
		require.Equal(t, []store.AccessEntry{owner, deny, owner}, entries)
	})

	t.Run("remove node drops subtree", func(t *testing.T) {
		_, err := cs.CreateIfAbsent(ctx, "/a/b/c")
		require.NoError(t, err)
		require.NoError(t, cs.SetProperty(ctx, "/a/b/c", store.Scalar("k", "v")))

		require.NoError(t, cs.RemoveNode(ctx, "/a/b"))

		exists, err := cs.Exists(ctx, "/a/b/c")
		require.NoError(t, err)
		require.False(t, exists)

		exists, err = cs.Exists(ctx, "/a")
		require.NoError(t, err)
		require.True(t, exists)

		require.ErrorIs(t, cs.RemoveNode(ctx, "/a/b"), store.ErrNodeNotFound)
	})
}
