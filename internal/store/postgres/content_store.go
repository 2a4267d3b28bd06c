package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authsync/internal/store"
)

// Config holds configuration for the PostgreSQL-backed content store.
type Config struct {
	PoolConfig

	// AutoMigrate runs pending schema migrations on construction.
	AutoMigrate bool
}

// ContentStore implements store.ContentStore using PostgreSQL. Nodes,
// properties and access rows live in separate tables; CreateIfAbsent is
// atomic via INSERT ... ON CONFLICT DO NOTHING.
type ContentStore struct {
	pool *pgxpool.Pool
}

var _ store.ContentStore = (*ContentStore)(nil)

// NewContentStore creates the pool, optionally migrates the schema, and
// returns the store.
func NewContentStore(ctx context.Context, cfg *Config) (*ContentStore, error) {
	pool, err := NewPool(ctx, &cfg.PoolConfig)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := runMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &ContentStore{pool: pool}, nil
}

// NewContentStoreWithPool wraps an existing pool. The caller retains
// ownership of the pool's lifecycle.
func NewContentStoreWithPool(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

// Close releases the underlying connection pool.
func (s *ContentStore) Close() {
	s.pool.Close()
}

// Exists reports whether a node exists at path.
func (s *ContentStore) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM nodes WHERE path = $1)`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check node existence: %w", mapPostgresError(err))
	}
	return exists, nil
}

// CreateIfAbsent creates the node at path and any missing intermediate
// nodes. Exactly one concurrent caller observes created=true for a given
// path; the conflict target on the primary key provides the atomicity.
func (s *ContentStore) CreateIfAbsent(ctx context.Context, path string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", mapPostgresError(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ancestor := range ancestorPaths(path) {
		if _, err := tx.Exec(ctx,
			`INSERT INTO nodes (path) VALUES ($1) ON CONFLICT (path) DO NOTHING`, ancestor); err != nil {
			return false, fmt.Errorf("failed to create ancestor %s: %w", ancestor, mapPostgresError(err))
		}
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO nodes (path) VALUES ($1) ON CONFLICT (path) DO NOTHING`, path)
	if err != nil {
		return false, fmt.Errorf("failed to create node %s: %w", path, mapPostgresError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", mapPostgresError(err))
	}

	created := tag.RowsAffected() > 0
	if created {
		log.Debug().Str("path", path).Msg("Created node")
	}
	return created, nil
}

// Properties returns all properties of the node at path.
func (s *ContentStore) Properties(ctx context.Context, path string) ([]store.Property, error) {
	if err := s.requireNode(ctx, path); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT name, vals, multi, protected FROM properties WHERE path = $1`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var props []store.Property
	for rows.Next() {
		var p store.Property
		if err := rows.Scan(&p.Name, &p.Values, &p.Multi, &p.Protected); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// GetProperty returns a single property of the node at path.
func (s *ContentStore) GetProperty(ctx context.Context, path, name string) (store.Property, error) {
	prop := store.Property{Name: name}
	err := s.pool.QueryRow(ctx,
		`SELECT vals, multi, protected FROM properties WHERE path = $1 AND name = $2`, path, name).
		Scan(&prop.Values, &prop.Multi, &prop.Protected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := s.requireNode(ctx, path); err != nil {
				return store.Property{}, err
			}
			return store.Property{}, store.ErrPropertyNotFound
		}
		return store.Property{}, fmt.Errorf("failed to get property: %w", mapPostgresError(err))
	}
	return prop, nil
}

// SetProperty upserts a property. A conflicting protected property rejects
// the write.
func (s *ContentStore) SetProperty(ctx context.Context, path string, prop store.Property) error {
	if err := s.requireNode(ctx, path); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO properties (path, name, vals, multi, protected)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (path, name) DO UPDATE
		SET vals = EXCLUDED.vals, multi = EXCLUDED.multi
		WHERE NOT properties.protected
	`, path, prop.Name, prop.Values, prop.Multi, prop.Protected)
	if err != nil {
		return fmt.Errorf("failed to set property %s: %w", prop.Name, mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrProtectedProperty
	}
	return nil
}

// RemoveProperty removes a property if present.
func (s *ContentStore) RemoveProperty(ctx context.Context, path, name string) error {
	if err := s.requireNode(ctx, path); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`DELETE FROM properties WHERE path = $1 AND name = $2`, path, name)
	if err != nil {
		return fmt.Errorf("failed to remove property %s: %w", name, mapPostgresError(err))
	}
	return nil
}

// RemoveNode removes the node at path and its entire subtree. Properties
// and access rows go with their nodes via the schema's cascade.
func (s *ContentStore) RemoveNode(ctx context.Context, path string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM nodes WHERE path = $1 OR path LIKE $2`, path, likeEscape(path)+"/%")
	if err != nil {
		return fmt.Errorf("failed to remove node %s: %w", path, mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNodeNotFound
	}
	return nil
}

// AddAccessEntry appends one access-control row to the node at path.
func (s *ContentStore) AddAccessEntry(ctx context.Context, path string, entry store.AccessEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO access_entries (path, principal, right_name, allow)
		VALUES ($1, $2, $3, $4)
	`, path, entry.Principal, string(entry.Right), entry.Allow)
	if err != nil {
		return fmt.Errorf("failed to add access entry: %w", mapPostgresError(err))
	}
	return nil
}

// AccessEntries returns the access-control rows on path in insertion order.
func (s *ContentStore) AccessEntries(ctx context.Context, path string) ([]store.AccessEntry, error) {
	if err := s.requireNode(ctx, path); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT principal, right_name, allow FROM access_entries
		WHERE path = $1 ORDER BY seq
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query access entries: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var entries []store.AccessEntry
	for rows.Next() {
		var e store.AccessEntry
		var right string
		if err := rows.Scan(&e.Principal, &right, &e.Allow); err != nil {
			return nil, fmt.Errorf("failed to scan access entry: %w", err)
		}
		e.Right = store.Right(right)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *ContentStore) requireNode(ctx context.Context, path string) error {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNodeNotFound
	}
	return nil
}

// ancestorPaths returns the proper ancestors of path from the root down,
// excluding "/" and the path itself.
func ancestorPaths(path string) []string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	ancestors := make([]string, 0, len(segments)-1)
	current := ""
	for _, seg := range segments[:len(segments)-1] {
		current = current + "/" + seg
		ancestors = append(ancestors, current)
	}
	return ancestors
}

// likeEscape escapes LIKE metacharacters in a literal path prefix.
func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
