package override

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oriys/polaris/internal/domain"
)

// PostgresStore persists resource overrides in Postgres so they survive
// process restarts. It satisfies the same Store contract as MemoryStore;
// composition with the engine is identical.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the override schema
// exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS resource_grants (
			resource_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (resource_id, user_id, action)
		)`,
		`CREATE TABLE IF NOT EXISTS resource_revokes (
			resource_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (resource_id, user_id, action)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure override schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Grant(ctx context.Context, resourceID, userID string, action domain.Action) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO resource_grants (resource_id, user_id, action)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, resourceID, userID, string(action))
	if err != nil {
		return fmt.Errorf("grant resource permission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Revoke(ctx context.Context, resourceID, userID string, action domain.Action) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO resource_revokes (resource_id, user_id, action)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, resourceID, userID, string(action))
	if err != nil {
		return fmt.Errorf("revoke resource permission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, resourceID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM resource_grants WHERE resource_id = $1`, resourceID); err != nil {
		return fmt.Errorf("clear resource grants: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM resource_revokes WHERE resource_id = $1`, resourceID); err != nil {
		return fmt.Errorf("clear resource revokes: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsGranted(ctx context.Context, resourceID, userID string, action domain.Action) (bool, error) {
	return s.exists(ctx, "resource_grants", resourceID, userID, action)
}

func (s *PostgresStore) IsRevoked(ctx context.Context, resourceID, userID string, action domain.Action) (bool, error) {
	return s.exists(ctx, "resource_revokes", resourceID, userID, action)
}

func (s *PostgresStore) exists(ctx context.Context, table, resourceID, userID string, action domain.Action) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `
		SELECT 1 FROM `+table+`
		WHERE resource_id = $1 AND user_id = $2 AND action = $3
	`, resourceID, userID, string(action)).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return true, nil
}
