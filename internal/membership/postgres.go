package membership

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oriys/polaris/internal/domain"
)

// PostgresResolver resolves membership from a workspaces/workspace_members
// schema, for embedders whose identity data already lives in Postgres.
type PostgresResolver struct {
	pool *pgxpool.Pool
}

// NewPostgresResolver connects to Postgres and ensures the membership
// schema exists.
func NewPostgresResolver(ctx context.Context, dsn string) (*PostgresResolver, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	r := &PostgresResolver{pool: pool}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// NewPostgresResolverFromPool wraps an existing pool, for embedders that
// share one connection pool across components.
func NewPostgresResolverFromPool(pool *pgxpool.Pool) *PostgresResolver {
	return &PostgresResolver{pool: pool}
}

func (r *PostgresResolver) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *PostgresResolver) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workspaces (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS workspace_members (
			workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (workspace_id, user_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure membership schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresResolver) ResolveOwner(ctx context.Context, workspaceID string) (string, error) {
	var ownerID string
	err := r.pool.QueryRow(ctx, `
		SELECT owner_id FROM workspaces WHERE id = $1
	`, workspaceID).Scan(&ownerID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve workspace owner: %w", err)
	}
	return ownerID, nil
}

func (r *PostgresResolver) ResolveMember(ctx context.Context, workspaceID, userID string) (domain.Role, bool, error) {
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&role)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve workspace member: %w", err)
	}
	return domain.Role(role), true, nil
}
