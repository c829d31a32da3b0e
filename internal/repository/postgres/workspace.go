package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"poznote/internal/domain"
	"poznote/internal/domain/repositories"
)

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &PostgresWorkspaceRepository{pool: config.Pool}
}

// Exists reports whether a workspace with the given name exists
func (r *PostgresWorkspaceRepository) Exists(ctx context.Context, name string) (bool, error) {
	db := GetExecutor(ctx, r.pool)

	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM workspaces WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check workspace: %w", err)
	}

	return exists, nil
}

// FirstName returns the alphabetically first workspace name
func (r *PostgresWorkspaceRepository) FirstName(ctx context.Context) (string, error) {
	db := GetExecutor(ctx, r.pool)

	var name string
	err := db.QueryRow(ctx, `SELECT name FROM workspaces ORDER BY name LIMIT 1`).Scan(&name)
	if err != nil {
		if IsPgNoRowsError(err) {
			return "", fmt.Errorf("workspace: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("get default workspace: %w", err)
	}

	return name, nil
}
