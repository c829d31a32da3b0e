package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
)

// PostgresRegistryRepository implements the RegistryRepository interface
// over the shared_links table.
type PostgresRegistryRepository struct {
	pool *pgxpool.Pool
}

// NewRegistryRepository creates a new registry repository
func NewRegistryRepository(config *RepositoryConfig) repositories.RegistryRepository {
	return &PostgresRegistryRepository{pool: config.Pool}
}

// Register upserts a token binding
func (r *PostgresRegistryRepository) Register(ctx context.Context, token string, userID int64, target models.ShareTarget, targetID int64) error {
	db := GetExecutor(ctx, r.pool)

	query := `
		INSERT INTO shared_links (token, user_id, target_type, target_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    target_type = EXCLUDED.target_type,
		    target_id = EXCLUDED.target_id
	`

	if _, err := db.Exec(ctx, query, token, userID, string(target), targetID); err != nil {
		return fmt.Errorf("register token: %w", err)
	}

	return nil
}

// Unregister removes a token binding; absent tokens are not an error
func (r *PostgresRegistryRepository) Unregister(ctx context.Context, token string) error {
	db := GetExecutor(ctx, r.pool)

	if _, err := db.Exec(ctx, `DELETE FROM shared_links WHERE token = $1`, token); err != nil {
		return fmt.Errorf("unregister token: %w", err)
	}

	return nil
}

// Resolve maps an inbound public token to its registry entry
func (r *PostgresRegistryRepository) Resolve(ctx context.Context, token string) (*models.SharedLink, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT token, user_id, target_type, target_id, created_at
		FROM shared_links
		WHERE token = $1
	`

	var link models.SharedLink
	err := db.QueryRow(ctx, query, token).Scan(
		&link.Token,
		&link.UserID,
		&link.TargetType,
		&link.TargetID,
		&link.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	return &link, nil
}

// DeleteByUser clears all bindings of one user
func (r *PostgresRegistryRepository) DeleteByUser(ctx context.Context, userID int64) error {
	db := GetExecutor(ctx, r.pool)

	if _, err := db.Exec(ctx, `DELETE FROM shared_links WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user tokens: %w", err)
	}

	return nil
}
