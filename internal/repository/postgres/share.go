package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
)

// PostgresShareRepository implements the ShareRepository interface over the
// shared_notes and shared_folders tables. The two tables have identical
// shapes; the target type selects which one a query hits.
type PostgresShareRepository struct {
	pool *pgxpool.Pool
}

// NewShareRepository creates a new share repository
func NewShareRepository(config *RepositoryConfig) repositories.ShareRepository {
	return &PostgresShareRepository{pool: config.Pool}
}

func shareTable(target models.ShareTarget) (table, idColumn string) {
	if target == models.ShareTargetFolder {
		return "shared_folders", "folder_id"
	}
	return "shared_notes", "note_id"
}

// GetByTarget returns the share for a target, or (nil, nil) if not shared
func (r *PostgresShareRepository) GetByTarget(ctx context.Context, target models.ShareTarget, targetID int64) (*models.ShareRecord, error) {
	db := GetExecutor(ctx, r.pool)
	table, idCol := shareTable(target)

	query := fmt.Sprintf(`
		SELECT id, %s, token, theme, indexable, password_hash, created
		FROM %s
		WHERE %s = $1
	`, idCol, table, idCol)

	rec := models.ShareRecord{Target: target}
	err := db.QueryRow(ctx, query, targetID).Scan(
		&rec.ID,
		&rec.TargetID,
		&rec.Token,
		&rec.Theme,
		&rec.Indexable,
		&rec.PasswordHash,
		&rec.Created,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get share: %w", err)
	}

	return &rec, nil
}

// FindToken looks a token up across both share tables
func (r *PostgresShareRepository) FindToken(ctx context.Context, token string) (*models.ShareRecord, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, 'note', note_id, token, theme, indexable, password_hash, created
		FROM shared_notes WHERE token = $1
		UNION ALL
		SELECT id, 'folder', folder_id, token, theme, indexable, password_hash, created
		FROM shared_folders WHERE token = $1
	`

	var rec models.ShareRecord
	err := db.QueryRow(ctx, query, token).Scan(
		&rec.ID,
		&rec.Target,
		&rec.TargetID,
		&rec.Token,
		&rec.Theme,
		&rec.Indexable,
		&rec.PasswordHash,
		&rec.Created,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	return &rec, nil
}

// Insert creates a share record
func (r *PostgresShareRepository) Insert(ctx context.Context, rec *models.ShareRecord) error {
	db := GetExecutor(ctx, r.pool)
	table, idCol := shareTable(rec.Target)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, token, theme, indexable, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created
	`, table, idCol)

	err := db.QueryRow(ctx, query,
		rec.TargetID,
		rec.Token,
		rec.Theme,
		rec.Indexable,
		rec.PasswordHash,
	).Scan(&rec.ID, &rec.Created)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("token '%s': %w", rec.Token, domain.ErrConflict)
		}
		return fmt.Errorf("insert share: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an existing share, refreshing Created
func (r *PostgresShareRepository) Update(ctx context.Context, rec *models.ShareRecord) error {
	db := GetExecutor(ctx, r.pool)
	table, idCol := shareTable(rec.Target)

	query := fmt.Sprintf(`
		UPDATE %s
		SET token = $1, theme = $2, indexable = $3, password_hash = $4, created = now()
		WHERE %s = $5
		RETURNING id, created
	`, table, idCol)

	err := db.QueryRow(ctx, query,
		rec.Token,
		rec.Theme,
		rec.Indexable,
		rec.PasswordHash,
		rec.TargetID,
	).Scan(&rec.ID, &rec.Created)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("share for %s %d: %w", rec.Target, rec.TargetID, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return fmt.Errorf("token '%s': %w", rec.Token, domain.ErrConflict)
		}
		return fmt.Errorf("update share: %w", err)
	}

	return nil
}

// UpdateSettings applies a partial update to an existing share
func (r *PostgresShareRepository) UpdateSettings(ctx context.Context, target models.ShareTarget, targetID int64, token *string, indexable *bool, passwordHash *string, setPassword bool) error {
	db := GetExecutor(ctx, r.pool)
	table, idCol := shareTable(target)

	query := fmt.Sprintf(`
		UPDATE %s
		SET token = COALESCE($1, token),
		    indexable = COALESCE($2, indexable),
		    password_hash = CASE WHEN $3 THEN $4 ELSE password_hash END
		WHERE %s = $5
	`, table, idCol)

	result, err := db.Exec(ctx, query, token, indexable, setPassword, passwordHash, targetID)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("token: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update share settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("share for %s %d: %w", target, targetID, domain.ErrNotFound)
	}

	return nil
}

// DeleteByTarget revokes the share for a target
func (r *PostgresShareRepository) DeleteByTarget(ctx context.Context, target models.ShareTarget, targetID int64) error {
	db := GetExecutor(ctx, r.pool)
	table, idCol := shareTable(target)

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, idCol)

	if _, err := db.Exec(ctx, query, targetID); err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	return nil
}

// ListAll returns every share record of one target type
func (r *PostgresShareRepository) ListAll(ctx context.Context, target models.ShareTarget) ([]models.ShareRecord, error) {
	db := GetExecutor(ctx, r.pool)
	table, idCol := shareTable(target)

	query := fmt.Sprintf(`
		SELECT id, %s, token, theme, indexable, password_hash, created
		FROM %s
		ORDER BY id
	`, idCol, table)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var records []models.ShareRecord
	for rows.Next() {
		rec := models.ShareRecord{Target: target}
		if err := rows.Scan(
			&rec.ID,
			&rec.TargetID,
			&rec.Token,
			&rec.Theme,
			&rec.Indexable,
			&rec.PasswordHash,
			&rec.Created,
		); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}

	return records, nil
}
