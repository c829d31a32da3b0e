package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{pool: config.Pool}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	db := GetExecutor(ctx, r.pool)

	query := `
		INSERT INTO folders (name, workspace, parent_id, icon, icon_color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created
	`

	err := db.QueryRow(ctx, query,
		folder.Name,
		folder.Workspace,
		folder.ParentID,
		folder.Icon,
		folder.IconColor,
	).Scan(&folder.ID, &folder.Created)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder parent: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, name, workspace, parent_id, icon, icon_color, created
		FROM folders
		WHERE id = $1
	`

	var folder models.Folder
	err := db.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.Workspace,
		&folder.ParentID,
		&folder.Icon,
		&folder.IconColor,
		&folder.Created,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// GetByNameAndParent finds a folder by name under the given parent (nil = root)
func (r *PostgresFolderRepository) GetByNameAndParent(ctx context.Context, workspace, name string, parentID *int64) (*models.Folder, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, name, workspace, parent_id, icon, icon_color, created
		FROM folders
		WHERE workspace = $1 AND name = $2
		  AND parent_id IS NOT DISTINCT FROM $3
	`

	var folder models.Folder
	err := db.QueryRow(ctx, query, workspace, name, parentID).Scan(
		&folder.ID,
		&folder.Name,
		&folder.Workspace,
		&folder.ParentID,
		&folder.Icon,
		&folder.IconColor,
		&folder.Created,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder by name: %w", err)
	}

	return &folder, nil
}

// ListByWorkspace returns every folder of a workspace
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspace string) ([]models.Folder, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, name, workspace, parent_id, icon, icon_color, created
		FROM folders
		WHERE workspace = $1
		ORDER BY name
	`

	rows, err := db.Query(ctx, query, workspace)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.Workspace,
			&folder.ParentID,
			&folder.Icon,
			&folder.IconColor,
			&folder.Created,
		); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// SiblingNameExists reports whether another folder with the same name shares the parent
func (r *PostgresFolderRepository) SiblingNameExists(ctx context.Context, workspace, name string, parentID *int64, excludeID int64) (bool, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM folders
			WHERE workspace = $1 AND name = $2
			  AND parent_id IS NOT DISTINCT FROM $3
			  AND id != $4
		)
	`

	var exists bool
	if err := db.QueryRow(ctx, query, workspace, name, parentID, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sibling name: %w", err)
	}

	return exists, nil
}

// UpdateName renames a folder
func (r *PostgresFolderRepository) UpdateName(ctx context.Context, id int64, name string) error {
	db := GetExecutor(ctx, r.pool)

	result, err := db.Exec(ctx, `UPDATE folders SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateParent re-parents a folder (nil = move to root)
func (r *PostgresFolderRepository) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	db := GetExecutor(ctx, r.pool)

	result, err := db.Exec(ctx, `UPDATE folders SET parent_id = $1 WHERE id = $2`, parentID, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder parent: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("move folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateIcon sets the folder's display hints
func (r *PostgresFolderRepository) UpdateIcon(ctx context.Context, id int64, icon, iconColor *string) error {
	db := GetExecutor(ctx, r.pool)

	result, err := db.Exec(ctx, `UPDATE folders SET icon = $1, icon_color = $2 WHERE id = $3`, icon, iconColor, id)
	if err != nil {
		return fmt.Errorf("update folder icon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByIDs removes the given folder rows within a workspace
func (r *PostgresFolderRepository) DeleteByIDs(ctx context.Context, workspace string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	db := GetExecutor(ctx, r.pool)

	_, err := db.Exec(ctx, `DELETE FROM folders WHERE workspace = $1 AND id = ANY($2)`, workspace, ids)
	if err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}
