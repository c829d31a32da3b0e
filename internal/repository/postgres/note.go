package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
)

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{pool: config.Pool}
}

// GetByID retrieves a note by ID
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, heading, workspace, folder_id, folder, favorite, trash, created, updated
		FROM entries
		WHERE id = $1
	`

	var note models.Note
	err := db.QueryRow(ctx, query, id).Scan(
		&note.ID,
		&note.Heading,
		&note.Workspace,
		&note.FolderID,
		&note.Folder,
		&note.Favorite,
		&note.Trash,
		&note.Created,
		&note.Updated,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

// ListInFolder returns the non-trashed notes directly inside a folder.
// Matching by folder_id OR the denormalized name keeps legacy rows
// that predate folder_id covered.
func (r *PostgresNoteRepository) ListInFolder(ctx context.Context, folderID int64, folderName string) ([]models.Note, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, heading, workspace, folder_id, folder, favorite, trash, created, updated
		FROM entries
		WHERE trash = FALSE AND (folder_id = $1 OR folder = $2)
		ORDER BY id
	`

	rows, err := db.Query(ctx, query, folderID, folderName)
	if err != nil {
		return nil, fmt.Errorf("list notes in folder: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(
			&note.ID,
			&note.Heading,
			&note.Workspace,
			&note.FolderID,
			&note.Folder,
			&note.Favorite,
			&note.Trash,
			&note.Created,
			&note.Updated,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// ListDirect returns a folder's non-trashed notes by folder_id only,
// scoped to the workspace
func (r *PostgresNoteRepository) ListDirect(ctx context.Context, workspace string, folderID int64) ([]models.Note, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT id, heading, workspace, folder_id, folder, favorite, trash, created, updated
		FROM entries
		WHERE trash = FALSE AND workspace = $1 AND folder_id = $2
		ORDER BY id
	`

	rows, err := db.Query(ctx, query, workspace, folderID)
	if err != nil {
		return nil, fmt.Errorf("list direct notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(
			&note.ID,
			&note.Heading,
			&note.Workspace,
			&note.FolderID,
			&note.Folder,
			&note.Favorite,
			&note.Trash,
			&note.Created,
			&note.Updated,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// TrashByFolderIDs soft-deletes every note whose folder_id is in ids
func (r *PostgresNoteRepository) TrashByFolderIDs(ctx context.Context, workspace string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := GetExecutor(ctx, r.pool)

	query := `
		UPDATE entries
		SET trash = TRUE, updated = now()
		WHERE workspace = $1 AND trash = FALSE AND folder_id = ANY($2)
	`

	result, err := db.Exec(ctx, query, workspace, ids)
	if err != nil {
		return 0, fmt.Errorf("trash notes by folder: %w", err)
	}

	return result.RowsAffected(), nil
}

// TrashDirect soft-deletes only the direct non-trashed notes of one folder
func (r *PostgresNoteRepository) TrashDirect(ctx context.Context, workspace string, folderID int64) (int64, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		UPDATE entries
		SET trash = TRUE, updated = now()
		WHERE workspace = $1 AND trash = FALSE AND folder_id = $2
	`

	result, err := db.Exec(ctx, query, workspace, folderID)
	if err != nil {
		return 0, fmt.Errorf("trash folder notes: %w", err)
	}

	return result.RowsAffected(), nil
}

// HeadingExists reports whether another non-trashed note with the same
// heading exists in the same folder
func (r *PostgresNoteRepository) HeadingExists(ctx context.Context, workspace, heading string, folderID *int64, excludeID int64) (bool, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM entries
			WHERE workspace = $1 AND heading = $2
			  AND folder_id IS NOT DISTINCT FROM $3
			  AND trash = FALSE AND id != $4
		)
	`

	var exists bool
	if err := db.QueryRow(ctx, query, workspace, heading, folderID, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check heading: %w", err)
	}

	return exists, nil
}

// SetFolder moves a note, updating folder_id and the denormalized name together
func (r *PostgresNoteRepository) SetFolder(ctx context.Context, id int64, folderID *int64, folderName *string) error {
	db := GetExecutor(ctx, r.pool)

	query := `
		UPDATE entries
		SET folder_id = $1, folder = $2, updated = now()
		WHERE id = $3
	`

	result, err := db.Exec(ctx, query, folderID, folderName, id)
	if err != nil {
		return fmt.Errorf("move note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// RenameFolderRef updates the denormalized folder name on every note carrying the old name
func (r *PostgresNoteRepository) RenameFolderRef(ctx context.Context, workspace, oldName, newName string) error {
	db := GetExecutor(ctx, r.pool)

	query := `UPDATE entries SET folder = $1 WHERE workspace = $2 AND folder = $3`

	if _, err := db.Exec(ctx, query, newName, workspace, oldName); err != nil {
		return fmt.Errorf("rename folder references: %w", err)
	}

	return nil
}

// NoteCountsByFolder returns non-trashed note counts grouped by folder_id
func (r *PostgresNoteRepository) NoteCountsByFolder(ctx context.Context, workspace string) (map[int64]int, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT folder_id, COUNT(*)
		FROM entries
		WHERE workspace = $1 AND trash = FALSE AND folder_id IS NOT NULL
		GROUP BY folder_id
	`

	rows, err := db.Query(ctx, query, workspace)
	if err != nil {
		return nil, fmt.Errorf("count notes by folder: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var folderID int64
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, fmt.Errorf("scan note count: %w", err)
		}
		counts[folderID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note counts: %w", err)
	}

	return counts, nil
}

// CountUnfiled counts non-trashed notes with no folder
func (r *PostgresNoteRepository) CountUnfiled(ctx context.Context, workspace string) (int, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT COUNT(*) FROM entries
		WHERE workspace = $1 AND trash = FALSE AND folder_id IS NULL
	`

	var count int
	if err := db.QueryRow(ctx, query, workspace).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unfiled notes: %w", err)
	}

	return count, nil
}

// CountFavorites counts non-trashed favorite notes
func (r *PostgresNoteRepository) CountFavorites(ctx context.Context, workspace string) (int, error) {
	db := GetExecutor(ctx, r.pool)

	query := `
		SELECT COUNT(*) FROM entries
		WHERE workspace = $1 AND trash = FALSE AND favorite = TRUE
	`

	var count int
	if err := db.QueryRow(ctx, query, workspace).Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorite notes: %w", err)
	}

	return count, nil
}
