package repositories

import (
	"context"

	"poznote/internal/domain/models"
)

// NoteRepository is the entry-store surface used by the folder and share
// managers. Note content persistence lives elsewhere; only the structural
// columns (folder reference, trash flag, heading) are touched here.
type NoteRepository interface {
	// GetByID retrieves a note by ID.
	GetByID(ctx context.Context, id int64) (*models.Note, error)

	// ListInFolder returns the non-trashed notes directly inside a folder.
	// Matches by folder_id OR by the denormalized folder name so legacy
	// rows that predate folder_id stay covered. Used by share propagation,
	// which must reach every note the public folder page would show.
	ListInFolder(ctx context.Context, folderID int64, folderName string) ([]models.Note, error)

	// ListDirect returns the non-trashed notes of one folder within one
	// workspace, matching by folder_id only. Used by bulk moves, where a
	// stale name match from another workspace must not pull a note in.
	ListDirect(ctx context.Context, workspace string, folderID int64) ([]models.Note, error)

	// TrashByFolderIDs soft-deletes every note whose folder_id is in ids
	// within the workspace. Returns the number of notes trashed. The
	// denormalized folder name is left untouched for restore context.
	TrashByFolderIDs(ctx context.Context, workspace string, ids []int64) (int64, error)

	// TrashDirect soft-deletes only the direct non-trashed notes of one
	// folder. Returns the number affected.
	TrashDirect(ctx context.Context, workspace string, folderID int64) (int64, error)

	// HeadingExists reports whether a different non-trashed note (id !=
	// excludeID) with the same heading exists in (workspace, folderID).
	// folderID nil means "no folder".
	HeadingExists(ctx context.Context, workspace, heading string, folderID *int64, excludeID int64) (bool, error)

	// SetFolder moves a note: updates folder_id and the denormalized
	// folder name together (both nil = move to root) and bumps updated.
	SetFolder(ctx context.Context, id int64, folderID *int64, folderName *string) error

	// RenameFolderRef updates the denormalized folder name on every note
	// of a workspace that carries the old name.
	RenameFolderRef(ctx context.Context, workspace, oldName, newName string) error

	// NoteCountsByFolder returns non-trashed note counts grouped by
	// folder_id for one workspace, in a single query.
	NoteCountsByFolder(ctx context.Context, workspace string) (map[int64]int, error)

	// CountUnfiled counts non-trashed notes with no folder.
	CountUnfiled(ctx context.Context, workspace string) (int, error)

	// CountFavorites counts non-trashed favorite notes.
	CountFavorites(ctx context.Context, workspace string) (int, error)
}
