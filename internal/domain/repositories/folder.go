package repositories

import (
	"context"

	"poznote/internal/domain/models"
)

// FolderRepository persists the folder forest.
//
// Lookup methods that can legitimately miss (GetByNameAndParent) return
// (nil, nil) on absence; GetByID returns a domain.ErrNotFound-wrapped error
// because callers always expect the row to exist.
type FolderRepository interface {
	// Create inserts a folder and fills in its generated ID and Created.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID.
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// GetByNameAndParent finds a folder by name under the given parent
	// (nil = root) in a workspace. Returns (nil, nil) when absent.
	GetByNameAndParent(ctx context.Context, workspace, name string, parentID *int64) (*models.Folder, error)

	// ListByWorkspace returns every folder of a workspace in one query.
	// Tree walks (paths, cycle checks, subtree collection) are done over
	// this flat list in memory rather than one query per level.
	ListByWorkspace(ctx context.Context, workspace string) ([]models.Folder, error)

	// SiblingNameExists reports whether another folder (id != excludeID)
	// with the given name exists under parentID in the workspace.
	SiblingNameExists(ctx context.Context, workspace, name string, parentID *int64, excludeID int64) (bool, error)

	// UpdateName renames a folder. IDs are unaffected by rename.
	UpdateName(ctx context.Context, id int64, name string) error

	// UpdateParent re-parents a folder (nil = move to root).
	UpdateParent(ctx context.Context, id int64, parentID *int64) error

	// UpdateIcon sets the display hints (nil clears).
	UpdateIcon(ctx context.Context, id int64, icon, iconColor *string) error

	// DeleteByIDs removes the given folder rows within a workspace.
	DeleteByIDs(ctx context.Context, workspace string, ids []int64) error
}
