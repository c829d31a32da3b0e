package services

import (
	"context"

	"poznote/internal/domain/models"
	"poznote/internal/httputil"
)

// ShareRequest creates or renews a share. An empty CustomToken means
// "generate one" (16 random bytes, hex). Password empty means no password.
type ShareRequest struct {
	CustomToken string  `json:"custom_token"`
	Theme       *string `json:"theme"`
	Indexable   bool    `json:"indexable"`
	Password    string  `json:"password"`
}

// UpdateShareSettingsRequest partially updates a share. Password uses
// tri-state semantics: absent leaves it alone, empty string or null clears.
type UpdateShareSettingsRequest struct {
	CustomToken string                  `json:"custom_token"`
	Indexable   *bool                   `json:"indexable"`
	Password    httputil.OptionalString `json:"password"`
}

// ShareResult reports the established share. Renewed is true when an
// existing share was updated in place rather than newly created.
type ShareResult struct {
	Status  *models.ShareStatus
	Renewed bool
	// SharedNotesCount is the number of notes newly auto-shared by folder
	// propagation; zero for note shares.
	SharedNotesCount int
}

// ShareSettings echoes the fields touched by a settings update.
type ShareSettings struct {
	Token       *string `json:"token,omitempty"`
	Indexable   *bool   `json:"indexable,omitempty"`
	HasPassword *bool   `json:"hasPassword,omitempty"`
}

// RepairResult summarizes a registry rebuild for one user.
type RepairResult struct {
	NoteLinks   int `json:"note_links"`
	FolderLinks int `json:"folder_links"`
}

// ShareService is the share propagation manager. It owns token issuing and
// validation, password hashing, the folder-to-note share propagation and
// un-propagation, and keeps the global registry paired with every
// ShareRecord mutation.
type ShareService interface {
	NoteShareStatus(ctx context.Context, noteID int64) (*models.ShareStatus, error)
	ShareNote(ctx context.Context, userID, noteID int64, req *ShareRequest) (*ShareResult, error)
	UnshareNote(ctx context.Context, noteID int64) error
	UpdateNoteShareSettings(ctx context.Context, userID, noteID int64, req *UpdateShareSettingsRequest) (*ShareSettings, error)

	FolderShareStatus(ctx context.Context, folderID int64) (*models.ShareStatus, error)
	ShareFolder(ctx context.Context, userID, folderID int64, req *ShareRequest) (*ShareResult, error)
	UnshareFolder(ctx context.Context, folderID int64) (int, error)
	UpdateFolderShareSettings(ctx context.Context, userID, folderID int64, req *UpdateShareSettingsRequest) (*ShareSettings, error)

	// SyncNoteShareOnMove applies the share consistency rule when a note
	// changes folders: leaving a shared folder drops the note's share,
	// entering one creates a propagated share. Returns -1, 0 or +1.
	SyncNoteShareOnMove(ctx context.Context, userID, noteID int64, oldFolderID, newFolderID *int64) (int, error)

	// RevokeFolderShares revokes any active folder shares in the given
	// folder id set and un-propagates their note shares. Used by the
	// folder delete cascade.
	RevokeFolderShares(ctx context.Context, folderIDs []int64) error

	// ResolvePublicToken routes an inbound public token to its owner.
	ResolvePublicToken(ctx context.Context, token string) (*models.SharedLink, error)

	// RepairRegistry rebuilds the global registry rows of one user from
	// that user's share tables, compensating for drift.
	RepairRegistry(ctx context.Context, userID int64) (*RepairResult, error)
}
