package repositories

import (
	"context"

	"poznote/internal/domain/models"
)

// ShareRepository persists ShareRecords for both targets (shared_notes and
// shared_folders tables). At most one record exists per target.
type ShareRepository interface {
	// GetByTarget returns the share for a target, or (nil, nil) if the
	// target is not shared.
	GetByTarget(ctx context.Context, target models.ShareTarget, targetID int64) (*models.ShareRecord, error)

	// FindToken looks a token up across BOTH share tables. Returns
	// (nil, nil) when the token is unused. Token uniqueness spans the
	// combined note/folder space.
	FindToken(ctx context.Context, token string) (*models.ShareRecord, error)

	// Insert creates a share record and fills in ID and Created.
	Insert(ctx context.Context, rec *models.ShareRecord) error

	// Update replaces token, theme, indexable and password of an existing
	// share in place, refreshing Created.
	Update(ctx context.Context, rec *models.ShareRecord) error

	// UpdateSettings applies a partial update. Nil fields are unchanged;
	// setPassword distinguishes "clear password" from "leave alone".
	UpdateSettings(ctx context.Context, target models.ShareTarget, targetID int64, token *string, indexable *bool, passwordHash *string, setPassword bool) error

	// DeleteByTarget revokes the share for a target. Deleting an absent
	// share is not an error.
	DeleteByTarget(ctx context.Context, target models.ShareTarget, targetID int64) error

	// ListAll returns every share record of one target type, used by the
	// registry repair sweep.
	ListAll(ctx context.Context, target models.ShareTarget) ([]models.ShareRecord, error)
}

// RegistryRepository is the global share registry (shared_links). It is the
// single cross-user store: every live token is registered exactly once and
// resolves to its owning user and target.
type RegistryRepository interface {
	// Register upserts a token binding. Called paired with every
	// ShareRecord insert/renew, never on its own.
	Register(ctx context.Context, token string, userID int64, target models.ShareTarget, targetID int64) error

	// Unregister removes a token binding. Unregistering an absent token
	// is not an error.
	Unregister(ctx context.Context, token string) error

	// Resolve maps an inbound public token to its registry entry.
	Resolve(ctx context.Context, token string) (*models.SharedLink, error)

	// DeleteByUser clears all bindings of one user (repair sweep).
	DeleteByUser(ctx context.Context, userID int64) error
}

// WorkspaceRepository validates workspace names for the managers.
type WorkspaceRepository interface {
	// Exists reports whether a workspace with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// FirstName returns the alphabetically first workspace name, used as
	// the default when a request names none.
	FirstName(ctx context.Context) (string, error)
}
