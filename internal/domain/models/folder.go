package models

import (
	"time"
)

// Folder is a named hierarchical container for notes, scoped to a workspace.
// The parent/child relation within one workspace forms a forest.
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Workspace string    `json:"workspace"`
	ParentID  *int64    `json:"parent_id"` // NULL = root level
	Icon      *string   `json:"icon"`
	IconColor *string   `json:"icon_color"`
	Path      string    `json:"path,omitempty"` // Computed display path, not stored in DB
	Created   time.Time `json:"created"`
}

// ReservedFolderNames may never be assigned to a folder. The UI treats them
// as virtual system folders. Matching is case-sensitive.
var ReservedFolderNames = []string{"Favorites", "Tags", "Trash", "Public"}

// IsReservedFolderName reports whether name collides with a system folder.
func IsReservedFolderName(name string) bool {
	for _, r := range ReservedFolderNames {
		if name == r {
			return true
		}
	}
	return false
}

// FolderTreeNode represents a folder in the hierarchical listing with
// nested children, sorted case-insensitively by name at every level.
type FolderTreeNode struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	ParentID  *int64            `json:"parent_id"`
	Icon      *string           `json:"icon"`
	IconColor *string           `json:"icon_color"`
	Path      string            `json:"path"`
	Children  []*FolderTreeNode `json:"children"`
}
