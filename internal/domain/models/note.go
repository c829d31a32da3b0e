package models

import (
	"time"
)

// Note is an entry record. A note belongs to at most one folder.
//
// FolderID is canonical; Folder is a denormalized display cache of the
// parent folder's name, kept in sync on rename and move. When a note is
// trashed by a folder delete the cache is intentionally left in place so
// the original location can be shown when restoring from trash.
type Note struct {
	ID        int64     `json:"id"`
	Heading   string    `json:"heading"`
	Workspace string    `json:"workspace"`
	FolderID  *int64    `json:"folder_id"`
	Folder    *string   `json:"folder"`
	Favorite  bool      `json:"favorite"`
	Trash     bool      `json:"trash"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}

// Workspace is a top-level namespace partitioning folders and notes.
type Workspace struct {
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}
