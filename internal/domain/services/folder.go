package services

import (
	"context"

	"poznote/internal/domain/models"
)

// CreateFolderRequest supports two calling modes:
//   - Path mode: Path is a slash-delimited path ("A/B/C"); missing
//     intermediate segments are created when CreateParents is set.
//   - Name mode: Name plus at most one of ParentID / ParentPath /
//     ParentKey ("folder_123") resolving the parent.
type CreateFolderRequest struct {
	Workspace     string `json:"workspace"`
	Name          string `json:"folder_name"`
	Path          string `json:"folder_path"`
	CreateParents bool   `json:"create_parents"`
	ParentID      *int64 `json:"parent_folder_id"`
	ParentPath    string `json:"parent_folder"`
	ParentKey     string `json:"parent_folder_key"`
}

// CreateFolderResult reports the created folder and any intermediate
// parents created along the way in path mode.
type CreateFolderResult struct {
	Folder         *models.Folder  `json:"folder"`
	CreatedParents []models.Folder `json:"created_parents,omitempty"`
}

// MoveFolderRequest describes a re-parenting. Both parent fields empty
// means "move to root". Workspace, when set, must match the folder's.
type MoveFolderRequest struct {
	Workspace     string `json:"workspace"`
	NewParentID   *int64 `json:"new_parent_folder_id"`
	NewParentPath string `json:"new_parent_folder"`
}

// FolderListing is the flat or hierarchical folder index of a workspace.
type FolderListing struct {
	Workspace    string                   `json:"workspace"`
	Hierarchical bool                     `json:"hierarchical"`
	Flat         []models.Folder          `json:"-"`
	Tree         []*models.FolderTreeNode `json:"-"`
}

// FolderCounts carries the recursive badge counts of one folder.
type FolderCounts struct {
	Notes      int `json:"count"`
	Subfolders int `json:"subfolder_count"`
}

// WorkspaceCounts maps folder id (as decimal string) to its recursive
// note count, plus the pseudo-keys "uncategorized" and "Favorites".
type WorkspaceCounts map[string]int

// MoveFilesRequest moves all direct notes of one folder to another.
// TargetFolderID 0 means "no folder" (root).
type MoveFilesRequest struct {
	Workspace      string `json:"workspace"`
	SourceFolderID int64  `json:"source_folder_id"`
	TargetFolderID int64  `json:"target_folder_id"`
}

// MoveFilesResult reports how many notes moved and the net change in the
// shared-note count caused by leaving/entering shared folders.
type MoveFilesResult struct {
	MovedCount int `json:"moved_count"`
	ShareDelta int `json:"share_delta"`
}

// MoveNoteRequest moves a single note into a folder, by id or by name.
// A named target that does not exist is created. FolderID 0 or absent
// together with an empty FolderName moves the note to root.
type MoveNoteRequest struct {
	Workspace  string `json:"workspace"`
	FolderID   *int64 `json:"folder_id"`
	FolderName string `json:"folder"`
}

// MoveNoteResult reports the move plus the share delta for UI badges.
type MoveNoteResult struct {
	OldFolderID *int64  `json:"old_folder_id"`
	OldFolder   *string `json:"old_folder"`
	NewFolderID *int64  `json:"new_folder_id"`
	NewFolder   *string `json:"new_folder"`
	ShareDelta  int     `json:"share_delta"`
}

// FolderService is the folder hierarchy manager. It owns the folder forest
// invariants: acyclicity, sibling-name uniqueness per workspace, reserved
// names, and the delete/empty cascades onto notes and shares.
type FolderService interface {
	ListFolders(ctx context.Context, workspace string, hierarchical bool) (*FolderListing, error)
	GetFolder(ctx context.Context, id int64) (*models.Folder, error)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*CreateFolderResult, error)
	RenameFolder(ctx context.Context, id int64, newName string) (*models.Folder, error)
	MoveFolder(ctx context.Context, id int64, req *MoveFolderRequest) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id int64) error
	EmptyFolder(ctx context.Context, id int64, workspace string) (int64, error)
	UpdateIcon(ctx context.Context, id int64, icon, iconColor *string) error
	FolderPath(ctx context.Context, id int64) (string, error)
	CountFolder(ctx context.Context, id int64) (*FolderCounts, error)
	AllCounts(ctx context.Context, workspace string) (WorkspaceCounts, error)
	MoveFolderFiles(ctx context.Context, userID int64, req *MoveFilesRequest) (*MoveFilesResult, error)
	MoveNoteToFolder(ctx context.Context, userID, noteID int64, req *MoveNoteRequest) (*MoveNoteResult, error)
	RemoveNoteFromFolder(ctx context.Context, userID, noteID int64, workspace string) (*MoveNoteResult, error)
}
