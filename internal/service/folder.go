package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"poznote/internal/config"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
	"poznote/internal/domain/services"
)

type folderService struct {
	folderRepo    repositories.FolderRepository
	noteRepo      repositories.NoteRepository
	workspaceRepo repositories.WorkspaceRepository
	shareService  services.ShareService
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	noteRepo repositories.NoteRepository,
	workspaceRepo repositories.WorkspaceRepository,
	shareService services.ShareService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:    folderRepo,
		noteRepo:      noteRepo,
		workspaceRepo: workspaceRepo,
		shareService:  shareService,
		txManager:     txManager,
		logger:        logger,
	}
}

// resolveWorkspace maps an optional workspace name to a concrete one,
// falling back to the default workspace when the request names none.
func (s *folderService) resolveWorkspace(ctx context.Context, name string) (string, error) {
	if name == "" {
		return s.workspaceRepo.FirstName(ctx)
	}

	exists, err := s.workspaceRepo.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("workspace '%s': %w", name, domain.ErrNotFound)
	}

	return name, nil
}

// folderIndex is an in-memory view of one workspace's folder forest, built
// from a single ListByWorkspace query so tree walks never hit the database
// per level.
type folderIndex struct {
	byID     map[int64]*models.Folder
	children map[int64][]*models.Folder // keyed by parent id; 0 = root
}

func (s *folderService) loadIndex(ctx context.Context, workspace string) (*folderIndex, error) {
	folders, err := s.folderRepo.ListByWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}

	idx := &folderIndex{
		byID:     make(map[int64]*models.Folder, len(folders)),
		children: make(map[int64][]*models.Folder),
	}

	for i := range folders {
		f := &folders[i]
		idx.byID[f.ID] = f
		parent := int64(0)
		if f.ParentID != nil {
			parent = *f.ParentID
		}
		idx.children[parent] = append(idx.children[parent], f)
	}

	return idx, nil
}

// path builds the slash-delimited display path of a folder by walking
// parent pointers. The walk is capped: deeper chains indicate corrupt
// parent pointers and degrade to the bare name.
func (idx *folderIndex) path(id int64) string {
	var segments []string
	current := idx.byID[id]
	for i := 0; current != nil && i < config.MaxParentTraversalDepth; i++ {
		segments = append(segments, current.Name)
		if current.ParentID == nil {
			break
		}
		current = idx.byID[*current.ParentID]
	}

	// Reverse into root-first order
	for l, r := 0, len(segments)-1; l < r; l, r = l+1, r-1 {
		segments[l], segments[r] = segments[r], segments[l]
	}

	return strings.Join(segments, "/")
}

// subtree returns the ids of a folder and all its descendants.
func (idx *folderIndex) subtree(rootID int64) []int64 {
	ids := []int64{rootID}
	for i := 0; i < len(ids); i++ {
		for _, child := range idx.children[ids[i]] {
			ids = append(ids, child.ID)
		}
	}
	return ids
}

// isDescendant reports whether candidate sits in the subtree rooted at
// rootID (the root itself included).
func (idx *folderIndex) isDescendant(candidate, rootID int64) bool {
	current := idx.byID[candidate]
	for i := 0; current != nil && i < config.MaxParentTraversalDepth; i++ {
		if current.ID == rootID {
			return true
		}
		if current.ParentID == nil {
			return false
		}
		current = idx.byID[*current.ParentID]
	}
	return false
}

// ListFolders returns the folder index of a workspace, flat or as a tree
func (s *folderService) ListFolders(ctx context.Context, workspace string, hierarchical bool) (*services.FolderListing, error) {
	ws, err := s.resolveWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}

	idx, err := s.loadIndex(ctx, ws)
	if err != nil {
		return nil, err
	}

	listing := &services.FolderListing{Workspace: ws, Hierarchical: hierarchical}

	if hierarchical {
		listing.Tree = idx.buildTree(0, "")
		return listing, nil
	}

	flat := make([]models.Folder, 0, len(idx.byID))
	for _, f := range idx.byID {
		folder := *f
		folder.Path = idx.path(f.ID)
		flat = append(flat, folder)
	}
	sort.Slice(flat, func(i, j int) bool {
		return strings.ToLower(flat[i].Path) < strings.ToLower(flat[j].Path)
	})
	listing.Flat = flat

	return listing, nil
}

// buildTree assembles the children of one parent, sorted
// case-insensitively by name, recursing down the forest.
func (idx *folderIndex) buildTree(parentID int64, parentPath string) []*models.FolderTreeNode {
	children := idx.children[parentID]
	nodes := make([]*models.FolderTreeNode, 0, len(children))

	for _, f := range children {
		path := f.Name
		if parentPath != "" {
			path = parentPath + "/" + f.Name
		}
		nodes = append(nodes, &models.FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			Icon:      f.Icon,
			IconColor: f.IconColor,
			Path:      path,
			Children:  idx.buildTree(f.ID, path),
		})
	}

	sort.Slice(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})

	return nodes
}

// GetFolder retrieves a folder with its computed path
func (s *folderService) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	idx, err := s.loadIndex(ctx, folder.Workspace)
	if err != nil {
		return nil, err
	}
	folder.Path = idx.path(folder.ID)

	return folder, nil
}

// parseFolderKey extracts the numeric id from a "folder_123" DOM key.
func parseFolderKey(key string) (int64, error) {
	raw, ok := strings.CutPrefix(key, "folder_")
	if !ok {
		return 0, fmt.Errorf("%w: invalid folder key '%s'", domain.ErrValidation, key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid folder key '%s'", domain.ErrValidation, key)
	}
	return id, nil
}

// CreateFolder creates a folder in path mode or name mode
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*services.CreateFolderResult, error) {
	ws, err := s.resolveWorkspace(ctx, req.Workspace)
	if err != nil {
		return nil, err
	}

	if req.Path != "" {
		return s.createByPath(ctx, ws, req)
	}
	return s.createByName(ctx, ws, req)
}

// createByPath walks the path segments from the root, reusing existing
// folders and creating missing intermediates when the request allows it.
func (s *folderService) createByPath(ctx context.Context, workspace string, req *services.CreateFolderRequest) (*services.CreateFolderResult, error) {
	segments, err := SplitFolderPath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	result := &services.CreateFolderResult{}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var parentID *int64
		for i, name := range segments {
			last := i == len(segments)-1

			existing, err := s.folderRepo.GetByNameAndParent(txCtx, workspace, name, parentID)
			if err != nil {
				return err
			}

			if existing != nil {
				if last {
					return &domain.ConflictError{
						Message:      fmt.Sprintf("folder '%s' already exists", req.Path),
						ResourceType: "folder",
						ResourceID:   existing.ID,
					}
				}
				parentID = &existing.ID
				continue
			}

			if !last && !req.CreateParents {
				return fmt.Errorf("parent folder '%s': %w", name, domain.ErrNotFound)
			}

			folder := &models.Folder{
				Name:      name,
				Workspace: workspace,
				ParentID:  parentID,
			}
			if err := s.folderRepo.Create(txCtx, folder); err != nil {
				return err
			}

			if last {
				result.Folder = folder
			} else {
				result.CreatedParents = append(result.CreatedParents, *folder)
			}
			parentID = &folder.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Folder.Path = strings.Join(segments, "/")

	s.logger.Info("folder created",
		"id", result.Folder.ID,
		"path", result.Folder.Path,
		"workspace", workspace,
		"created_parents", len(result.CreatedParents),
	)

	return result, nil
}

// createByName creates a single folder under a parent resolved from one of
// the three parent reference forms.
func (s *folderService) createByName(ctx context.Context, workspace string, req *services.CreateFolderRequest) (*services.CreateFolderResult, error) {
	if err := ValidateFolderName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parentID, err := s.resolveParentRef(ctx, workspace, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.folderRepo.GetByNameAndParent(ctx, workspace, req.Name, parentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("folder '%s' already exists here", req.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}

	folder := &models.Folder{
		Name:      req.Name,
		Workspace: workspace,
		ParentID:  parentID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	idx, err := s.loadIndex(ctx, workspace)
	if err != nil {
		return nil, err
	}
	folder.Path = idx.path(folder.ID)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"workspace", workspace,
		"parent_id", parentID,
	)

	return &services.CreateFolderResult{Folder: folder}, nil
}

// resolveParentRef resolves at most one of ParentID / ParentPath /
// ParentKey into a concrete parent folder id (nil = root).
func (s *folderService) resolveParentRef(ctx context.Context, workspace string, req *services.CreateFolderRequest) (*int64, error) {
	refs := 0
	if req.ParentID != nil {
		refs++
	}
	if req.ParentPath != "" {
		refs++
	}
	if req.ParentKey != "" {
		refs++
	}
	if refs > 1 {
		return nil, fmt.Errorf("%w: at most one parent reference may be given", domain.ErrValidation)
	}

	switch {
	case req.ParentID != nil:
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Workspace != workspace {
			return nil, fmt.Errorf("%w: parent folder belongs to another workspace", domain.ErrValidation)
		}
		return &parent.ID, nil

	case req.ParentKey != "":
		id, err := parseFolderKey(req.ParentKey)
		if err != nil {
			return nil, err
		}
		parent, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if parent.Workspace != workspace {
			return nil, fmt.Errorf("%w: parent folder belongs to another workspace", domain.ErrValidation)
		}
		return &parent.ID, nil

	case req.ParentPath != "":
		segments, err := SplitFolderPath(req.ParentPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		var parentID *int64
		for _, name := range segments {
			folder, err := s.folderRepo.GetByNameAndParent(ctx, workspace, name, parentID)
			if err != nil {
				return nil, err
			}
			if folder == nil {
				return nil, fmt.Errorf("parent folder '%s': %w", req.ParentPath, domain.ErrNotFound)
			}
			parentID = &folder.ID
		}
		return parentID, nil
	}

	return nil, nil
}

// RenameFolder renames a folder and cascades the new name onto the
// denormalized folder column of its notes.
func (s *folderService) RenameFolder(ctx context.Context, id int64, newName string) (*models.Folder, error) {
	if err := ValidateFolderName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if folder.Name == newName {
		return s.GetFolder(ctx, id)
	}

	taken, err := s.folderRepo.SiblingNameExists(ctx, folder.Workspace, newName, folder.ParentID, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named '%s' already exists here", newName),
			ResourceType: "folder",
		}
	}

	oldName := folder.Name
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.UpdateName(txCtx, id, newName); err != nil {
			return err
		}
		return s.noteRepo.RenameFolderRef(txCtx, folder.Workspace, oldName, newName)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed",
		"id", id,
		"old_name", oldName,
		"new_name", newName,
		"workspace", folder.Workspace,
	)

	return s.GetFolder(ctx, id)
}

// MoveFolder re-parents a folder, refusing moves that would create a cycle
func (s *folderService) MoveFolder(ctx context.Context, id int64, req *services.MoveFolderRequest) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Workspace != "" && req.Workspace != folder.Workspace {
		return nil, fmt.Errorf("folder %d in workspace '%s': %w", id, req.Workspace, domain.ErrNotFound)
	}

	idx, err := s.loadIndex(ctx, folder.Workspace)
	if err != nil {
		return nil, err
	}

	var newParentID *int64
	switch {
	case req.NewParentID != nil:
		parent, ok := idx.byID[*req.NewParentID]
		if !ok {
			return nil, fmt.Errorf("parent folder %d: %w", *req.NewParentID, domain.ErrNotFound)
		}
		newParentID = &parent.ID

	case req.NewParentPath != "":
		segments, err := SplitFolderPath(req.NewParentPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		var pid *int64
		for _, name := range segments {
			f, err := s.folderRepo.GetByNameAndParent(ctx, folder.Workspace, name, pid)
			if err != nil {
				return nil, err
			}
			if f == nil {
				return nil, fmt.Errorf("parent folder '%s': %w", req.NewParentPath, domain.ErrNotFound)
			}
			pid = &f.ID
		}
		newParentID = pid
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
		}
		// A descendant parent is a state conflict with the existing
		// hierarchy, not a malformed request
		if idx.isDescendant(*newParentID, id) {
			return nil, &domain.ConflictError{
				Message:      "invalid move: would create a cycle",
				ResourceType: "folder",
				ResourceID:   id,
			}
		}
	}

	taken, err := s.folderRepo.SiblingNameExists(ctx, folder.Workspace, folder.Name, newParentID, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named '%s' already exists at the destination", folder.Name),
			ResourceType: "folder",
		}
	}

	if err := s.folderRepo.UpdateParent(ctx, id, newParentID); err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", id,
		"name", folder.Name,
		"new_parent_id", newParentID,
		"workspace", folder.Workspace,
	)

	return s.GetFolder(ctx, id)
}

// DeleteFolder deletes a folder and its whole subtree in one transaction:
// notes of the subtree move to trash, active shares of the subtree are
// revoked (with un-propagation), then the folder rows go away.
func (s *folderService) DeleteFolder(ctx context.Context, id int64) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	idx, err := s.loadIndex(ctx, folder.Workspace)
	if err != nil {
		return err
	}
	subtree := idx.subtree(id)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Shares go first: un-propagation needs the subtree's notes
		// still visible, and the ON DELETE CASCADE on shared_folders
		// would drop the tokens we still need to unregister.
		if err := s.shareService.RevokeFolderShares(txCtx, subtree); err != nil {
			return err
		}

		trashed, err := s.noteRepo.TrashByFolderIDs(txCtx, folder.Workspace, subtree)
		if err != nil {
			return err
		}

		if err := s.folderRepo.DeleteByIDs(txCtx, folder.Workspace, subtree); err != nil {
			return err
		}

		s.logger.Info("folder deleted",
			"id", id,
			"name", folder.Name,
			"workspace", folder.Workspace,
			"subtree_size", len(subtree),
			"notes_trashed", trashed,
		)
		return nil
	})

	return err
}

// EmptyFolder moves the direct notes of a folder to trash. Subfolders and
// their notes are untouched.
func (s *folderService) EmptyFolder(ctx context.Context, id int64, workspace string) (int64, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	if workspace != "" && workspace != folder.Workspace {
		return 0, fmt.Errorf("folder %d in workspace '%s': %w", id, workspace, domain.ErrNotFound)
	}

	trashed, err := s.noteRepo.TrashDirect(ctx, folder.Workspace, id)
	if err != nil {
		return 0, err
	}

	s.logger.Info("folder emptied",
		"id", id,
		"name", folder.Name,
		"notes_trashed", trashed,
	)

	return trashed, nil
}

// UpdateIcon sets the folder's display hints
func (s *folderService) UpdateIcon(ctx context.Context, id int64, icon, iconColor *string) error {
	if _, err := s.folderRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.folderRepo.UpdateIcon(ctx, id, icon, iconColor)
}

// FolderPath returns the slash-delimited path of a folder
func (s *folderService) FolderPath(ctx context.Context, id int64) (string, error) {
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		return "", err
	}
	return folder.Path, nil
}

// CountFolder returns the recursive note and subfolder counts of a folder
func (s *folderService) CountFolder(ctx context.Context, id int64) (*services.FolderCounts, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	idx, err := s.loadIndex(ctx, folder.Workspace)
	if err != nil {
		return nil, err
	}

	counts, err := s.noteRepo.NoteCountsByFolder(ctx, folder.Workspace)
	if err != nil {
		return nil, err
	}

	subtree := idx.subtree(id)
	total := 0
	for _, fid := range subtree {
		total += counts[fid]
	}

	return &services.FolderCounts{
		Notes:      total,
		Subfolders: len(subtree) - 1,
	}, nil
}

// AllCounts returns the recursive note count of every folder in a
// workspace, plus the pseudo-entries for unfiled and favorite notes.
func (s *folderService) AllCounts(ctx context.Context, workspace string) (services.WorkspaceCounts, error) {
	ws, err := s.resolveWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}

	idx, err := s.loadIndex(ctx, ws)
	if err != nil {
		return nil, err
	}

	direct, err := s.noteRepo.NoteCountsByFolder(ctx, ws)
	if err != nil {
		return nil, err
	}

	result := make(services.WorkspaceCounts, len(idx.byID)+2)
	for id := range idx.byID {
		total := 0
		for _, fid := range idx.subtree(id) {
			total += direct[fid]
		}
		result[strconv.FormatInt(id, 10)] = total
	}

	unfiled, err := s.noteRepo.CountUnfiled(ctx, ws)
	if err != nil {
		return nil, err
	}
	result["uncategorized"] = unfiled

	favorites, err := s.noteRepo.CountFavorites(ctx, ws)
	if err != nil {
		return nil, err
	}
	result["Favorites"] = favorites

	return result, nil
}

// MoveFolderFiles moves every direct note of one folder into another,
// keeping note shares consistent with the folders they pass between.
func (s *folderService) MoveFolderFiles(ctx context.Context, userID int64, req *services.MoveFilesRequest) (*services.MoveFilesResult, error) {
	if req.SourceFolderID == req.TargetFolderID {
		return nil, fmt.Errorf("%w: source and target folder are the same", domain.ErrValidation)
	}

	source, err := s.folderRepo.GetByID(ctx, req.SourceFolderID)
	if err != nil {
		return nil, err
	}

	if req.Workspace != "" && req.Workspace != source.Workspace {
		return nil, fmt.Errorf("folder %d in workspace '%s': %w", req.SourceFolderID, req.Workspace, domain.ErrNotFound)
	}

	var target *models.Folder
	var targetID *int64
	var targetName *string
	if req.TargetFolderID != 0 {
		target, err = s.folderRepo.GetByID(ctx, req.TargetFolderID)
		if err != nil {
			return nil, err
		}
		if target.Workspace != source.Workspace {
			return nil, fmt.Errorf("%w: folders belong to different workspaces", domain.ErrValidation)
		}
		targetID = &target.ID
		targetName = &target.Name
	}

	result := &services.MoveFilesResult{}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// folder_id-only selection: a foreign workspace's note with a
		// stale matching folder name must not be swept along.
		notes, err := s.noteRepo.ListDirect(txCtx, source.Workspace, source.ID)
		if err != nil {
			return err
		}

		for _, note := range notes {
			taken, err := s.noteRepo.HeadingExists(txCtx, note.Workspace, note.Heading, targetID, note.ID)
			if err != nil {
				return err
			}
			if taken {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("a note titled '%s' already exists in the target folder", note.Heading),
					ResourceType: "note",
					ResourceID:   note.ID,
				}
			}

			if err := s.noteRepo.SetFolder(txCtx, note.ID, targetID, targetName); err != nil {
				return err
			}

			delta, err := s.shareService.SyncNoteShareOnMove(txCtx, userID, note.ID, &source.ID, targetID)
			if err != nil {
				return err
			}
			result.ShareDelta += delta
			result.MovedCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder notes moved",
		"source_folder_id", source.ID,
		"target_folder_id", req.TargetFolderID,
		"moved", result.MovedCount,
		"share_delta", result.ShareDelta,
	)

	return result, nil
}

// MoveNoteToFolder moves a single note into a folder referenced by id or
// by name. A named folder that does not exist yet is created at the root.
func (s *folderService) MoveNoteToFolder(ctx context.Context, userID, noteID int64, req *services.MoveNoteRequest) (*services.MoveNoteResult, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if req.Workspace != "" && req.Workspace != note.Workspace {
		return nil, fmt.Errorf("note %d in workspace '%s': %w", noteID, req.Workspace, domain.ErrNotFound)
	}

	result := &services.MoveNoteResult{
		OldFolderID: note.FolderID,
		OldFolder:   note.Folder,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var targetID *int64
		var targetName *string

		switch {
		case req.FolderID != nil && *req.FolderID > 0:
			target, err := s.folderRepo.GetByID(txCtx, *req.FolderID)
			if err != nil {
				return err
			}
			if target.Workspace != note.Workspace {
				return fmt.Errorf("%w: folder belongs to another workspace", domain.ErrValidation)
			}
			targetID = &target.ID
			targetName = &target.Name

		case req.FolderName != "":
			target, err := s.folderRepo.GetByNameAndParent(txCtx, note.Workspace, req.FolderName, nil)
			if err != nil {
				return err
			}
			if target == nil {
				if err := ValidateFolderName(req.FolderName); err != nil {
					return fmt.Errorf("%w: %v", domain.ErrValidation, err)
				}
				target = &models.Folder{
					Name:      req.FolderName,
					Workspace: note.Workspace,
				}
				if err := s.folderRepo.Create(txCtx, target); err != nil {
					return err
				}
			}
			targetID = &target.ID
			targetName = &target.Name
		}

		taken, err := s.noteRepo.HeadingExists(txCtx, note.Workspace, note.Heading, targetID, note.ID)
		if err != nil {
			return err
		}
		if taken {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a note titled '%s' already exists in the target folder", note.Heading),
				ResourceType: "note",
				ResourceID:   note.ID,
			}
		}

		if err := s.noteRepo.SetFolder(txCtx, noteID, targetID, targetName); err != nil {
			return err
		}

		delta, err := s.shareService.SyncNoteShareOnMove(txCtx, userID, noteID, note.FolderID, targetID)
		if err != nil {
			return err
		}

		result.NewFolderID = targetID
		result.NewFolder = targetName
		result.ShareDelta = delta
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("note moved",
		"note_id", noteID,
		"old_folder_id", result.OldFolderID,
		"new_folder_id", result.NewFolderID,
		"share_delta", result.ShareDelta,
	)

	return result, nil
}

// RemoveNoteFromFolder moves a note back to the workspace root
func (s *folderService) RemoveNoteFromFolder(ctx context.Context, userID, noteID int64, workspace string) (*services.MoveNoteResult, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if workspace != "" && workspace != note.Workspace {
		return nil, fmt.Errorf("note %d in workspace '%s': %w", noteID, workspace, domain.ErrNotFound)
	}

	result := &services.MoveNoteResult{
		OldFolderID: note.FolderID,
		OldFolder:   note.Folder,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.noteRepo.SetFolder(txCtx, noteID, nil, nil); err != nil {
			return err
		}

		delta, err := s.shareService.SyncNoteShareOnMove(txCtx, userID, noteID, note.FolderID, nil)
		if err != nil {
			return err
		}
		result.ShareDelta = delta
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
