package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/services"
)

func TestCreateFolder_NameMode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: "Work"})
	require.NoError(t, err)
	require.NotNil(t, result.Folder)
	assert.Equal(t, "Work", result.Folder.Name)
	assert.Equal(t, "Poznote", result.Folder.Workspace)
	assert.Nil(t, result.Folder.ParentID)
	assert.Equal(t, "Work", result.Folder.Path)
}

func TestCreateFolder_NameModeUnderParentKey(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	parent := env.mustFolder("Work", nil)

	result, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		Name:      "Projects",
		ParentKey: "folder_1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Folder.ParentID)
	assert.Equal(t, parent.ID, *result.Folder.ParentID)
	assert.Equal(t, "Work/Projects", result.Folder.Path)
}

func TestCreateFolder_PathModeCreatesParents(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		Path:          "Work/Projects/2024",
		CreateParents: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024", result.Folder.Name)
	assert.Equal(t, "Work/Projects/2024", result.Folder.Path)
	require.Len(t, result.CreatedParents, 2)
	assert.Equal(t, "Work", result.CreatedParents[0].Name)
	assert.Equal(t, "Projects", result.CreatedParents[1].Name)
}

func TestCreateFolder_PathModeMissingParentWithoutFlag(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		Path: "Work/Projects",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateFolder_ReservedNameRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, name := range models.ReservedFolderNames {
		_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: name})
		assert.ErrorIs(t, err, domain.ErrValidation, "reserved name %q must be rejected", name)
	}
}

func TestCreateFolder_DuplicateSiblingConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.mustFolder("Work", nil)

	_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: "Work"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "folder", conflict.ResourceType)
}

func TestCreateFolder_SameNameDifferentParentsAllowed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.mustFolder("A", nil)
	b := env.mustFolder("B", nil)

	_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: "Docs", ParentID: &a.ID})
	require.NoError(t, err)
	_, err = env.folders.CreateFolder(ctx, &services.CreateFolderRequest{Name: "Docs", ParentID: &b.ID})
	require.NoError(t, err)
}

func TestRenameFolder_CascadesToNotes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	folder := env.mustFolder("Old", nil)
	note := env.mustNote("a note", folder)

	renamed, err := env.folders.RenameFolder(ctx, folder.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Name)
	assert.Equal(t, folder.ID, renamed.ID, "rename must not change the id")

	got, err := env.noteRepo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Folder)
	assert.Equal(t, "New", *got.Folder, "denormalized folder name must follow the rename")
}

func TestRenameFolder_SiblingConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.mustFolder("A", nil)
	b := env.mustFolder("B", nil)

	_, err := env.folders.RenameFolder(ctx, b.ID, "A")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMoveFolder_RejectsCycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.mustFolder("A", nil)
	b := env.mustFolder("B", &a.ID)
	c := env.mustFolder("C", &b.ID)

	// Moving A under its grandchild C conflicts with the existing
	// hierarchy, so it maps to 409 rather than 400
	_, err := env.folders.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{NewParentID: &c.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "folder", conflict.ResourceType)

	// Moving a folder into itself is a malformed request, not a conflict
	_, err = env.folders.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{NewParentID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestMoveFolder_WorkspaceMismatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.mustFolder("A", nil)
	b := env.mustFolder("B", nil)

	_, err := env.folders.MoveFolder(ctx, a.ID, &services.MoveFolderRequest{
		Workspace:   "Other",
		NewParentID: &b.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveFolder_ToRootAndBack(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.mustFolder("A", nil)
	b := env.mustFolder("B", &a.ID)

	moved, err := env.folders.MoveFolder(ctx, b.ID, &services.MoveFolderRequest{})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "B", moved.Path)

	moved, err = env.folders.MoveFolder(ctx, b.ID, &services.MoveFolderRequest{NewParentPath: "A"})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)
	assert.Equal(t, "A/B", moved.Path)
}

func TestDeleteFolder_CascadesSubtree(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	root := env.mustFolder("Root", nil)
	child := env.mustFolder("Child", &root.ID)
	grandchild := env.mustFolder("Grandchild", &child.ID)
	outside := env.mustFolder("Outside", nil)

	inRoot := env.mustNote("in root", root)
	inGrand := env.mustNote("in grandchild", grandchild)
	inOutside := env.mustNote("elsewhere", outside)

	require.NoError(t, env.folders.DeleteFolder(ctx, root.ID))

	for _, id := range []int64{root.ID, child.ID, grandchild.ID} {
		_, err := env.folderRepo.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "folder %d must be gone", id)
	}
	_, err := env.folderRepo.GetByID(ctx, outside.ID)
	assert.NoError(t, err)

	for _, id := range []int64{inRoot.ID, inGrand.ID} {
		n, err := env.noteRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, n.Trash, "note %d must be trashed", id)
	}
	n, err := env.noteRepo.GetByID(ctx, inOutside.ID)
	require.NoError(t, err)
	assert.False(t, n.Trash)
}

func TestDeleteFolder_RevokesSharesInSubtree(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	root := env.mustFolder("Root", nil)
	child := env.mustFolder("Child", &root.ID)
	note := env.mustNote("shared note", child)

	_, err := env.shares.ShareFolder(ctx, 1, child.ID, &services.ShareRequest{})
	require.NoError(t, err)

	// Propagation shared the note too
	rec, err := env.shareRepo.GetByTarget(ctx, models.ShareTargetNote, note.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.NoError(t, env.folders.DeleteFolder(ctx, root.ID))

	folderRec, err := env.shareRepo.GetByTarget(ctx, models.ShareTargetFolder, child.ID)
	require.NoError(t, err)
	assert.Nil(t, folderRec, "folder share must be revoked")

	noteRec, err := env.shareRepo.GetByTarget(ctx, models.ShareTargetNote, note.ID)
	require.NoError(t, err)
	assert.Nil(t, noteRec, "propagated note share must be revoked")

	assert.Empty(t, env.registryRepo.links, "no registry rows may survive the cascade")
}

func TestEmptyFolder_DirectNotesOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	root := env.mustFolder("Root", nil)
	child := env.mustFolder("Child", &root.ID)
	direct := env.mustNote("direct", root)
	nested := env.mustNote("nested", child)

	trashed, err := env.folders.EmptyFolder(ctx, root.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), trashed)

	n, _ := env.noteRepo.GetByID(ctx, direct.ID)
	assert.True(t, n.Trash)
	n, _ = env.noteRepo.GetByID(ctx, nested.ID)
	assert.False(t, n.Trash, "subfolder notes stay put")

	_, err = env.folderRepo.GetByID(ctx, child.ID)
	assert.NoError(t, err, "subfolders survive emptying")
}

func TestCountFolder_Recursive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	root := env.mustFolder("Root", nil)
	child := env.mustFolder("Child", &root.ID)
	grandchild := env.mustFolder("Grandchild", &child.ID)

	env.mustNote("one", root)
	env.mustNote("two", child)
	env.mustNote("three", grandchild)
	trashed := env.mustNote("four", grandchild)
	env.noteRepo.notes[trashed.ID].Trash = true

	counts, err := env.folders.CountFolder(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Notes, "trashed notes don't count")
	assert.Equal(t, 2, counts.Subfolders)
}

func TestAllCounts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	root := env.mustFolder("Root", nil)
	child := env.mustFolder("Child", &root.ID)

	env.mustNote("in root", root)
	env.mustNote("in child", child)
	unfiled := env.mustNote("unfiled", nil)
	env.noteRepo.notes[unfiled.ID].Favorite = true

	counts, err := env.folders.AllCounts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, counts["1"], "root count is recursive")
	assert.Equal(t, 1, counts["2"])
	assert.Equal(t, 1, counts["uncategorized"])
	assert.Equal(t, 1, counts["Favorites"])
}

func TestListFolders_Hierarchical(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	root := env.mustFolder("beta", nil)
	env.mustFolder("Alpha", nil)
	env.mustFolder("nested", &root.ID)

	listing, err := env.folders.ListFolders(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, listing.Tree, 2)
	assert.Equal(t, "Alpha", listing.Tree[0].Name, "sorted case-insensitively")
	assert.Equal(t, "beta", listing.Tree[1].Name)
	require.Len(t, listing.Tree[1].Children, 1)
	assert.Equal(t, "beta/nested", listing.Tree[1].Children[0].Path)
}

func TestMoveNoteToFolder_CreatesNamedFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	note := env.mustNote("loose note", nil)

	result, err := env.folders.MoveNoteToFolder(ctx, 1, note.ID, &services.MoveNoteRequest{FolderName: "Inbox"})
	require.NoError(t, err)
	require.NotNil(t, result.NewFolderID)
	require.NotNil(t, result.NewFolder)
	assert.Equal(t, "Inbox", *result.NewFolder)

	created, err := env.folderRepo.GetByNameAndParent(ctx, "Poznote", "Inbox", nil)
	require.NoError(t, err)
	require.NotNil(t, created, "target folder is created on demand")
}

func TestMoveNoteToFolder_HeadingConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	target := env.mustFolder("Target", nil)
	env.mustNote("duplicate", target)
	note := env.mustNote("duplicate", nil)

	_, err := env.folders.MoveNoteToFolder(ctx, 1, note.ID, &services.MoveNoteRequest{FolderID: &target.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMoveNoteToFolder_WorkspaceMismatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	target := env.mustFolder("Target", nil)
	note := env.mustNote("a note", nil)

	_, err := env.folders.MoveNoteToFolder(ctx, 1, note.ID, &services.MoveNoteRequest{
		Workspace: "Other",
		FolderID:  &target.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveNoteToFolder_ShareDelta(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	shared := env.mustFolder("Shared", nil)
	plain := env.mustFolder("Plain", nil)
	note := env.mustNote("travelling note", plain)

	_, err := env.shares.ShareFolder(ctx, 1, shared.ID, &services.ShareRequest{})
	require.NoError(t, err)

	// Into the shared folder: note gains a propagated share
	result, err := env.folders.MoveNoteToFolder(ctx, 1, note.ID, &services.MoveNoteRequest{FolderID: &shared.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ShareDelta)

	// Back out: the propagated share is dropped again
	result, err = env.folders.MoveNoteToFolder(ctx, 1, note.ID, &services.MoveNoteRequest{FolderID: &plain.ID})
	require.NoError(t, err)
	assert.Equal(t, -1, result.ShareDelta)

	rec, err := env.shareRepo.GetByTarget(ctx, models.ShareTargetNote, note.ID)
	require.NoError(t, err)
	assert.Nil(t, rec, "round trip leaves no share behind")
}

func TestMoveFolderFiles(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	source := env.mustFolder("Source", nil)
	target := env.mustFolder("Target", nil)
	n1 := env.mustNote("first", source)
	n2 := env.mustNote("second", source)

	result, err := env.folders.MoveFolderFiles(ctx, 1, &services.MoveFilesRequest{
		SourceFolderID: source.ID,
		TargetFolderID: target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.MovedCount)
	assert.Equal(t, 0, result.ShareDelta)

	for _, id := range []int64{n1.ID, n2.ID} {
		n, err := env.noteRepo.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, n.FolderID)
		assert.Equal(t, target.ID, *n.FolderID)
	}
}

func TestMoveFolderFiles_SameSourceAndTarget(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	source := env.mustFolder("Source", nil)

	_, err := env.folders.MoveFolderFiles(ctx, 1, &services.MoveFilesRequest{
		SourceFolderID: source.ID,
		TargetFolderID: source.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMoveFolderFiles_WorkspaceMismatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	source := env.mustFolder("Source", nil)
	target := env.mustFolder("Target", nil)

	_, err := env.folders.MoveFolderFiles(ctx, 1, &services.MoveFilesRequest{
		Workspace:      "Other",
		SourceFolderID: source.ID,
		TargetFolderID: target.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveFolderFiles_IgnoresForeignWorkspaceNameMatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	source := env.mustFolder("Docs", nil)
	target := env.mustFolder("Target", nil)
	mine := env.mustNote("mine", source)

	// A note from another workspace whose cached folder name happens to
	// collide with the source folder's name must stay where it is
	docs := "Docs"
	foreign := env.noteRepo.add(models.Note{
		Heading:   "foreign",
		Workspace: "Other",
		Folder:    &docs,
	})

	result, err := env.folders.MoveFolderFiles(ctx, 1, &services.MoveFilesRequest{
		SourceFolderID: source.ID,
		TargetFolderID: target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.MovedCount)

	moved, err := env.noteRepo.GetByID(ctx, mine.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, target.ID, *moved.FolderID)

	kept, err := env.noteRepo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.FolderID)
	require.NotNil(t, kept.Folder)
	assert.Equal(t, "Docs", *kept.Folder)
	assert.Equal(t, "Other", kept.Workspace)
}

func TestRemoveNoteFromFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	folder := env.mustFolder("Work", nil)
	note := env.mustNote("filed note", folder)

	result, err := env.folders.RemoveNoteFromFolder(ctx, 1, note.ID, "")
	require.NoError(t, err)
	require.NotNil(t, result.OldFolderID)
	assert.Equal(t, folder.ID, *result.OldFolderID)
	assert.Nil(t, result.NewFolderID)

	n, err := env.noteRepo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, n.FolderID)
	assert.Nil(t, n.Folder)
}
