package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
	"poznote/internal/domain/services"
)

// In-memory fakes for the repository interfaces. They reproduce the
// contract the Postgres implementations follow: (nil, nil) misses on
// lookup-style methods, ErrNotFound on must-exist methods.

type fakeFolderRepo struct {
	folders map[int64]*models.Folder
	nextID  int64
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[int64]*models.Folder), nextID: 1}
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	folder.ID = r.nextID
	r.nextID++
	folder.Created = time.Now()
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id int64) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeFolderRepo) GetByNameAndParent(_ context.Context, workspace, name string, parentID *int64) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.Workspace == workspace && f.Name == name && sameParent(f.ParentID, parentID) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) ListByWorkspace(_ context.Context, workspace string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if f.Workspace == workspace {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) SiblingNameExists(_ context.Context, workspace, name string, parentID *int64, excludeID int64) (bool, error) {
	for _, f := range r.folders {
		if f.ID != excludeID && f.Workspace == workspace && f.Name == name && sameParent(f.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFolderRepo) UpdateName(_ context.Context, id int64, name string) error {
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	f.Name = name
	return nil
}

func (r *fakeFolderRepo) UpdateParent(_ context.Context, id int64, parentID *int64) error {
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	f.ParentID = parentID
	return nil
}

func (r *fakeFolderRepo) UpdateIcon(_ context.Context, id int64, icon, iconColor *string) error {
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	f.Icon = icon
	f.IconColor = iconColor
	return nil
}

func (r *fakeFolderRepo) DeleteByIDs(_ context.Context, workspace string, ids []int64) error {
	for _, id := range ids {
		if f, ok := r.folders[id]; ok && f.Workspace == workspace {
			delete(r.folders, id)
		}
	}
	return nil
}

type fakeNoteRepo struct {
	notes  map[int64]*models.Note
	nextID int64
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int64]*models.Note), nextID: 1}
}

func (r *fakeNoteRepo) add(note models.Note) *models.Note {
	note.ID = r.nextID
	r.nextID++
	cp := note
	r.notes[cp.ID] = &cp
	return &cp
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id int64) (*models.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNoteRepo) ListInFolder(_ context.Context, folderID int64, folderName string) ([]models.Note, error) {
	var out []models.Note
	for _, n := range r.notes {
		if n.Trash {
			continue
		}
		inByID := n.FolderID != nil && *n.FolderID == folderID
		inByName := n.Folder != nil && *n.Folder == folderName
		if inByID || inByName {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeNoteRepo) ListDirect(_ context.Context, workspace string, folderID int64) ([]models.Note, error) {
	var out []models.Note
	for _, n := range r.notes {
		if n.Trash || n.Workspace != workspace {
			continue
		}
		if n.FolderID != nil && *n.FolderID == folderID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeNoteRepo) TrashByFolderIDs(_ context.Context, workspace string, ids []int64) (int64, error) {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var count int64
	for _, n := range r.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID != nil && set[*n.FolderID] {
			n.Trash = true
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) TrashDirect(_ context.Context, workspace string, folderID int64) (int64, error) {
	var count int64
	for _, n := range r.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID != nil && *n.FolderID == folderID {
			n.Trash = true
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) HeadingExists(_ context.Context, workspace, heading string, folderID *int64, excludeID int64) (bool, error) {
	for _, n := range r.notes {
		if n.ID != excludeID && !n.Trash && n.Workspace == workspace && n.Heading == heading && sameParent(n.FolderID, folderID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNoteRepo) SetFolder(_ context.Context, id int64, folderID *int64, folderName *string) error {
	n, ok := r.notes[id]
	if !ok {
		return fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	n.FolderID = folderID
	n.Folder = folderName
	n.Updated = time.Now()
	return nil
}

func (r *fakeNoteRepo) RenameFolderRef(_ context.Context, workspace, oldName, newName string) error {
	for _, n := range r.notes {
		if n.Workspace == workspace && n.Folder != nil && *n.Folder == oldName {
			name := newName
			n.Folder = &name
		}
	}
	return nil
}

func (r *fakeNoteRepo) NoteCountsByFolder(_ context.Context, workspace string) (map[int64]int, error) {
	out := make(map[int64]int)
	for _, n := range r.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID != nil {
			out[*n.FolderID]++
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) CountUnfiled(_ context.Context, workspace string) (int, error) {
	count := 0
	for _, n := range r.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID == nil {
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) CountFavorites(_ context.Context, workspace string) (int, error) {
	count := 0
	for _, n := range r.notes {
		if n.Workspace == workspace && !n.Trash && n.Favorite {
			count++
		}
	}
	return count, nil
}

type shareKey struct {
	target models.ShareTarget
	id     int64
}

type fakeShareRepo struct {
	recs   map[shareKey]*models.ShareRecord
	nextID int64
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{recs: make(map[shareKey]*models.ShareRecord), nextID: 1}
}

func (r *fakeShareRepo) GetByTarget(_ context.Context, target models.ShareTarget, targetID int64) (*models.ShareRecord, error) {
	rec, ok := r.recs[shareKey{target, targetID}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeShareRepo) FindToken(_ context.Context, token string) (*models.ShareRecord, error) {
	for _, rec := range r.recs {
		if rec.Token == token {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeShareRepo) Insert(_ context.Context, rec *models.ShareRecord) error {
	key := shareKey{rec.Target, rec.TargetID}
	if _, exists := r.recs[key]; exists {
		return fmt.Errorf("share: %w", domain.ErrConflict)
	}
	for _, other := range r.recs {
		if other.Token == rec.Token {
			return fmt.Errorf("token '%s': %w", rec.Token, domain.ErrConflict)
		}
	}
	rec.ID = r.nextID
	r.nextID++
	rec.Created = time.Now()
	cp := *rec
	r.recs[key] = &cp
	return nil
}

func (r *fakeShareRepo) Update(_ context.Context, rec *models.ShareRecord) error {
	key := shareKey{rec.Target, rec.TargetID}
	existing, ok := r.recs[key]
	if !ok {
		return fmt.Errorf("share: %w", domain.ErrNotFound)
	}
	existing.Token = rec.Token
	existing.Theme = rec.Theme
	existing.Indexable = rec.Indexable
	existing.PasswordHash = rec.PasswordHash
	existing.Created = time.Now()
	rec.ID = existing.ID
	rec.Created = existing.Created
	return nil
}

func (r *fakeShareRepo) UpdateSettings(_ context.Context, target models.ShareTarget, targetID int64, token *string, indexable *bool, passwordHash *string, setPassword bool) error {
	rec, ok := r.recs[shareKey{target, targetID}]
	if !ok {
		return fmt.Errorf("share: %w", domain.ErrNotFound)
	}
	if token != nil {
		rec.Token = *token
	}
	if indexable != nil {
		rec.Indexable = *indexable
	}
	if setPassword {
		rec.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeShareRepo) DeleteByTarget(_ context.Context, target models.ShareTarget, targetID int64) error {
	delete(r.recs, shareKey{target, targetID})
	return nil
}

func (r *fakeShareRepo) ListAll(_ context.Context, target models.ShareTarget) ([]models.ShareRecord, error) {
	var out []models.ShareRecord
	for key, rec := range r.recs {
		if key.target == target {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRegistryRepo struct {
	links map[string]*models.SharedLink
}

func newFakeRegistryRepo() *fakeRegistryRepo {
	return &fakeRegistryRepo{links: make(map[string]*models.SharedLink)}
}

func (r *fakeRegistryRepo) Register(_ context.Context, token string, userID int64, target models.ShareTarget, targetID int64) error {
	r.links[token] = &models.SharedLink{
		Token:      token,
		UserID:     userID,
		TargetType: target,
		TargetID:   targetID,
		CreatedAt:  time.Now(),
	}
	return nil
}

func (r *fakeRegistryRepo) Unregister(_ context.Context, token string) error {
	delete(r.links, token)
	return nil
}

func (r *fakeRegistryRepo) Resolve(_ context.Context, token string) (*models.SharedLink, error) {
	link, ok := r.links[token]
	if !ok {
		return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	cp := *link
	return &cp, nil
}

func (r *fakeRegistryRepo) DeleteByUser(_ context.Context, userID int64) error {
	for token, link := range r.links {
		if link.UserID == userID {
			delete(r.links, token)
		}
	}
	return nil
}

type fakeWorkspaceRepo struct {
	names []string
}

func (r *fakeWorkspaceRepo) Exists(_ context.Context, name string) (bool, error) {
	for _, n := range r.names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWorkspaceRepo) FirstName(_ context.Context) (string, error) {
	if len(r.names) == 0 {
		return "", fmt.Errorf("workspace: %w", domain.ErrNotFound)
	}
	sorted := append([]string(nil), r.names...)
	sort.Strings(sorted)
	return sorted[0], nil
}

// fakeTxManager runs the function directly; the fakes mutate shared state
// so there is nothing to commit or roll back.
type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// testEnv wires the services over fresh fakes.
type testEnv struct {
	folderRepo    *fakeFolderRepo
	noteRepo      *fakeNoteRepo
	shareRepo     *fakeShareRepo
	registryRepo  *fakeRegistryRepo
	workspaceRepo *fakeWorkspaceRepo
	folders       services.FolderService
	shares        services.ShareService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		folderRepo:    newFakeFolderRepo(),
		noteRepo:      newFakeNoteRepo(),
		shareRepo:     newFakeShareRepo(),
		registryRepo:  newFakeRegistryRepo(),
		workspaceRepo: &fakeWorkspaceRepo{names: []string{"Poznote"}},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := &fakeTxManager{}

	env.shares = NewShareService(env.shareRepo, env.registryRepo, env.noteRepo, env.folderRepo, tx, "http://localhost:8080", logger)
	env.folders = NewFolderService(env.folderRepo, env.noteRepo, env.workspaceRepo, env.shares, tx, logger)

	return env
}

// mustFolder creates a folder directly through the repo for test setup.
func (env *testEnv) mustFolder(name string, parentID *int64) *models.Folder {
	f := &models.Folder{Name: name, Workspace: "Poznote", ParentID: parentID}
	if err := env.folderRepo.Create(context.Background(), f); err != nil {
		panic(err)
	}
	return f
}

// mustNote creates a note directly through the repo for test setup.
func (env *testEnv) mustNote(heading string, folder *models.Folder) *models.Note {
	n := models.Note{Heading: heading, Workspace: "Poznote"}
	if folder != nil {
		n.FolderID = &folder.ID
		name := folder.Name
		n.Folder = &name
	}
	return env.noteRepo.add(n)
}
