package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
	"poznote/internal/domain/repositories"
	"poznote/internal/domain/services"
)

type shareService struct {
	shareRepo    repositories.ShareRepository
	registryRepo repositories.RegistryRepository
	noteRepo     repositories.NoteRepository
	folderRepo   repositories.FolderRepository
	txManager    repositories.TransactionManager
	baseURL      string
	logger       *slog.Logger
}

// NewShareService creates a new share service. baseURL is the externally
// visible origin used when building public share URLs.
func NewShareService(
	shareRepo repositories.ShareRepository,
	registryRepo repositories.RegistryRepository,
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	baseURL string,
	logger *slog.Logger,
) services.ShareService {
	return &shareService{
		shareRepo:    shareRepo,
		registryRepo: registryRepo,
		noteRepo:     noteRepo,
		folderRepo:   folderRepo,
		txManager:    txManager,
		baseURL:      baseURL,
		logger:       logger,
	}
}

// generateToken returns 16 random bytes as 32 lowercase hex characters.
func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// newUnusedToken generates tokens until one is free in the combined
// note/folder token space. Collisions on 128 random bits are effectively
// impossible; the retry loop guards against them anyway.
func (s *shareService) newUnusedToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		existing, err := s.shareRepo.FindToken(ctx, token)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return token, nil
		}
	}
	return "", fmt.Errorf("could not generate an unused share token")
}

// resolveToken picks the token for a share request: a validated custom
// token checked for availability, or a fresh generated one. self, when
// non-nil, is the share being renewed and may keep its own token.
func (s *shareService) resolveToken(ctx context.Context, custom string, self *models.ShareRecord) (string, error) {
	if custom == "" {
		return s.newUnusedToken(ctx)
	}

	if err := ValidateCustomToken(custom); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.shareRepo.FindToken(ctx, custom)
	if err != nil {
		return "", err
	}
	if existing != nil && (self == nil || existing.Target != self.Target || existing.TargetID != self.TargetID) {
		return "", &domain.ConflictError{
			Message:      "this token is already in use",
			ResourceType: "share",
		}
	}

	return custom, nil
}

func hashPassword(password string) (*string, error) {
	if password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	h := string(hash)
	return &h, nil
}

// status builds the public-facing view of a share record.
func (s *shareService) status(rec *models.ShareRecord, workspace string) *models.ShareStatus {
	st := &models.ShareStatus{
		Public:      true,
		Indexable:   rec.Indexable,
		HasPassword: rec.HasPassword(),
		Workspace:   workspace,
	}

	if rec.Target == models.ShareTargetFolder {
		st.URL = s.baseURL + "/folder/" + rec.Token
		st.URLQuery = s.baseURL + "/public_folder.php?token=" + rec.Token
	} else {
		st.URL = s.baseURL + "/" + rec.Token
		st.URLQuery = s.baseURL + "/public_note.php?token=" + rec.Token
	}

	return st
}

// NoteShareStatus reports whether a note is shared and at which URLs
func (s *shareService) NoteShareStatus(ctx context.Context, noteID int64) (*models.ShareStatus, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	rec, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetNote, noteID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &models.ShareStatus{Public: false, Workspace: note.Workspace}, nil
	}

	return s.status(rec, note.Workspace), nil
}

// ShareNote creates or renews a note share. Renewing replaces the token;
// the old one stops resolving immediately.
func (s *shareService) ShareNote(ctx context.Context, userID, noteID int64, req *services.ShareRequest) (*services.ShareResult, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	result := &services.ShareResult{}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.shareRepo.GetByTarget(txCtx, models.ShareTargetNote, noteID)
		if err != nil {
			return err
		}

		token, err := s.resolveToken(txCtx, req.CustomToken, existing)
		if err != nil {
			return err
		}

		passwordHash, err := hashPassword(req.Password)
		if err != nil {
			return err
		}

		rec := &models.ShareRecord{
			Target:       models.ShareTargetNote,
			TargetID:     noteID,
			Token:        token,
			Theme:        req.Theme,
			Indexable:    req.Indexable,
			PasswordHash: passwordHash,
		}

		if existing != nil {
			if err := s.registryRepo.Unregister(txCtx, existing.Token); err != nil {
				return err
			}
			if err := s.shareRepo.Update(txCtx, rec); err != nil {
				return err
			}
			result.Renewed = true
		} else {
			if err := s.shareRepo.Insert(txCtx, rec); err != nil {
				return err
			}
		}

		if err := s.registryRepo.Register(txCtx, token, userID, models.ShareTargetNote, noteID); err != nil {
			return err
		}

		result.Status = s.status(rec, note.Workspace)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("note shared",
		"note_id", noteID,
		"renewed", result.Renewed,
		"user_id", userID,
	)

	return result, nil
}

// UnshareNote revokes a note share. Unsharing a note that is not shared
// is a no-op.
func (s *shareService) UnshareNote(ctx context.Context, noteID int64) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rec, err := s.shareRepo.GetByTarget(txCtx, models.ShareTargetNote, noteID)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		if err := s.shareRepo.DeleteByTarget(txCtx, models.ShareTargetNote, noteID); err != nil {
			return err
		}
		return s.registryRepo.Unregister(txCtx, rec.Token)
	})
}

// UpdateNoteShareSettings partially updates an existing note share
func (s *shareService) UpdateNoteShareSettings(ctx context.Context, userID, noteID int64, req *services.UpdateShareSettingsRequest) (*services.ShareSettings, error) {
	return s.updateSettings(ctx, userID, models.ShareTargetNote, noteID, req)
}

// FolderShareStatus reports whether a folder is shared and at which URLs
func (s *shareService) FolderShareStatus(ctx context.Context, folderID int64) (*models.ShareStatus, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	rec, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetFolder, folderID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &models.ShareStatus{Public: false, Workspace: folder.Workspace}, nil
	}

	return s.status(rec, folder.Workspace), nil
}

// ShareFolder creates or renews a folder share and propagates note shares
// to the folder's direct notes. Propagated shares get generated tokens and
// never inherit the folder password.
func (s *shareService) ShareFolder(ctx context.Context, userID, folderID int64, req *services.ShareRequest) (*services.ShareResult, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	result := &services.ShareResult{}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		existing, err := s.shareRepo.GetByTarget(txCtx, models.ShareTargetFolder, folderID)
		if err != nil {
			return err
		}

		token, err := s.resolveToken(txCtx, req.CustomToken, existing)
		if err != nil {
			return err
		}

		passwordHash, err := hashPassword(req.Password)
		if err != nil {
			return err
		}

		rec := &models.ShareRecord{
			Target:       models.ShareTargetFolder,
			TargetID:     folderID,
			Token:        token,
			Theme:        req.Theme,
			Indexable:    req.Indexable,
			PasswordHash: passwordHash,
		}

		if existing != nil {
			if err := s.registryRepo.Unregister(txCtx, existing.Token); err != nil {
				return err
			}
			if err := s.shareRepo.Update(txCtx, rec); err != nil {
				return err
			}
			result.Renewed = true
		} else {
			if err := s.shareRepo.Insert(txCtx, rec); err != nil {
				return err
			}
		}

		if err := s.registryRepo.Register(txCtx, token, userID, models.ShareTargetFolder, folderID); err != nil {
			return err
		}

		shared, err := s.propagateToNotes(txCtx, userID, folder, req.Theme)
		if err != nil {
			return err
		}
		result.SharedNotesCount = shared

		result.Status = s.status(rec, folder.Workspace)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder shared",
		"folder_id", folderID,
		"renewed", result.Renewed,
		"notes_shared", result.SharedNotesCount,
		"user_id", userID,
	)

	return result, nil
}

// propagateToNotes shares every direct note of the folder that is not yet
// shared. Each step is idempotent so a retried transaction converges.
func (s *shareService) propagateToNotes(ctx context.Context, userID int64, folder *models.Folder, theme *string) (int, error) {
	notes, err := s.noteRepo.ListInFolder(ctx, folder.ID, folder.Name)
	if err != nil {
		return 0, err
	}

	shared := 0
	for _, note := range notes {
		existing, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetNote, note.ID)
		if err != nil {
			return shared, err
		}
		if existing != nil {
			continue
		}

		token, err := s.newUnusedToken(ctx)
		if err != nil {
			return shared, err
		}

		rec := &models.ShareRecord{
			Target:   models.ShareTargetNote,
			TargetID: note.ID,
			Token:    token,
			Theme:    theme,
		}
		if err := s.shareRepo.Insert(ctx, rec); err != nil {
			return shared, err
		}
		if err := s.registryRepo.Register(ctx, token, userID, models.ShareTargetNote, note.ID); err != nil {
			return shared, err
		}
		shared++
	}

	return shared, nil
}

// UnshareFolder revokes a folder share and un-propagates: the shares of
// the folder's direct notes are revoked too. Returns the number of note
// shares removed.
func (s *shareService) UnshareFolder(ctx context.Context, folderID int64) (int, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return 0, err
	}

	removed := 0
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rec, err := s.shareRepo.GetByTarget(txCtx, models.ShareTargetFolder, folderID)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		if err := s.shareRepo.DeleteByTarget(txCtx, models.ShareTargetFolder, folderID); err != nil {
			return err
		}
		if err := s.registryRepo.Unregister(txCtx, rec.Token); err != nil {
			return err
		}

		removed, err = s.unpropagateFromNotes(txCtx, folder)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("folder unshared",
		"folder_id", folderID,
		"note_shares_removed", removed,
	)

	return removed, nil
}

// unpropagateFromNotes revokes the note shares of a folder's direct notes.
func (s *shareService) unpropagateFromNotes(ctx context.Context, folder *models.Folder) (int, error) {
	notes, err := s.noteRepo.ListInFolder(ctx, folder.ID, folder.Name)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, note := range notes {
		rec, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetNote, note.ID)
		if err != nil {
			return removed, err
		}
		if rec == nil {
			continue
		}

		if err := s.shareRepo.DeleteByTarget(ctx, models.ShareTargetNote, note.ID); err != nil {
			return removed, err
		}
		if err := s.registryRepo.Unregister(ctx, rec.Token); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// UpdateFolderShareSettings partially updates an existing folder share
func (s *shareService) UpdateFolderShareSettings(ctx context.Context, userID, folderID int64, req *services.UpdateShareSettingsRequest) (*services.ShareSettings, error) {
	return s.updateSettings(ctx, userID, models.ShareTargetFolder, folderID, req)
}

// updateSettings is the shared PATCH path for both share variants.
func (s *shareService) updateSettings(ctx context.Context, userID int64, target models.ShareTarget, targetID int64, req *services.UpdateShareSettingsRequest) (*services.ShareSettings, error) {
	settings := &services.ShareSettings{}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rec, err := s.shareRepo.GetByTarget(txCtx, target, targetID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("share for %s %d: %w", target, targetID, domain.ErrNotFound)
		}

		var newToken *string
		if req.CustomToken != "" && req.CustomToken != rec.Token {
			token, err := s.resolveToken(txCtx, req.CustomToken, rec)
			if err != nil {
				return err
			}
			newToken = &token
		}

		var passwordHash *string
		setPassword := false
		if req.Password.Present {
			setPassword = true
			if req.Password.Value != nil && *req.Password.Value != "" {
				passwordHash, err = hashPassword(*req.Password.Value)
				if err != nil {
					return err
				}
			}
		}

		if newToken == nil && req.Indexable == nil && !setPassword {
			return fmt.Errorf("%w: no settings to update", domain.ErrValidation)
		}

		if err := s.shareRepo.UpdateSettings(txCtx, target, targetID, newToken, req.Indexable, passwordHash, setPassword); err != nil {
			return err
		}

		if newToken != nil {
			if err := s.registryRepo.Unregister(txCtx, rec.Token); err != nil {
				return err
			}
			if err := s.registryRepo.Register(txCtx, *newToken, userID, target, targetID); err != nil {
				return err
			}
			settings.Token = newToken
		}

		settings.Indexable = req.Indexable
		if setPassword {
			has := passwordHash != nil
			settings.HasPassword = &has
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// SyncNoteShareOnMove keeps a note's share consistent with the folder it
// moves between: leaving a shared folder drops the share, entering one
// creates a propagated share. Runs in the caller's transaction.
func (s *shareService) SyncNoteShareOnMove(ctx context.Context, userID, noteID int64, oldFolderID, newFolderID *int64) (int, error) {
	oldShared, err := s.folderIsShared(ctx, oldFolderID)
	if err != nil {
		return 0, err
	}
	newShared, err := s.folderIsShared(ctx, newFolderID)
	if err != nil {
		return 0, err
	}

	if oldShared == newShared {
		return 0, nil
	}

	rec, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetNote, noteID)
	if err != nil {
		return 0, err
	}

	if oldShared && !newShared {
		if rec == nil {
			return 0, nil
		}
		if err := s.shareRepo.DeleteByTarget(ctx, models.ShareTargetNote, noteID); err != nil {
			return 0, err
		}
		if err := s.registryRepo.Unregister(ctx, rec.Token); err != nil {
			return 0, err
		}
		return -1, nil
	}

	// Entering a shared folder
	if rec != nil {
		return 0, nil
	}

	token, err := s.newUnusedToken(ctx)
	if err != nil {
		return 0, err
	}
	newRec := &models.ShareRecord{
		Target:   models.ShareTargetNote,
		TargetID: noteID,
		Token:    token,
	}
	if err := s.shareRepo.Insert(ctx, newRec); err != nil {
		return 0, err
	}
	if err := s.registryRepo.Register(ctx, token, userID, models.ShareTargetNote, noteID); err != nil {
		return 0, err
	}

	return 1, nil
}

func (s *shareService) folderIsShared(ctx context.Context, folderID *int64) (bool, error) {
	if folderID == nil {
		return false, nil
	}
	rec, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetFolder, *folderID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// RevokeFolderShares revokes any active folder shares within the given id
// set, un-propagating their note shares. Runs in the caller's transaction.
func (s *shareService) RevokeFolderShares(ctx context.Context, folderIDs []int64) error {
	for _, id := range folderIDs {
		rec, err := s.shareRepo.GetByTarget(ctx, models.ShareTargetFolder, id)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}

		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.shareRepo.DeleteByTarget(ctx, models.ShareTargetFolder, id); err != nil {
			return err
		}
		if err := s.registryRepo.Unregister(ctx, rec.Token); err != nil {
			return err
		}
		if _, err := s.unpropagateFromNotes(ctx, folder); err != nil {
			return err
		}
	}

	return nil
}

// ResolvePublicToken routes an inbound public token to its registry entry
func (s *shareService) ResolvePublicToken(ctx context.Context, token string) (*models.SharedLink, error) {
	return s.registryRepo.Resolve(ctx, token)
}

// RepairRegistry rebuilds the registry rows of one user from the share
// tables, compensating for drift between the two stores.
func (s *shareService) RepairRegistry(ctx context.Context, userID int64) (*services.RepairResult, error) {
	result := &services.RepairResult{}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.registryRepo.DeleteByUser(txCtx, userID); err != nil {
			return err
		}

		noteShares, err := s.shareRepo.ListAll(txCtx, models.ShareTargetNote)
		if err != nil {
			return err
		}
		for _, rec := range noteShares {
			if err := s.registryRepo.Register(txCtx, rec.Token, userID, models.ShareTargetNote, rec.TargetID); err != nil {
				return err
			}
			result.NoteLinks++
		}

		folderShares, err := s.shareRepo.ListAll(txCtx, models.ShareTargetFolder)
		if err != nil {
			return err
		}
		for _, rec := range folderShares {
			if err := s.registryRepo.Register(txCtx, rec.Token, userID, models.ShareTargetFolder, rec.TargetID); err != nil {
				return err
			}
			result.FolderLinks++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("share registry repaired",
		"user_id", userID,
		"note_links", result.NoteLinks,
		"folder_links", result.FolderLinks,
	)

	return result, nil
}
