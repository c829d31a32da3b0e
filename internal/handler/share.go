package handler

import (
	"log/slog"
	"net/http"

	"poznote/internal/domain/services"
	"poznote/internal/httputil"
)

// ShareHandler handles note and folder share HTTP requests
type ShareHandler struct {
	shareService services.ShareService
	logger       *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService services.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger,
	}
}

type shareResponse struct {
	Public           bool   `json:"public"`
	URL              string `json:"url,omitempty"`
	URLQuery         string `json:"url_query,omitempty"`
	Indexable        bool   `json:"indexable"`
	HasPassword      bool   `json:"hasPassword"`
	Workspace        string `json:"workspace,omitempty"`
	Renewed          bool   `json:"renewed,omitempty"`
	SharedNotesCount int    `json:"shared_notes_count,omitempty"`
}

func shareResultResponse(result *services.ShareResult) shareResponse {
	return shareResponse{
		Public:           result.Status.Public,
		URL:              result.Status.URL,
		URLQuery:         result.Status.URLQuery,
		Indexable:        result.Status.Indexable,
		HasPassword:      result.Status.HasPassword,
		Workspace:        result.Status.Workspace,
		Renewed:          result.Renewed,
		SharedNotesCount: result.SharedNotesCount,
	}
}

// NoteShareStatus reports the share state of a note
// GET /api/v1/notes/{id}/share
func (h *ShareHandler) NoteShareStatus(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.shareService.NoteShareStatus(r.Context(), noteID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// ShareNote creates or renews a note share
// POST /api/v1/notes/{id}/share
func (h *ShareHandler) ShareNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.shareService.ShareNote(r.Context(), httputil.GetUserID(r), noteID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Renewed {
		status = http.StatusOK
	}
	httputil.RespondJSON(w, status, shareResultResponse(result))
}

// UnshareNote revokes a note share
// DELETE /api/v1/notes/{id}/share
func (h *ShareHandler) UnshareNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.shareService.UnshareNote(r.Context(), noteID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateNoteShare partially updates a note share's settings
// PATCH /api/v1/notes/{id}/share
func (h *ShareHandler) UpdateNoteShare(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.UpdateShareSettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.shareService.UpdateNoteShareSettings(r.Context(), httputil.GetUserID(r), noteID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, settings)
}

// FolderShareStatus reports the share state of a folder
// GET /api/v1/folders/{id}/share
func (h *ShareHandler) FolderShareStatus(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.shareService.FolderShareStatus(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// ShareFolder creates or renews a folder share, propagating note shares
// POST /api/v1/folders/{id}/share
func (h *ShareHandler) ShareFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.shareService.ShareFolder(r.Context(), httputil.GetUserID(r), folderID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Renewed {
		status = http.StatusOK
	}
	httputil.RespondJSON(w, status, shareResultResponse(result))
}

// UnshareFolder revokes a folder share and un-propagates note shares
// DELETE /api/v1/folders/{id}/share
func (h *ShareHandler) UnshareFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := h.shareService.UnshareFolder(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"note_shares_removed": removed})
}

// UpdateFolderShare partially updates a folder share's settings
// PATCH /api/v1/folders/{id}/share
func (h *ShareHandler) UpdateFolderShare(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.UpdateShareSettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.shareService.UpdateFolderShareSettings(r.Context(), httputil.GetUserID(r), folderID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, settings)
}
