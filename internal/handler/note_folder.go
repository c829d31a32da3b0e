package handler

import (
	"log/slog"
	"net/http"

	"poznote/internal/domain/services"
	"poznote/internal/httputil"
)

// NoteFolderHandler handles the note-side folder operations
type NoteFolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewNoteFolderHandler creates a new note-folder handler
func NewNoteFolderHandler(folderService services.FolderService, logger *slog.Logger) *NoteFolderHandler {
	return &NoteFolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// MoveNote moves a note into a folder, by id or by name
// POST /api/v1/notes/{id}/folder
func (h *NoteFolderHandler) MoveNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.MoveNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.folderService.MoveNoteToFolder(r.Context(), httputil.GetUserID(r), noteID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RemoveFromFolder moves a note back to the workspace root
// POST /api/v1/notes/{id}/remove-folder
func (h *NoteFolderHandler) RemoveFromFolder(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.folderService.RemoveNoteFromFolder(r.Context(), httputil.GetUserID(r), noteID, r.URL.Query().Get("workspace"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
