package handler

import (
	"log/slog"
	"net/http"

	"poznote/internal/domain/services"
	"poznote/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// ListFolders lists the folders of a workspace, flat or as a tree
// GET /api/v1/folders?workspace=X&hierarchical=true
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	workspace := r.URL.Query().Get("workspace")
	hierarchical := r.URL.Query().Get("hierarchical") == "true"

	listing, err := h.folderService.ListFolders(r.Context(), workspace, hierarchical)
	if err != nil {
		handleError(w, err)
		return
	}

	if hierarchical {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"workspace": listing.Workspace,
			"folders":   listing.Tree,
		})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"workspace": listing.Workspace,
		"folders":   listing.Flat,
	})
}

// CreateFolder creates a folder in name mode or path mode
// POST /api/v1/folders
// Returns 201 if created, 409 if a folder already exists at the target
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// GetFolder retrieves a folder by ID with its computed path
// GET /api/v1/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder
// PATCH /api/v1/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		NewName string `json:"new_name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), id, req.NewName)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder re-parents a folder
// POST /api/v1/folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.MoveFolder(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and its whole subtree
// DELETE /api/v1/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EmptyFolder moves the folder's direct notes to trash
// POST /api/v1/folders/{id}/empty
func (h *FolderHandler) EmptyFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	trashed, err := h.folderService.EmptyFolder(r.Context(), id, r.URL.Query().Get("workspace"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"trashed": trashed})
}

// UpdateIcon sets the folder's icon and icon color
// PUT /api/v1/folders/{id}/icon
func (h *FolderHandler) UpdateIcon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Icon      *string `json:"icon"`
		IconColor *string `json:"icon_color"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.folderService.UpdateIcon(r.Context(), id, req.Icon, req.IconColor); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CountFolderNotes returns the recursive note and subfolder counts
// GET /api/v1/folders/{id}/notes
func (h *FolderHandler) CountFolderNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := h.folderService.CountFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, counts)
}

// GetPath returns the breadcrumb path of a folder
// GET /api/v1/folders/{id}/path
func (h *FolderHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := h.folderService.FolderPath(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"path": path})
}

// AllCounts returns the recursive note counts of every folder
// GET /api/v1/folders/counts?workspace=X
func (h *FolderHandler) AllCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.folderService.AllCounts(r.Context(), r.URL.Query().Get("workspace"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, counts)
}

// MoveFiles bulk-moves the direct notes of one folder into another
// POST /api/v1/folders/move-files
func (h *FolderHandler) MoveFiles(w http.ResponseWriter, r *http.Request) {
	var req services.MoveFilesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.folderService.MoveFolderFiles(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
