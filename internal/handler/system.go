package handler

import (
	"log/slog"
	"net/http"

	"poznote/internal/domain/services"
	"poznote/internal/httputil"
)

// SystemHandler handles health and maintenance endpoints
type SystemHandler struct {
	shareService services.ShareService
	logger       *slog.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(shareService services.ShareService, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *SystemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RepairShares rebuilds the current user's share registry rows
// POST /api/v1/system/repair-shares
func (h *SystemHandler) RepairShares(w http.ResponseWriter, r *http.Request) {
	result, err := h.shareService.RepairRegistry(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
