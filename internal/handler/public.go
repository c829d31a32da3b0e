package handler

import (
	"log/slog"
	"net/http"

	"poznote/internal/domain/services"
	"poznote/internal/httputil"
)

// PublicHandler resolves inbound public share tokens. It sits outside the
// auth middleware: tokens are the credential.
type PublicHandler struct {
	shareService services.ShareService
	logger       *slog.Logger
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(shareService services.ShareService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// ResolveToken routes a public token to its owner and target
// GET /api/v1/public/{token}
func (h *PublicHandler) ResolveToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		httputil.RespondError(w, http.StatusBadRequest, "token is required")
		return
	}

	link, err := h.shareService.ResolvePublicToken(r.Context(), token)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, link)
}
