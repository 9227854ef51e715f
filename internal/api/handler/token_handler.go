package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prompty/notifier/internal/domain"
	"github.com/prompty/notifier/internal/repository"
)

// TokenHandler manages device-token registration for the Prompty app.
type TokenHandler struct {
	tokens repository.DeviceTokenRepository
	logger *zap.Logger
}

func NewTokenHandler(tokens repository.DeviceTokenRepository, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// Register handles POST /api/v1/tokens
//
// Upserts a device token: re-registering an existing token reassigns it to
// the given user and reactivates it.
//
// @Summary  Register a device token
// @Tags     tokens
// @Accept   json
// @Produce  json
// @Param    body  body  domain.RegisterTokenRequest  true  "Token payload"
// @Success  201   {object}  map[string]string
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/tokens [post]
func (h *TokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		mapError(w, err)
		return
	}

	if err := h.tokens.Register(r.Context(), req.Token, req.UserID); err != nil {
		h.logger.Error("token registration failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to register token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Deactivate handles DELETE /api/v1/tokens/{token}
//
// Idempotent: deactivating an unknown or already-inactive token returns 204.
//
// @Summary  Deactivate a device token
// @Tags     tokens
// @Param    token  path  string  true  "Device token"
// @Success  204
// @Router   /api/v1/tokens/{token} [delete]
func (h *TokenHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		mapError(w, domain.ErrInvalidToken)
		return
	}

	if err := h.tokens.Deactivate(r.Context(), token); err != nil {
		h.logger.Error("token deactivation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to deactivate token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
