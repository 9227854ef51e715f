package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prompty/notifier/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	var credErr *domain.CredentialError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidUserID):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &credErr):
		// No bearer token means nothing can be delivered this invocation.
		respondError(w, http.StatusInternalServerError, "push credential exchange failed")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
