package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/entity"
	"github.com/danverse/danverse-api/internal/infra/token"
	"github.com/danverse/danverse-api/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Validation problems are
// rejected requests; transient I/O is a retryable 502/500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrPlanNotFound),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, adapter.ErrExpiredBackup),
		errors.Is(err, token.ErrInvalidToken),
		usecase.IsDomainError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, adapter.ErrUnsupportedOperation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case usecase.IsTechnicalError(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream failure, please retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
