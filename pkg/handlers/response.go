package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fauna-gallery/pkg/models"
	"fauna-gallery/pkg/services"
)

// Envelope is the JSON body of every API response
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Success: status < 400, Data: data}); err != nil {
		logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Error: message}); err != nil {
		logger.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}

// handleServiceError maps service errors onto HTTP status codes
func handleServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrSessionClosed):
		writeError(w, http.StatusNotFound, "Session not found", logger)
	case errors.Is(err, models.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error(), logger)
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal server error", logger)
	}
}
