package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fauna-gallery/pkg/models"
	"fauna-gallery/pkg/render"
	"fauna-gallery/pkg/services"
)

// lookupSession resolves the {id} URL parameter, writing the error response itself
func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.logger)
		return nil, false
	}
	return session, true
}

// SessionHandler returns the rendered page of a session as JSON
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, render.Page(session.ID, session.Store().Snapshot()), h.logger)
}

// RefreshHandler handles "Generate New" for a single card
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Refreshing card", slog.String("session_id", session.ID), slog.String("category", category.String()))

	if err := session.Refetch(category); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusAccepted, render.Card(category, session.Store().Snapshot()), h.logger)
}

// HoverHandler sets or clears the hover target. An empty category clears it.
func (h *Handler) HoverHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if req.Category == "" {
		session.Store().ClearHover()
	} else {
		category, err := models.ParseCategory(req.Category)
		if err != nil {
			handleServiceError(w, err, h.logger)
			return
		}
		session.Store().SetHover(category)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hover": session.Store().Snapshot().Hover,
	}, h.logger)
}

// CloseSessionHandler ends a session when its page unloads
func (h *Handler) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(id); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	h.logger.Debug("session closed by client", slog.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}
