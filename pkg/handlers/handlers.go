package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/eknkc/pug"

	"fauna-gallery/pkg/render"
	"fauna-gallery/pkg/services"
)

// Handler serves the gallery page and its session API
type Handler struct {
	sessions  *services.SessionStore
	viewsDir  string
	logger    *slog.Logger
	heartbeat time.Duration
}

// New creates a Handler rendering templates from viewsDir
func New(sessions *services.SessionStore, viewsDir string, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		viewsDir:  viewsDir,
		logger:    logger,
		heartbeat: 30 * time.Second,
	}
}

// GalleryHandler handles a page load: it starts a new session and renders the index page
func (h *Handler) GalleryHandler(w http.ResponseWriter, _ *http.Request) {
	template, err := pug.CompileFile(filepath.Join(h.viewsDir, "index.pug"), pug.Options{})
	if err != nil {
		h.logger.Error("template error", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Create()
	if err != nil {
		h.logger.Error("failed to start session", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("Generating Index", slog.String("session_id", session.ID))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := template.Execute(w, render.Page(session.ID, session.Store().Snapshot())); err != nil {
		h.logger.Error("template execution error", slog.String("error", err.Error()))
	}
}

// HealthHandler reports liveness and the number of open sessions
func (h *Handler) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	}, h.logger)
}
