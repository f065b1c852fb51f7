package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fauna-gallery/pkg/models"
	"fauna-gallery/pkg/render"
)

// Event names sent on the session stream
const (
	eventSnapshot  = "snapshot"
	eventCard      = "card"
	eventHover     = "hover"
	eventHeartbeat = "heartbeat"
)

// EventsHandler streams a session's view changes as Server-Sent Events.
// The first event is the full page; after that only affected cards are sent.
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe before the snapshot so no change can fall between the two.
	watcher := session.Store().Watch()
	defer watcher.Stop()

	log := h.logger.With(slog.String("session_id", session.ID))
	log.Debug("event stream opened")

	if err := h.sendEvent(w, rc, eventSnapshot, render.Page(session.ID, session.Store().Snapshot())); err != nil {
		log.Debug("client disconnected before snapshot")
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-watcher.Ready():
			if err := h.sendChanges(w, rc, watcher.Drain, session.Store().Snapshot); err != nil {
				log.Debug("client disconnected during send")
				return
			}

		case <-heartbeat.C:
			if err := h.sessions.Touch(session.ID); err != nil {
				log.Debug("session ended while streaming", slog.String("error", err.Error()))
				return
			}
			if err := h.sendEvent(w, rc, eventHeartbeat, map[string]int64{"ts": time.Now().Unix()}); err != nil {
				log.Debug("client disconnected during heartbeat")
				return
			}

		case <-ctx.Done():
			log.Debug("event stream closed")
			return
		}
	}
}

func (h *Handler) sendChanges(w http.ResponseWriter, rc *http.ResponseController,
	drain func() ([]models.Category, bool), snapshot func() models.Snapshot) error {
	cards, hover := drain()
	snap := snapshot()

	for _, c := range cards {
		if err := h.sendEvent(w, rc, eventCard, render.Card(c, snap)); err != nil {
			return err
		}
	}
	if hover {
		glows := make(map[models.Category]models.Glow, len(models.Categories))
		for _, c := range models.Categories {
			glows[c] = render.GlowFor(snap.Hovered(c))
		}
		if err := h.sendEvent(w, rc, eventHover, map[string]any{"hover": snap.Hover, "glow": glows}); err != nil {
			return err
		}
	}
	return nil
}

// sendEvent writes one SSE frame and flushes it
func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	return rc.Flush()
}
