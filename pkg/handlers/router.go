package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the page, the session API and static assets
func NewRouter(h *Handler, publicDir string, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.GalleryHandler)
	r.Get("/healthz", h.HealthHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(publicDir))))

	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/", h.SessionHandler)
		r.Delete("/", h.CloseSessionHandler)
		// sendBeacon on page unload can only POST.
		r.Post("/close", h.CloseSessionHandler)
		r.Get("/events", h.EventsHandler)
		r.Put("/hover", h.HoverHandler)
		r.Post("/cards/{category}/refresh", h.RefreshHandler)
	})

	return r
}

// requestLogger logs each request through slog once it completes
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("took", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
