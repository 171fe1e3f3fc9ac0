package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-audio/internal/host"
)

// healthTimeout bounds the dependency checks behind /health.
const healthTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/sounds", func(r chi.Router) {
			r.Get("/", s.handleListSounds)
			r.Post("/", s.handleCreateSound)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetSound)
				r.Patch("/", s.handleUpdateSound)
				r.Delete("/", s.handleDeleteSound)
				r.Post("/commands", s.handleSoundCommand)
				r.Post("/play", s.handleShortcut("play"))
				r.Post("/stop", s.handleShortcut("stop"))
				r.Post("/pause", s.handleShortcut("pause"))
				r.Post("/mute", s.handleShortcut("mute"))
				r.Get("/history", s.handleSoundHistory)
			})
		})

		r.Route("/buses", func(r chi.Router) {
			r.Get("/", s.handleListBuses)
			r.Put("/{bus}/{param}", s.handleSetBusParam)
			r.Delete("/{bus}/{param}", s.handleResetBusParam)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.handleListNodes)
			r.Post("/", s.handleCreateNode)
			r.Put("/{id}", s.handleMoveNode)
			r.Delete("/{id}", s.handleDeleteNode)
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", s.handleListMedia)
			r.Delete("/cache", s.handleFlushMedia)
		})

		r.Get("/history", s.handleHistory)
		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

// wsPath returns the configured WebSocket route under /api/v1.
func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// handleHealth reports the loop state and the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loop := s.loop.Stats()
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"loop":    loop.Status,
	}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.db.HealthCheck(ctx); err != nil {
			resp["database"] = err.Error()
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}
	if loop.Status != host.StatusRunning {
		resp["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
