package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-audio/internal/catalog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxQueryParamLen    = 128
)

// handleHistory returns recent playback events, optionally for one sound.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.writeHistory(w, r, r.URL.Query().Get("sound"))
}

// handleSoundHistory returns recent playback events for one sound.
func (s *Server) handleSoundHistory(w http.ResponseWriter, r *http.Request) {
	s.writeHistory(w, r, chi.URLParam(r, "name"))
}

func (s *Server) writeHistory(w http.ResponseWriter, r *http.Request, name string) {
	if s.history == nil {
		writeServiceUnavailable(w, "playback history is not available")
		return
	}
	if len(name) > maxQueryParamLen {
		writeBadRequest(w, "invalid sound name")
		return
	}
	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	events, err := s.history.List(r.Context(), name, limit)
	if err != nil {
		writeInternalError(w, "failed to list history")
		return
	}
	if events == nil {
		events = []catalog.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxHistoryLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxHistoryLimit)
	}
	return n, nil
}
