package api

import "net/http"

// handleListMedia returns the playable clips under the media root.
func (s *Server) handleListMedia(w http.ResponseWriter, _ *http.Request) {
	if s.media == nil {
		writeServiceUnavailable(w, "media library is not available")
		return
	}
	clips, err := s.media.List()
	if err != nil {
		writeInternalError(w, "failed to list media")
		return
	}
	if clips == nil {
		clips = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clips":  clips,
		"count":  len(clips),
		"cached": s.media.Cached(),
	})
}

// handleFlushMedia empties the clip metadata cache.
func (s *Server) handleFlushMedia(w http.ResponseWriter, _ *http.Request) {
	if s.media == nil {
		writeServiceUnavailable(w, "media library is not available")
		return
	}
	s.media.Flush()
	w.WriteHeader(http.StatusNoContent)
}
