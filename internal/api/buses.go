package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type busValueRequest struct {
	Value *float64 `json:"value"`
}

// handleListBuses returns every declared bus with its exposed parameters.
func (s *Server) handleListBuses(w http.ResponseWriter, _ *http.Request) {
	if s.mixer == nil {
		writeServiceUnavailable(w, "mixer is not available")
		return
	}
	buses := s.mixer.Buses()
	writeJSON(w, http.StatusOK, map[string]any{"buses": buses, "count": len(buses)})
}

// handleSetBusParam writes an exposed bus parameter.
func (s *Server) handleSetBusParam(w http.ResponseWriter, r *http.Request) {
	if s.mixer == nil {
		writeServiceUnavailable(w, "mixer is not available")
		return
	}
	var req busValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeBadRequest(w, "body must be {\"value\": number}")
		return
	}

	bus, param := chi.URLParam(r, "bus"), chi.URLParam(r, "param")
	if !s.mixer.Set(bus, param, *req.Value) {
		writeNotFound(w, "bus parameter not exposed")
		return
	}
	v, _ := s.mixer.Get(bus, param)
	writeJSON(w, http.StatusOK, map[string]any{"bus": bus, "param": param, "value": v})
}

// handleResetBusParam restores a bus parameter's default.
func (s *Server) handleResetBusParam(w http.ResponseWriter, r *http.Request) {
	if s.mixer == nil {
		writeServiceUnavailable(w, "mixer is not available")
		return
	}
	bus, param := chi.URLParam(r, "bus"), chi.URLParam(r, "param")
	if !s.mixer.Clear(bus, param) {
		writeNotFound(w, "bus parameter not exposed")
		return
	}
	v, _ := s.mixer.Get(bus, param)
	writeJSON(w, http.StatusOK, map[string]any{"bus": bus, "param": param, "value": v})
}
