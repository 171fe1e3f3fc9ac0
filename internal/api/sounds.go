package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-audio/internal/bridge"
	"github.com/nerrad567/gray-logic-audio/internal/catalog"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// createSoundRequest is the body of POST /sounds. Settings default to full
// volume, normal pitch and a 2D device.
type createSoundRequest struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Settings *sound.Settings `json:"settings,omitempty"`
	Autoplay bool            `json:"autoplay"`
}

// updateSoundRequest is the body of PATCH /sounds/{name}. Absent fields
// are left unchanged.
type updateSoundRequest struct {
	Path     *string        `json:"path"`
	Volume   *float64       `json:"volume"`
	Pitch    *float64       `json:"pitch"`
	Loop     *bool          `json:"loop"`
	Mute     *bool          `json:"mute"`
	Spatial  *sound.Spatial `json:"spatial"`
	Autoplay *bool          `json:"autoplay"`
}

// handleListSounds returns the catalog and the names currently loaded in
// the engine.
func (s *Server) handleListSounds(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list sounds")
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}

	var loaded []string
	if !s.do(w, r, func() { loaded = s.cmds.Names() }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sounds": entries,
		"loaded": loaded,
		"count":  len(entries),
	})
}

// handleCreateSound stores a catalog entry and loads it into the engine.
// The entry and the engine sound are rolled back when loading or autoplay
// fails.
func (s *Server) handleCreateSound(w http.ResponseWriter, r *http.Request) {
	var req createSoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	entry := catalog.Entry{Name: req.Name, Path: req.Path, Settings: sound.DefaultSettings(), Autoplay: req.Autoplay}
	if req.Settings != nil {
		entry.Settings = *req.Settings
	}
	if err := entry.Validate(); err != nil {
		writeBadRequest(w, "name and path are required")
		return
	}

	ctx := r.Context()
	if err := s.catalog.Create(ctx, &entry); err != nil {
		if errors.Is(err, catalog.ErrExists) {
			writeConflict(w, "sound already exists")
			return
		}
		writeInternalError(w, "failed to create sound")
		return
	}

	code := sound.OK
	ok := s.do(w, r, func() {
		code = s.cmds.AddSoundFromPath(entry.Name, entry.Path, entry.Settings)
		if code != sound.OK {
			return
		}
		s.bridge.Track(entry.Name)
		if !entry.Autoplay {
			return
		}
		if code = s.cmds.Play(entry.Name, sound.Parent); code != sound.OK {
			s.bridge.Untrack(entry.Name)
			s.cmds.RemoveSound(entry.Name)
		}
	})
	if !ok || code != sound.OK {
		if err := s.catalog.Delete(ctx, entry.Name); err != nil {
			s.logger.Warn("rolling back catalog entry failed", "sound", entry.Name, "error", err)
		}
		if ok {
			writeCode(w, code)
		}
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// handleGetSound returns the live state and the catalog entry, if any.
func (s *Server) handleGetSound(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var (
		state sound.SoundState
		code  sound.Code
	)
	if !s.do(w, r, func() { state, code = s.cmds.Snapshot(name) }) {
		return
	}
	if code != sound.OK {
		writeCode(w, code)
		return
	}

	resp := map[string]any{"state": state}
	if e, err := s.catalog.Get(r.Context(), name); err == nil {
		resp["entry"] = e
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateSound changes a catalog entry and applies the change to the
// live sound. A sound that failed to load is registered again with the
// new settings.
func (s *Server) handleUpdateSound(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := r.Context()

	entry, err := s.catalog.Get(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeNotFound(w, "sound not found")
			return
		}
		writeInternalError(w, "failed to get sound")
		return
	}

	var req updateSoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	req.applyTo(entry)

	code := sound.OK
	if !s.do(w, r, func() { code = s.applyLive(entry, req) }) {
		return
	}
	if code != sound.OK {
		writeCode(w, code)
		return
	}

	if err := s.catalog.Update(ctx, entry); err != nil {
		writeInternalError(w, "failed to update sound")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (req updateSoundRequest) applyTo(e *catalog.Entry) {
	if req.Path != nil {
		e.Path = *req.Path
	}
	if req.Volume != nil {
		e.Settings.Volume = *req.Volume
	}
	if req.Pitch != nil {
		e.Settings.Pitch = *req.Pitch
	}
	if req.Loop != nil {
		e.Settings.Loop = *req.Loop
	}
	if req.Mute != nil {
		e.Settings.Mute = *req.Mute
	}
	if req.Spatial != nil {
		e.Settings.Spatial = *req.Spatial
	}
	if req.Autoplay != nil {
		e.Autoplay = *req.Autoplay
	}
}

// applyLive pushes an update to the engine. Loop goroutine only.
func (s *Server) applyLive(e *catalog.Entry, req updateSoundRequest) sound.Code {
	state, code := s.cmds.Snapshot(e.Name)
	if code == sound.DoesNotExist {
		if code = s.cmds.AddSoundFromPath(e.Name, e.Path, e.Settings); code != sound.OK {
			return code
		}
		s.bridge.Track(e.Name)
		return sound.OK
	}
	if code != sound.OK {
		return code
	}

	steps := []func() sound.Code{}
	if req.Path != nil {
		steps = append(steps, func() sound.Code { return s.cmds.ChangeClip(e.Name, sound.Parent, e.Path) })
	}
	if req.Volume != nil {
		steps = append(steps, func() sound.Code { return s.cmds.SetVolume(e.Name, sound.Parent, e.Settings.Volume) })
	}
	if req.Pitch != nil {
		steps = append(steps, func() sound.Code { return s.cmds.SetPitch(e.Name, sound.Parent, e.Settings.Pitch) })
	}
	if req.Loop != nil {
		steps = append(steps, func() sound.Code { return s.cmds.SetLoop(e.Name, sound.Parent, e.Settings.Loop) })
	}
	if req.Mute != nil && state.Parent.Muted != e.Settings.Mute {
		steps = append(steps, func() sound.Code { return s.cmds.ToggleMute(e.Name, sound.Parent) })
	}
	if req.Spatial != nil {
		steps = append(steps, func() sound.Code { return s.cmds.Set3DOptions(e.Name, sound.Parent, e.Settings.Spatial) })
	}
	for _, step := range steps {
		if code := step(); code != sound.OK {
			return code
		}
	}
	return sound.OK
}

// handleDeleteSound unloads a sound and removes its catalog entry.
func (s *Server) handleDeleteSound(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	code := sound.OK
	if !s.do(w, r, func() {
		s.bridge.Untrack(name)
		code = s.cmds.RemoveSound(name)
	}) {
		return
	}

	err := s.catalog.Delete(r.Context(), name)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNotFound):
		if code != sound.OK {
			writeCode(w, code)
			return
		}
	default:
		writeInternalError(w, "failed to delete sound")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSoundCommand runs a bridge.Command against the sound.
func (s *Server) handleSoundCommand(w http.ResponseWriter, r *http.Request) {
	var cmd bridge.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	s.execute(w, r, chi.URLParam(r, "name"), cmd)
}

// handleShortcut returns a handler running op with the selector from the
// query string.
func (s *Server) handleShortcut(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := bridge.Command{Op: op, Selector: r.URL.Query().Get("selector")}
		s.execute(w, r, chi.URLParam(r, "name"), cmd)
	}
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, name string, cmd bridge.Command) {
	var (
		res bridge.Result
		err error
	)
	if !s.do(w, r, func() { res, err = s.bridge.Execute(name, cmd) }) {
		return
	}
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if res.Code != sound.OK {
		writeCode(w, res.Code)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
