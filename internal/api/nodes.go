package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-audio/internal/host"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

type nodeRequest struct {
	ID       sound.NodeID `json:"id"`
	Parent   sound.NodeID `json:"parent"`
	Position sound.Vec3   `json:"position"`
}

// handleListNodes returns the scene tree.
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	if s.scene == nil {
		writeServiceUnavailable(w, "scene is not available")
		return
	}
	var nodes []host.Node
	if !s.do(w, r, func() { nodes = s.scene.Nodes() }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes, "count": len(nodes)})
}

// handleCreateNode adds a named node sounds can attach to.
func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	if s.scene == nil {
		writeServiceUnavailable(w, "scene is not available")
		return
	}
	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var (
		err  error
		node host.Node
	)
	if !s.do(w, r, func() {
		if err = s.scene.AddNode(req.ID, req.Parent, req.Position); err == nil {
			node, _ = s.scene.Node(req.ID)
		}
	}) {
		return
	}
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// handleMoveNode changes a node's position.
func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	if s.scene == nil {
		writeServiceUnavailable(w, "scene is not available")
		return
	}
	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	id := sound.NodeID(chi.URLParam(r, "id"))

	var (
		err  error
		node host.Node
	)
	if !s.do(w, r, func() {
		if err = s.scene.MoveNode(id, req.Position); err == nil {
			node, _ = s.scene.Node(id)
		}
	}) {
		return
	}
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// handleDeleteNode removes a node and everything below it.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if s.scene == nil {
		writeServiceUnavailable(w, "scene is not available")
		return
	}
	id := sound.NodeID(chi.URLParam(r, "id"))

	var err error
	if !s.do(w, r, func() { err = s.scene.RemoveNode(id) }) {
		return
	}
	if err != nil {
		writeNodeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeNodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, host.ErrNodeNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, host.ErrNodeExists):
		writeConflict(w, err.Error())
	default:
		writeBadRequest(w, err.Error())
	}
}
