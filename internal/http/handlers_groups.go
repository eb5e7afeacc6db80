package http

import (
	"net/http"
)

type groupsResponse struct {
	Groups []string `json:"groups"`
	Active string   `json:"active"`
}

type groupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, groupsResponse{
		Groups: s.manager.Groups(),
		Active: s.manager.Active(),
	})
}

// handleCreateGroup adds an empty group and makes it active.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.manager.CreateGroup(r.Context(), sanitizeInput(req.Name)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, groupsResponse{
		Groups: s.manager.Groups(),
		Active: s.manager.Active(),
	})
}

func (s *Server) handleSwitchGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.manager.SwitchActiveGroup(r.Context(), req.Name); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, groupsResponse{
		Groups: s.manager.Groups(),
		Active: s.manager.Active(),
	})
}

// handleDeleteActiveGroup removes the active group; the first remaining
// group in creation order takes over. Deleting the sole group is a 409.
func (s *Server) handleDeleteActiveGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteActiveGroup(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, groupsResponse{
		Groups: s.manager.Groups(),
		Active: s.manager.Active(),
	})
}
