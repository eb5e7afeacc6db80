package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tripsplit/internal/core"
)

type peopleResponse struct {
	People []string `json:"people"`
}

type personRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, peopleResponse{People: s.manager.People()})
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.manager.AddPerson(r.Context(), sanitizeInput(req.Name)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, peopleResponse{People: s.manager.People()})
}

// handleRemovePerson drops a roster member. Their expense records stay
// in the ledger.
func (s *Server) handleRemovePerson(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.manager.RemovePerson(r.Context(), name); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, peopleResponse{People: s.manager.People()})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := core.Categories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	respondJSON(w, http.StatusOK, map[string][]string{"categories": names})
}
