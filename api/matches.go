package api

import (
	"net/http"

	"github.com/garnizeh/studybuddy/internal/matches"
	"github.com/garnizeh/studybuddy/internal/session"
	"github.com/garnizeh/studybuddy/pkg/models"
)

type MatchesHandler struct {
	finder *matches.Finder
}

func NewMatchesHandler(f *matches.Finder) *MatchesHandler {
	return &MatchesHandler{finder: f}
}

type matchesResponse struct {
	Matches []models.UserProfile `json:"matches"`
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.finder.Find(r.Context(), session.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: out})
}
