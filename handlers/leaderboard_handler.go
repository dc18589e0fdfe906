package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arsalan-rana/cricket-bracket/services"
)

type LeaderboardHandler struct {
	scoring  *services.ScoringService
	activity *services.ActivityFeed
}

func NewLeaderboardHandler(scoring *services.ScoringService, activity *services.ActivityFeed) *LeaderboardHandler {
	return &LeaderboardHandler{scoring: scoring, activity: activity}
}

func (h *LeaderboardHandler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.scoring.Leaderboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PhaseScores отдаёт разбивку очков по конкретной фазе.
func (h *LeaderboardHandler) PhaseScores(w http.ResponseWriter, r *http.Request) {
	phaseID := chi.URLParam(r, "phase")

	scores, ok := h.scoring.PhaseScores(phaseID)
	if !ok {
		notFoundResponse(w, r)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phase": phaseID, "scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Recompute пересчитывает все фазы. Только для админа.
func (h *LeaderboardHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	if err := h.scoring.RecomputeAll(r.Context()); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"recomputed": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeaderboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activity.Recent(r.Context(), 50)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"activity": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
