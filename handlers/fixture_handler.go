package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/arsalan-rana/cricket-bracket/middleware"
	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/services"
	"github.com/arsalan-rana/cricket-bracket/tournament"
)

type FixtureHandler struct {
	cfg     *models.TournamentConfig
	results *services.ResultService
}

func NewFixtureHandler(cfg *models.TournamentConfig, results *services.ResultService) *FixtureHandler {
	return &FixtureHandler{cfg: cfg, results: results}
}

// List отдаёт расписание и текущую фазу вместе с дедлайнами.
func (h *FixtureHandler) List(w http.ResponseWriter, r *http.Request) {
	deadlines, err := tournament.Deadlines(h.cfg)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	current, err := tournament.CurrentPhase(h.cfg, time.Now())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"tournament": h.cfg.Name,
		"phases":     h.cfg.Phases,
		"fixtures":   h.cfg.Fixtures,
		"deadlines":  deadlines,
	}
	if current != nil {
		response["current_phase"] = current.ID
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateFixtureInput struct {
	Winner string `json:"winner"`
}

// UpdateWinner фиксирует исход матча. Только для админа.
func (h *FixtureHandler) UpdateWinner(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	match, err := getMatchFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateFixtureInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Winner == "" {
		badRequestResponse(w, r, errors.New("winner is required"))
		return
	}

	if err := h.results.SetWinner(r.Context(), match, input.Winner, admin); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match, "winner": input.Winner}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
