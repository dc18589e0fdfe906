package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arsalan-rana/cricket-bracket/middleware"
	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/services"
)

type BonusHandler struct {
	cfg         *models.TournamentConfig
	submissions *services.SubmissionService
	results     *services.ResultService
}

func NewBonusHandler(cfg *models.TournamentConfig, submissions *services.SubmissionService, results *services.ResultService) *BonusHandler {
	return &BonusHandler{cfg: cfg, submissions: submissions, results: results}
}

func (h *BonusHandler) Questions(w http.ResponseWriter, r *http.Request) {
	response := jsonResponse{
		"enabled":   h.cfg.Features.BonusQuestionsEnabled,
		"questions": h.cfg.BonusQuestions,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type saveBonusInput struct {
	Answers map[string]string `json:"answers"`
}

func (h *BonusHandler) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input saveBonusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Answers) == 0 {
		badRequestResponse(w, r, errors.New("answers must not be empty"))
		return
	}

	if err := h.submissions.SaveBonusAnswers(r.Context(), user, input.Answers); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"saved": len(input.Answers)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BonusHandler) Answers(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	answers, err := h.submissions.BonusAnswers(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"answers": answers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type actualAnswerInput struct {
	Answer string `json:"answer"`
}

// SetActualAnswer записывает официальный ответ на бонусный вопрос. Только для админа.
func (h *BonusHandler) SetActualAnswer(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	questionID := chi.URLParam(r, "question")

	var input actualAnswerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Answer == "" {
		badRequestResponse(w, r, errors.New("answer is required"))
		return
	}

	if err := h.results.SetBonusAnswer(r.Context(), questionID, input.Answer, admin); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"question": questionID, "answer": input.Answer}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
