package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arsalan-rana/cricket-bracket/middleware"
	"github.com/arsalan-rana/cricket-bracket/services"
)

type SubmissionHandler struct {
	submissions *services.SubmissionService
}

func NewSubmissionHandler(submissions *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Save принимает черновик или финальный сабмит пиков текущей фазы.
func (h *SubmissionHandler) Save(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.SaveInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.User = user

	result, err := h.submissions.Save(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SubmissionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	state, err := h.submissions.Status(r.Context(), user, chi.URLParam(r, "phase"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, state, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SubmissionHandler) Picks(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	picks, err := h.submissions.Picks(r.Context(), user, chi.URLParam(r, "phase"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": picks}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeDrafts переводит все черновики фазы в SUBMITTED. Только для админа.
func (h *SubmissionHandler) FinalizeDrafts(w http.ResponseWriter, r *http.Request) {
	finalized, err := h.submissions.FinalizeDrafts(r.Context(), chi.URLParam(r, "phase"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"finalized": len(finalized),
		"users":     finalized,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
