package handlers

import (
	"net/http"

	"github.com/arsalan-rana/cricket-bracket/middleware"
	"github.com/arsalan-rana/cricket-bracket/services"
)

type ChipHandler struct {
	chips *services.ChipService
}

func NewChipHandler(chips *services.ChipService) *ChipHandler {
	return &ChipHandler{chips: chips}
}

func (h *ChipHandler) ActivateDoubleUp(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	match, err := getMatchFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activation, err := h.chips.ActivateDoubleUp(r.Context(), user, match)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, activation, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChipHandler) ActivateWildcard(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	match, err := getMatchFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activation, err := h.chips.ActivateWildcard(r.Context(), user, match)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, activation, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterWildcard повторяет только запись слота после частичного сбоя.
func (h *ChipHandler) RegisterWildcard(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	match, err := getMatchFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.chips.RegisterWildcard(r.Context(), user, match); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registered": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChipHandler) Usage(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserNameFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	usage, err := h.chips.Usage(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"chips": usage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
