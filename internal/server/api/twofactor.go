package api

import (
	"net/http"

	"github.com/login360/login360/internal/server/services"
	"github.com/login360/login360/pkg/models"
)

type TwoFactorHandler struct {
	twoFactorService *services.TwoFactorService
}

func NewTwoFactorHandler(twoFactorService *services.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactorService: twoFactorService}
}

// Start begins a second-factor login: credentials in, one-time code out by
// SMS. Responds with the SMS provider's message sid.
func (h *TwoFactorHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.TwoFactorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.twoFactorService.Start(req.Uname, req.Passwd, req.Phone)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MessageIDResponse{ID: id})
}

// EnterCode finishes a second-factor login and responds with the session
// token.
func (h *TwoFactorHandler) EnterCode(w http.ResponseWriter, r *http.Request) {
	var req models.EnterCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	auth, err := h.twoFactorService.Complete(req.Uname, req.Otp)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.AuthResponse{Auth: auth})
}
