package api

import (
	"net/http"

	"github.com/login360/login360/internal/server/services"
	"github.com/login360/login360/pkg/models"
)

type SignupHandler struct {
	signupService *services.SignupService
}

func NewSignupHandler(signupService *services.SignupService) *SignupHandler {
	return &SignupHandler{signupService: signupService}
}

// Signup parks a pending registration and mails the verification link.
// Responds with the mail provider's message id.
func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.signupService.Signup(req.Email, req.Passwd)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MessageIDResponse{ID: id})
}

// VerifyMail finishes a sign-up from the e-mailed secret and responds with
// the new session token.
func (h *SignupHandler) VerifyMail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyMailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	auth, err := h.signupService.Verify(req.Verify)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.AuthResponse{Auth: auth})
}
