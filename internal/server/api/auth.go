package api

import (
	"net/http"

	"github.com/login360/login360/internal/server/services"
	"github.com/login360/login360/pkg/models"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	auth, err := h.sessionService.Login(req.Uname, req.Passwd)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.AuthResponse{Auth: auth})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionService.Logout(req.Auth); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.DoneResponse{Done: 1})
}

func (h *SessionHandler) ChangePass(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePassRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionService.ChangePassword(req.Auth, req.Uname, req.Oldpass, req.Newpass); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.DoneResponse{Done: 1})
}
