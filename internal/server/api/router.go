package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every route. The two-factor routes exist only when a
// handler is supplied, mirroring the config switch: no OTP seed, no
// second factor.
func NewRouter(signupHandler *SignupHandler, sessionHandler *SessionHandler, twoFactorHandler *TwoFactorHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"login360"}`))
	})

	r.Route("/signup", func(r chi.Router) {
		r.Post("/", signupHandler.Signup)
		r.Post("/verifymail", signupHandler.VerifyMail)
	})

	r.Post("/login", sessionHandler.Login)
	r.Post("/logout", sessionHandler.Logout)
	r.Post("/changepass", sessionHandler.ChangePass)

	if twoFactorHandler != nil {
		r.Route("/twofactor", func(r chi.Router) {
			r.Post("/", twoFactorHandler.Start)
			r.Post("/entercode", twoFactorHandler.EnterCode)
		})
	}

	return r
}
