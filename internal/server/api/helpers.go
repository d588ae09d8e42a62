package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/login360/login360/internal/server/services"
	"github.com/login360/login360/pkg/models"
	log "github.com/sirupsen/logrus"
)

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}

// respondServiceError maps a flow error onto the wire: 401 for missing or
// invalid credentials, 500 for store and delivery failures (with the
// detail kept to the log), 400 for everything the client caused.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		respondErrorJSON(w, http.StatusUnauthorized, services.ErrUnauthorized.Error())
	case errors.Is(err, services.ErrStore), errors.Is(err, services.ErrDeliveryFailed):
		log.WithError(err).WithField("url", r.URL.Path).Error("request failed")
		respondErrorJSON(w, http.StatusInternalServerError, "server error")
	default:
		log.WithError(err).WithField("url", r.URL.Path).Warn("request rejected")
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
	}
}
