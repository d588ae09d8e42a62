package services

import "errors"

// Flow errors. The API layer maps these to HTTP statuses; anything
// wrapping ErrStore or ErrDeliveryFailed is a 500, ErrUnauthorized a 401,
// the rest client faults.
var (
	ErrInvalidInput    = errors.New("invalid values")
	ErrInvalidEmail    = errors.New("invalid e-mail")
	ErrUsernameTaken   = errors.New("username exists")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("required auth")
	ErrExpired         = errors.New("verification timeout")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidCode     = errors.New("one-time code is invalid")
	ErrDeliveryFailed  = errors.New("delivery failed")
	ErrStore           = errors.New("store failure")
)
