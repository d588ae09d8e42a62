package services

import "time"

// Mailer delivers the signup confirmation e-mail carrying the callback URL
// and returns the provider's message id. Implemented by EmailService;
// tests substitute a stub.
type Mailer interface {
	SendSignupLink(email, callbackURL string) (string, error)
}

// Messenger delivers a one-time code over SMS and returns the provider's
// message sid. Implemented by SMSService; tests substitute a stub.
type Messenger interface {
	SendCode(phone, code string) (string, error)
}

// nowFunc lets tests pin the clock. Flows default to time.Now.
type nowFunc func() time.Time
