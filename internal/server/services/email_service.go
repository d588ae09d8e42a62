package services

import (
	"fmt"

	"github.com/resendlabs/resend-go"
)

// EmailService delivers signup confirmation mail through Resend.
type EmailService struct {
	client    *resend.Client
	fromEmail string
}

func NewEmailService(apiKey, fromEmail string) *EmailService {
	return &EmailService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

// SendSignupLink mails the finish-sign-up link and returns the provider
// message id.
func (s *EmailService) SendSignupLink(email, callbackURL string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: "Login360 sign-up",
		Html: fmt.Sprintf(`<p>Thank you for joining the Login360 application.</p>
			<a href="%s" title="Finish">Click here to finish sign-up</a><br/>`, callbackURL),
		// text-only clients
		Text: fmt.Sprintf("Thank you for joining the Login360 application.\nUse this URL to finish sign-up: %s", callbackURL),
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}
