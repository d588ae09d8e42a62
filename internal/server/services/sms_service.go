package services

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService delivers one-time codes through Twilio.
type SMSService struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewSMSService(accountSID, authToken, fromPhone string) *SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSService{client: client, fromPhone: fromPhone}
}

// SendCode texts the one-time code and returns the message sid.
func (s *SMSService) SendCode(phone, code string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(s.fromPhone)
	params.SetTo(phone)
	params.SetBody(fmt.Sprintf("Login360 2FA code: %s", code))

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if msg.Sid == nil {
		return "", fmt.Errorf("twilio response missing message sid")
	}
	return *msg.Sid, nil
}
