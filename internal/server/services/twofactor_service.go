package services

import (
	"fmt"
	"time"

	"github.com/login360/login360/internal/server/config"
	"github.com/login360/login360/internal/server/storage"
	"github.com/login360/login360/pkg/models"
	"github.com/login360/login360/pkg/utils"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	log "github.com/sirupsen/logrus"
)

// TwoFactorService runs the SMS second-factor login. The issued token is
// staged in preauth until the one-time code comes back; nothing about the
// code itself is persisted, both halves recompute it for the current time
// window.
type TwoFactorService struct {
	store     *storage.Store
	users     *storage.Table
	messenger Messenger
	cfg       config.Config
	now       nowFunc
}

func NewTwoFactorService(st *storage.Store, messenger Messenger, cfg config.Config) *TwoFactorService {
	return &TwoFactorService{
		store:     st,
		users:     openUsers(st),
		messenger: messenger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start authenticates the user, stages a session token in preauth and
// texts the one-time code. The phone number supplied with the request wins
// over the stored one and is saved for next time. Returns the SMS
// provider's message sid.
func (s *TwoFactorService) Start(uname, password, phone string) (string, error) {
	if len(password) < s.cfg.MinLength || len(uname) < s.cfg.MinLength {
		return "", ErrInvalidInput
	}

	var user models.User
	err := s.store.Atomic(func() error {
		row, errCur := s.users.Current(uname, "uname")
		if errCur != nil {
			return fmt.Errorf("%w: %s", ErrNotFound, uname)
		}
		user = models.UserFromRecord(row)
		return nil
	})
	if err != nil {
		return "", err
	}

	if !utils.CheckPassword(user.Passwd, password) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPassword, uname)
	}
	if user.Auth != "" {
		log.WithField("uname", uname).Warn("two-factor start while a session is active")
	}

	number := utils.SanitizePhone(phone)
	if number == "" {
		number = user.Phone
	}
	if len(number) < 9 {
		return "", ErrInvalidPhone
	}

	err = s.store.Atomic(func() error {
		token, errTok := issueToken(s.cfg.Salt, s.users, user.ID, s.now())
		if errTok != nil {
			return errTok
		}
		// stage the token; the real login happens when the code comes back
		errUpd := s.users.Update(user.ID, storage.Record{
			"preauth": token,
			"auth":    "",
			"phone":   number,
		})
		if errUpd != nil {
			return fmt.Errorf("%w: stage preauth: %v", ErrStore, errUpd)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	code, errCode := s.code(uname)
	if errCode != nil {
		return "", fmt.Errorf("%w: one-time code: %v", ErrStore, errCode)
	}

	log.WithField("uname", uname).Info("two-factor started")

	sid, errSend := s.messenger.SendCode(number, code)
	if errSend != nil {
		log.WithError(errSend).WithField("uname", uname).Error("send sms failed")
		return "", fmt.Errorf("%w: send sms", ErrDeliveryFailed)
	}
	return sid, nil
}

// Complete checks the submitted one-time code against a recomputation for
// the current window and promotes the staged token into an active session.
// A wrong code leaves auth and preauth untouched.
func (s *TwoFactorService) Complete(uname, code string) (string, error) {
	if len(uname) < s.cfg.MinLength {
		return "", fmt.Errorf("%w: username", ErrInvalidInput)
	}
	if !utils.IsOneTimeCode(code) {
		return "", fmt.Errorf("%w: one-time code must be 6 digits", ErrInvalidInput)
	}

	var token string
	err := s.store.Atomic(func() error {
		row, errCur := s.users.Current(uname, "uname")
		if errCur != nil {
			return fmt.Errorf("%w: %s", ErrNotFound, uname)
		}
		user := models.UserFromRecord(row)
		if user.Preauth == "" {
			return fmt.Errorf("%w: missing preauth", ErrUnauthorized)
		}

		want, errCode := s.code(uname)
		if errCode != nil {
			return fmt.Errorf("%w: one-time code: %v", ErrStore, errCode)
		}
		if code != want {
			return ErrInvalidCode
		}

		errUpd := s.users.Update(user.ID, storage.Record{
			"auth":    user.Preauth,
			"preauth": "",
		})
		if errUpd != nil {
			return fmt.Errorf("%w: promote preauth: %v", ErrStore, errUpd)
		}
		token = user.Preauth
		return nil
	})
	if err != nil {
		return "", err
	}

	log.WithField("uname", uname).Info("two-factor completed")
	return token, nil
}

// code computes the rolling one-time code for uname: TOTP over the shared
// seed extended with the normalized username, 6 digits, one period per
// configured window.
func (s *TwoFactorService) code(uname string) (string, error) {
	secret := s.cfg.OTPSeed + utils.NormalizeBase32(uname)
	return totp.GenerateCodeCustom(secret, s.now(), totp.ValidateOpts{
		Period:    uint(s.cfg.OTPTimeout),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
