package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/login360/login360/internal/server/config"
	"github.com/login360/login360/internal/server/storage"
	"github.com/login360/login360/pkg/models"
	"github.com/login360/login360/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// SignupService runs the sign-up and e-mail verification flow over the
// pending and users tables.
type SignupService struct {
	store   *storage.Store
	pending *storage.Table
	users   *storage.Table
	mailer  Mailer
	cfg     config.Config
	now     nowFunc
}

func NewSignupService(st *storage.Store, mailer Mailer, cfg config.Config) *SignupService {
	return &SignupService{
		store:   st,
		pending: openPending(st),
		users:   openUsers(st),
		mailer:  mailer,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Signup validates the request, parks a pending registration and mails the
// single-use verification link. Returns the mail provider's message id.
// The pending row stays in place even when delivery fails; the user can
// only resubmit.
func (s *SignupService) Signup(email, password string) (string, error) {
	if len(password) < s.cfg.MinLength || len(email) < s.cfg.MinLength {
		return "", ErrInvalidInput
	}
	if !utils.IsValidEmail(email) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	uname := email // this app keys accounts by e-mail address

	hash, errHash := utils.HashPassword(password)
	if errHash != nil {
		return "", fmt.Errorf("%w: hash password: %v", ErrStore, errHash)
	}

	var secret string
	err := s.store.Atomic(func() error {
		if s.pending.Exists(uname, "") || s.users.Exists(uname, "") {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, uname)
		}
		tnow := s.now().UnixMilli()
		secret = utils.Digest(s.cfg.Salt, email+strconv.FormatInt(tnow, 10))
		_, errIns := s.pending.Insert(storage.Record{
			"email":   email,
			"uname":   uname,
			"passwd":  hash,
			"secret":  secret,
			"created": tnow,
		})
		if errIns != nil {
			return fmt.Errorf("%w: insert pending: %v", ErrStore, errIns)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.WithField("email", email).Info("signup")

	// delivery happens after the pending row is committed
	id, errSend := s.mailer.SendSignupLink(email, s.cfg.TargetURL+secret)
	if errSend != nil {
		log.WithError(errSend).WithField("email", email).Error("send signup e-mail failed")
		return "", fmt.Errorf("%w: send e-mail", ErrDeliveryFailed)
	}
	return id, nil
}

// Verify exchanges the e-mailed secret for a confirmed account and an
// active session token. The secret is consumed: a second verify with the
// same value fails not-found. Expired or username-colliding attempts leave
// the pending row in place.
func (s *SignupService) Verify(secret string) (string, error) {
	if !utils.IsHexSecret(secret) {
		return "", fmt.Errorf("%w: malformed secret", ErrInvalidInput)
	}

	var token string
	var uname string
	err := s.store.Atomic(func() error {
		row, errCur := s.pending.Current(secret, "secret")
		if errCur != nil {
			return fmt.Errorf("%w: verification", ErrNotFound)
		}
		cur := models.PendingSignupFromRecord(row)
		uname = cur.Uname
		if !s.withinVerifyWindow(cur.Created) {
			return fmt.Errorf("%w: %s", ErrExpired, cur.Uname)
		}
		if s.users.Exists(cur.Uname, "") {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, cur.Uname)
		}
		if errRem := s.pending.Remove(cur.ID); errRem != nil {
			return fmt.Errorf("%w: remove pending: %v", ErrStore, errRem)
		}
		newID, errIns := s.users.Insert(storage.Record{
			"email":  cur.Email,
			"uname":  cur.Uname,
			"passwd": cur.Passwd,
			"auth":   "",
		})
		if errIns != nil {
			return fmt.Errorf("%w: insert user: %v", ErrStore, errIns)
		}
		var errTok error
		token, errTok = issueToken(s.cfg.Salt, s.users, newID, s.now())
		return errTok
	})
	if err != nil {
		return "", err
	}

	log.WithField("uname", uname).Info("signup verified")
	return token, nil
}

// CleanupExpiredPending removes pending sign-ups whose verification window
// has elapsed and reports how many went. Verify performs its own
// elapsed-time check; this only stops abandoned rows from piling up.
func (s *SignupService) CleanupExpiredPending() int {
	if s.cfg.VerifyTimeout == 0 {
		return 0
	}
	removed := 0
	s.store.Atomic(func() error {
		for _, row := range s.pending.All() {
			cur := models.PendingSignupFromRecord(row)
			if s.withinVerifyWindow(cur.Created) {
				continue
			}
			if errRem := s.pending.Remove(cur.ID); errRem != nil {
				log.WithError(errRem).WithField("id", cur.ID).Warn("reap pending row failed")
				continue
			}
			removed++
		}
		return nil
	})
	if removed > 0 {
		log.WithField("count", removed).Info("reaped expired pending sign-ups")
	}
	return removed
}

// withinVerifyWindow reports whether a pending row created at the given
// epoch-millisecond stamp is still verifiable. A zero VerifyTimeout
// disables expiry altogether.
func (s *SignupService) withinVerifyWindow(created int64) bool {
	if s.cfg.VerifyTimeout == 0 {
		return true
	}
	if created <= 0 {
		return false
	}
	return s.now().UnixMilli() < created+int64(s.cfg.VerifyTimeout)*1000
}
