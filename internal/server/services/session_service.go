package services

import (
	"fmt"
	"time"

	"github.com/login360/login360/internal/server/config"
	"github.com/login360/login360/internal/server/storage"
	"github.com/login360/login360/pkg/models"
	"github.com/login360/login360/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// SessionService runs login, logout and password change over the users
// table.
type SessionService struct {
	store *storage.Store
	users *storage.Table
	cfg   config.Config
	now   nowFunc
}

func NewSessionService(st *storage.Store, cfg config.Config) *SessionService {
	return &SessionService{
		store: st,
		users: openUsers(st),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Login exchanges username and password for a fresh session token. An
// already-active session is only warned about; its token is invalidated by
// the overwrite.
func (s *SessionService) Login(uname, password string) (string, error) {
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

	// bcrypt runs outside the store lock
	if !utils.CheckPassword(user.Passwd, password) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPassword, uname)
	}
	if user.Auth != "" {
		log.WithField("uname", uname).Warn("login while a session is active, previous token is invalidated")
	}

	var token string
	err = s.store.Atomic(func() error {
		var errTok error
		token, errTok = issueToken(s.cfg.Salt, s.users, user.ID, s.now())
		return errTok
	})
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{"id": user.ID, "uname": uname}).Info("login")
	return token, nil
}

// Logout clears the session owning the presented token.
func (s *SessionService) Logout(token string) error {
	return s.store.Atomic(func() error {
		user, err := resolveAuth(s.users, token)
		if err != nil {
			return err
		}
		if errUpd := s.users.Update(user.ID, storage.Record{"auth": ""}); errUpd != nil {
			return fmt.Errorf("%w: clear auth: %v", ErrStore, errUpd)
		}
		log.WithField("id", user.ID).Info("logout")
		return nil
	})
}

// ChangePassword re-authenticates and rotates the stored password hash.
// The bearer token must belong to the very account named by uname; a token
// cannot rotate someone else's password.
func (s *SessionService) ChangePassword(token, uname, oldPassword, newPassword string) error {
	var target models.User
	err := s.store.Atomic(func() error {
		principal, errAuth := resolveAuth(s.users, token)
		if errAuth != nil {
			return errAuth
		}
		minl := s.cfg.MinLength
		if len(uname) < minl || len(oldPassword) < minl || len(newPassword) < minl {
			return ErrInvalidInput
		}
		row, errCur := s.users.Current(uname, "uname")
		if errCur != nil {
			return fmt.Errorf("%w: %s", ErrNotFound, uname)
		}
		target = models.UserFromRecord(row)
		if target.ID != principal.ID {
			return fmt.Errorf("%w: token does not own %s", ErrUnauthorized, uname)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !utils.CheckPassword(target.Passwd, oldPassword) {
		return fmt.Errorf("%w: %s", ErrInvalidPassword, uname)
	}
	hash, errHash := utils.HashPassword(newPassword)
	if errHash != nil {
		return fmt.Errorf("%w: hash password: %v", ErrStore, errHash)
	}

	err = s.store.Atomic(func() error {
		if errUpd := s.users.Update(target.ID, storage.Record{"passwd": hash}); errUpd != nil {
			return fmt.Errorf("%w: update passwd: %v", ErrStore, errUpd)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("uname", uname).Info("password changed")
	return nil
}
