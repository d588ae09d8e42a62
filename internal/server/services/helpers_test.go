package services

import (
	"errors"
	"testing"
	"time"

	"github.com/login360/login360/internal/server/config"
	"github.com/login360/login360/internal/server/storage"
	"github.com/login360/login360/pkg/models"
	"github.com/login360/login360/pkg/utils"
	"github.com/stretchr/testify/require"
)

var errDeliveryDown = errors.New("provider down")

type stubMailer struct {
	id    string
	err   error
	calls int

	lastEmail string
	lastURL   string
}

func (m *stubMailer) SendSignupLink(email, callbackURL string) (string, error) {
	m.calls++
	m.lastEmail = email
	m.lastURL = callbackURL
	if m.err != nil {
		return "", m.err
	}
	return m.id, nil
}

type stubMessenger struct {
	sid   string
	err   error
	calls int

	lastPhone string
	lastCode  string
}

func (m *stubMessenger) SendCode(phone, code string) (string, error) {
	m.calls++
	m.lastPhone = phone
	m.lastCode = code
	if m.err != nil {
		return "", m.err
	}
	return m.sid, nil
}

func testConfig() config.Config {
	return config.Config{
		Salt:          "test-salt",
		TargetURL:     "https://login360.example/verify?secret=",
		MailFrom:      "noreply@login360.example",
		ResendAPIKey:  "re_test",
		OTPSeed:       "JBSWY3DPEHPK3PXP",
		OTPTimeout:    60,
		TwilioSID:     "AC123",
		TwilioToken:   "token",
		TwilioPhone:   "+15005550006",
		MinLength:     5,
		VerifyTimeout: 3600,
		Port:          9999,
	}
}

// fixedNow returns a pinnable clock; tests move it forward explicitly.
func fixedNow(at *time.Time) nowFunc {
	return func() time.Time { return *at }
}

// seedUser inserts a confirmed account straight into the users table and
// returns its id.
func seedUser(t *testing.T, st *storage.Store, uname, password, phone string) int64 {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	users := openUsers(st)
	var id int64
	err = st.Atomic(func() error {
		row := storage.Record{
			"email":  uname,
			"uname":  uname,
			"passwd": hash,
			"auth":   "",
		}
		if phone != "" {
			row["phone"] = phone
		}
		var errIns error
		id, errIns = users.Insert(row)
		return errIns
	})
	require.NoError(t, err)
	return id
}

// userByID reads one user row back out for assertions.
func userByID(t *testing.T, st *storage.Store, id int64) models.User {
	t.Helper()
	users := openUsers(st)
	var u models.User
	err := st.Atomic(func() error {
		row, errCur := users.Current(id, "id")
		if errCur != nil {
			return errCur
		}
		u = models.UserFromRecord(row)
		return nil
	})
	require.NoError(t, err)
	return u
}
