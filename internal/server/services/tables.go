package services

import (
	"fmt"
	"time"

	"github.com/login360/login360/internal/server/storage"
	"github.com/login360/login360/pkg/models"
	"github.com/login360/login360/pkg/utils"
)

// Table names. Both tables live in the injected Store for the process
// lifetime and are shared by every flow.
const (
	TablePending = "pending"
	TableUsers   = "users"
)

func openPending(st *storage.Store) *storage.Table {
	pending := st.Open(TablePending)
	pending.Index("uname")
	pending.Index("secret")
	return pending
}

func openUsers(st *storage.Store) *storage.Table {
	users := st.Open(TableUsers)
	users.Index("uname")
	users.Index("auth")
	return users
}

// issueToken digests a fresh session token and stores it on the user row.
// Call inside a store Atomic region.
func issueToken(salt string, users *storage.Table, id int64, now time.Time) (string, error) {
	token := utils.Digest(salt, fmt.Sprintf("%d--%d", now.UnixMilli(), id))
	if err := users.Update(id, storage.Record{"auth": token}); err != nil {
		return "", fmt.Errorf("%w: issue token: %v", ErrStore, err)
	}
	return token, nil
}

// resolveAuth maps a bearer token to the single user row holding it. Call
// inside a store Atomic region.
func resolveAuth(users *storage.Table, token string) (models.User, error) {
	if !utils.IsHexSecret(token) {
		return models.User{}, ErrUnauthorized
	}
	row, err := users.Current(token, "auth")
	if err != nil {
		return models.User{}, ErrUnauthorized
	}
	return models.UserFromRecord(row), nil
}
