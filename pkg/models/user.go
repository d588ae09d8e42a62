package models

import "github.com/login360/login360/internal/server/storage"

// User is a typed view over a row in the "users" table. An empty Auth
// means logged out; a non-empty Preauth means a second-factor login is in
// flight and Auth is staged there until the code is entered.
type User struct {
	ID      int64
	Email   string
	Uname   string
	Passwd  string
	Auth    string
	Preauth string
	Phone   string
}

func UserFromRecord(r storage.Record) User {
	return User{
		ID:      asInt64(r["id"]),
		Email:   asString(r["email"]),
		Uname:   asString(r["uname"]),
		Passwd:  asString(r["passwd"]),
		Auth:    asString(r["auth"]),
		Preauth: asString(r["preauth"]),
		Phone:   asString(r["phone"]),
	}
}

// PendingSignup is a typed view over a row in the "pending" table: a
// sign-up waiting for its e-mailed secret to come back.
type PendingSignup struct {
	ID      int64
	Email   string
	Uname   string
	Passwd  string
	Secret  string
	Created int64 // epoch milliseconds
}

func PendingSignupFromRecord(r storage.Record) PendingSignup {
	return PendingSignup{
		ID:      asInt64(r["id"]),
		Email:   asString(r["email"]),
		Uname:   asString(r["uname"]),
		Passwd:  asString(r["passwd"]),
		Secret:  asString(r["secret"]),
		Created: asInt64(r["created"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	n, _ := v.(int64)
	return n
}
