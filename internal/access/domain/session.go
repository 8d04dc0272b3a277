package domain

import "time"

// TokenStorageKey is the key under which the client keeps its session token.
const TokenStorageKey = "auth_token"

// SessionState is the lifecycle state of the client session.
type SessionState string

const (
	SessionLoggedOut SessionState = "logged_out"
	SessionLoggedIn  SessionState = "logged_in"
)

// Session binds a token to a resolved subject on one client.
type Session struct {
	Token     string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt *time.Time // nil means the token never expires
}
