package domain

import (
	"strings"
	"time"
)

// Subject is an authenticated caller with a role and an active flag.
type Subject struct {
	ID           string    // Opaque identifier (UUIDv7 for locally created subjects)
	Email        string    // Login e-mail, unique
	DisplayName  string    // Human-readable name
	AvatarURL    string    // Optional avatar location
	Role         Role      // Access level used by the decision engine
	IsActive     bool      // Disabled subjects are denied everything
	PasswordHash string    //nolint:gosec // argon2id hash, only used by the local identity provider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Anonymous is the explicit "no session" subject. Callers compare against it
// (or nil) instead of treating a missing session as an error.
var Anonymous *Subject

// IsAnonymous reports whether s represents the absence of a session.
func IsAnonymous(s *Subject) bool {
	return s == nil
}

// Clone returns a snapshot copy so cached subjects cannot be mutated through
// values handed to callers.
func (s *Subject) Clone() *Subject {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// StatusFilter selects subjects by their active flag.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// SubjectFilter narrows the admin subject listing.
type SubjectFilter struct {
	Query  string       // Case-insensitive match on display name or email
	Role   Role         // Empty means any role
	Status StatusFilter // Empty behaves like StatusAll
}

// Matches reports whether the subject satisfies every filter criterion.
func (f SubjectFilter) Matches(s *Subject) bool {
	if s == nil {
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(s.DisplayName), q) &&
			!strings.Contains(strings.ToLower(s.Email), q) {
			return false
		}
	}

	if f.Role != "" && s.Role != f.Role {
		return false
	}

	switch f.Status {
	case StatusActive:
		return s.IsActive
	case StatusInactive:
		return !s.IsActive
	default:
		return true
	}
}

// CreateSubjectInput contains the parameters for creating a subject account.
type CreateSubjectInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        string
	IsActive    bool
}

// UpdateProfileInput contains the display fields a subject may change on
// their own profile. Role and status are admin-only.
type UpdateProfileInput struct {
	DisplayName string
	AvatarURL   string
}
