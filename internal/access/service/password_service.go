package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/roleguard/internal/errors"
)

// passwordService implements PasswordService with Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// HashPassword hashes a plain text password.
func (p *passwordService) HashPassword(plainPassword string) (string, error) {
	hashed, err := p.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// ComparePassword verifies a password in constant time. Malformed hashes never match.
func (p *passwordService) ComparePassword(plainPassword string, hashedPassword string) bool {
	if hashedPassword == "" {
		return false
	}
	ok, err := p.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a PasswordService using the moderate Argon2id policy.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		// Only reachable with an invalid built-in policy.
		panic(err)
	}

	return &passwordService{hasher: hasher}
}
