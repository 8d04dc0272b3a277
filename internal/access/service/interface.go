// Package service provides the pure authorization services: the resource
// classifier and the decision engine. Neither performs I/O or keeps mutable
// state, so both are safe for concurrent use.
package service

import (
	"context"

	"github.com/allisson/roleguard/internal/access/domain"
)

// ResourceClassifier derives the allow-list and sensitivity of a resource at
// registration time.
type ResourceClassifier interface {
	// Classify validates declaredAccessList against the role registry and
	// returns the required role set and sensitivity flag for resourceType.
	//
	// Unknown roles are dropped and reported as WarningUnknownRoleDropped.
	// Returns ErrUnknownResourceType for an unknown type and ErrEmptyAccessList
	// when no valid role remains; warnings are still returned in that case.
	Classify(resourceType string, declaredAccessList []string) (domain.Classification, error)
}

// DecisionEngine is the sole authority for ALLOW/DENY.
type DecisionEngine interface {
	// Decide evaluates subject against resource. A nil subject is anonymous.
	Decide(subject *domain.Subject, resource domain.Resource) domain.AccessDecision

	// Filter returns the resources subject may access, preserving order.
	Filter(subject *domain.Subject, resources []domain.Resource) []domain.Resource

	// DecideAll evaluates every resource concurrently. decisions[i] belongs to
	// resources[i]. Returns the context error if ctx is cancelled first.
	DecideAll(
		ctx context.Context,
		subject *domain.Subject,
		resources []domain.Resource,
	) ([]domain.AccessDecision, error)
}

// PasswordService hashes and verifies subject passwords.
type PasswordService interface {
	// HashPassword hashes a plain text password using Argon2id.
	HashPassword(plainPassword string) (string, error)

	// ComparePassword reports whether the plain password matches the hash.
	ComparePassword(plainPassword string, hashedPassword string) bool
}

// CodeService generates one-time authorization codes and their lookup hashes.
type CodeService interface {
	// GenerateCode returns a random code and its SHA-256 hash. Only the hash is stored.
	GenerateCode() (plainCode string, codeHash string, err error)

	// HashCode hashes a plain code the same way GenerateCode does.
	HashCode(plainCode string) string
}
