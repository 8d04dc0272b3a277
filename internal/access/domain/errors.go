package domain

import (
	"fmt"

	apperrors "github.com/allisson/roleguard/internal/errors"
)

// Authorization domain errors.
var (
	// ErrInvalidToken indicates an empty, malformed, revoked or unverifiable token.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

	// ErrSubjectNotFound indicates no subject maps to the token or identifier.
	ErrSubjectNotFound = apperrors.Wrap(apperrors.ErrNotFound, "subject not found")

	// ErrSubjectAlreadyExists indicates a subject with the same e-mail exists.
	ErrSubjectAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "subject already exists")

	// ErrIdentityProvider indicates the external identity provider failed.
	ErrIdentityProvider = apperrors.Wrap(apperrors.ErrUnavailable, "identity provider error")

	// ErrInvalidCredentials indicates a failed e-mail/password check.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidCode indicates an unknown, expired or already used authorization code.
	ErrInvalidCode = fmt.Errorf("invalid authorization code: %w (%w)", apperrors.ErrUnauthorized, ErrIdentityProvider)

	// ErrUnknownRole indicates a role value outside the registry.
	ErrUnknownRole = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown role")

	// ErrEmptyAccessList indicates a resource definition with no valid role.
	ErrEmptyAccessList = apperrors.Wrap(apperrors.ErrInvalidInput, "empty access list")

	// ErrUnknownResourceType indicates a resource type outside the known set.
	ErrUnknownResourceType = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown resource type")

	// ErrResourceNotFound indicates the resource is not in the catalog.
	ErrResourceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "resource not found")

	// ErrNoSession indicates an operation that needs a logged-in session.
	ErrNoSession = apperrors.Wrap(apperrors.ErrUnauthorized, "no active session")

	// ErrResourceAlreadyExists indicates a resource with the same ID is registered.
	ErrResourceAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "resource already exists")
)
