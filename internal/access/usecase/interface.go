// Package usecase orchestrates subject resolution, the client session, the
// resource catalog and the subject directory on top of the access services.
package usecase

import (
	"context"

	"github.com/allisson/roleguard/internal/access/domain"
)

// IdentityProvider is the external collaborator that owns tokens.
// Failures wrap domain.ErrIdentityProvider, except the typed
// domain.ErrInvalidToken and domain.ErrSubjectNotFound.
type IdentityProvider interface {
	// ExchangeCodeForToken trades a one-time authorization code for a bearer token.
	ExchangeCodeForToken(ctx context.Context, code string) (string, error)

	// FetchSubject returns the subject the token belongs to.
	FetchSubject(ctx context.Context, token string) (*domain.Subject, error)
}

// TokenStore persists the client session token under domain.TokenStorageKey.
type TokenStore interface {
	// Load returns the stored token. ok is false when nothing is stored.
	Load(ctx context.Context) (token string, ok bool, err error)

	Save(ctx context.Context, token string) error

	// Delete removes the stored token. Deleting an absent token is not an error.
	Delete(ctx context.Context) error
}

// SubjectRepository defines persistence operations for subjects.
type SubjectRepository interface {
	// Create stores a new subject. Returns ErrSubjectAlreadyExists on duplicate e-mail.
	Create(ctx context.Context, subject *domain.Subject) error

	// Update replaces a stored subject. Returns ErrSubjectNotFound if missing.
	Update(ctx context.Context, subject *domain.Subject) error

	// Get retrieves a subject by ID. Returns ErrSubjectNotFound if missing.
	Get(ctx context.Context, subjectID string) (*domain.Subject, error)

	// GetByEmail retrieves a subject by e-mail. Returns ErrSubjectNotFound if missing.
	GetByEmail(ctx context.Context, email string) (*domain.Subject, error)

	// List returns subjects matching the filter ordered by creation time.
	List(ctx context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error)
}

// ResourceRepository defines persistence operations for protected resources.
type ResourceRepository interface {
	// Create stores a new resource. Returns ErrResourceAlreadyExists on duplicate ID.
	Create(ctx context.Context, resource *domain.Resource) error

	// Get retrieves a resource by ID. Returns ErrResourceNotFound if missing.
	Get(ctx context.Context, resourceID string) (*domain.Resource, error)

	// List returns resources matching the filter in registration order.
	List(ctx context.Context, filter domain.ResourceFilter) ([]domain.Resource, error)
}

// CacheInvalidator drops cached subject snapshots after a subject mutation.
type CacheInvalidator interface {
	Invalidate()
}

// SubjectResolver turns bearer tokens into subjects.
type SubjectResolver interface {
	// Resolve returns a snapshot of the subject the token belongs to.
	//
	// Returns ErrInvalidToken for empty or malformed tokens, ErrSubjectNotFound when
	// no subject maps to the token, and identity provider failures unchanged. The last
	// resolved pair is cached until Invalidate is called or another token is resolved.
	Resolve(ctx context.Context, token string) (*domain.Subject, error)

	// Invalidate drops the cached subject so the next Resolve asks the provider.
	Invalidate()
}

// SessionManager owns the single client session.
//
// State machine: logged_out -> (Start succeeds) -> logged_in -> (End, or the
// token is invalidated externally and Refresh notices) -> logged_out.
type SessionManager interface {
	// Start resolves the token and, on success, stores it and caches the subject.
	// A failed or cancelled start leaves the previous state untouched.
	Start(ctx context.Context, token string) (*domain.Subject, error)

	// End clears the stored token and the cached subject. Calling it while
	// logged out is a no-op.
	End(ctx context.Context) error

	// Current returns the cached subject or domain.Anonymous.
	Current() *domain.Subject

	State() domain.SessionState

	// Session returns a copy of the active session, or nil when logged out.
	Session() *domain.Session

	// Restore loads a previously stored token and resolves it. An absent token
	// yields Anonymous without error. A token that no longer resolves is removed.
	Restore(ctx context.Context) (*domain.Subject, error)

	// Refresh re-resolves the current token, picking up role or status changes.
	Refresh(ctx context.Context) (*domain.Subject, error)

	// UpdateProfile merges display fields into the cached subject.
	UpdateProfile(input *domain.UpdateProfileInput) (*domain.Subject, error)
}

// ResourceDecision pairs a resource with the decision computed for a subject.
type ResourceDecision struct {
	Resource domain.Resource
	Decision domain.AccessDecision
}

// ResourceUseCase manages the protected resource catalog.
type ResourceUseCase interface {
	// Register classifies the declared access list and stores the resource.
	// Unknown roles are dropped and reported as warnings.
	Register(
		ctx context.Context,
		input *domain.RegisterResourceInput,
	) (*domain.RegisterResourceOutput, error)

	// Get returns the resource together with the decision for the subject.
	Get(ctx context.Context, subject *domain.Subject, resourceID string) (*ResourceDecision, error)

	// ListVisible returns the resources the subject is allowed to see.
	ListVisible(
		ctx context.Context,
		subject *domain.Subject,
		filter domain.ResourceFilter,
	) ([]domain.Resource, error)

	// DecideMany evaluates the subject against each resource ID, in order.
	DecideMany(ctx context.Context, subject *domain.Subject, resourceIDs []string) ([]ResourceDecision, error)
}

// SubjectUseCase manages subject accounts for the admin console.
type SubjectUseCase interface {
	// Create stores a subject with an Argon2id-hashed password.
	Create(ctx context.Context, input *domain.CreateSubjectInput) (*domain.Subject, error)

	Get(ctx context.Context, subjectID string) (*domain.Subject, error)

	List(ctx context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error)

	// SetRole changes the subject's role. The value is validated by the role registry.
	SetRole(ctx context.Context, subjectID string, role string) (*domain.Subject, error)

	// SetStatus activates or deactivates the subject.
	SetStatus(ctx context.Context, subjectID string, isActive bool) (*domain.Subject, error)

	// UpdateProfile changes the subject's display fields.
	UpdateProfile(
		ctx context.Context,
		subjectID string,
		input *domain.UpdateProfileInput,
	) (*domain.Subject, error)
}

// CatalogSeeder loads a seed catalog through the subject and resource use cases.
type CatalogSeeder interface {
	// Seed creates every catalog entry that does not exist yet. Existing subjects
	// (by e-mail) and resources (by ID) are skipped, so seeding is repeatable.
	Seed(ctx context.Context, catalog *domain.Catalog) (*domain.SeedReport, error)
}
