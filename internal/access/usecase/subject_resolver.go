package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/allisson/roleguard/internal/access/domain"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// subjectResolver implements SubjectResolver with a single-entry cache.
type subjectResolver struct {
	provider IdentityProvider

	mu           sync.RWMutex
	cachedToken  string
	cachedResult *domain.Subject
	// generation is bumped by Invalidate. A fetch that started under an
	// older generation is returned to its caller but never cached.
	generation uint64
}

// Resolve validates the token shape locally, then asks the identity provider.
func (r *subjectResolver) Resolve(ctx context.Context, token string) (*domain.Subject, error) {
	if !isWellFormedToken(token) {
		return nil, domain.ErrInvalidToken
	}

	r.mu.RLock()
	if r.cachedResult != nil && r.cachedToken == token {
		subject := r.cachedResult.Clone()
		r.mu.RUnlock()
		return subject, nil
	}
	generation := r.generation
	r.mu.RUnlock()

	subject, err := r.provider.FetchSubject(ctx, token)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if subject == nil {
		return nil, domain.ErrSubjectNotFound
	}

	r.mu.Lock()
	if r.generation == generation {
		r.cachedToken = token
		r.cachedResult = subject.Clone()
	}
	r.mu.Unlock()

	return subject.Clone(), nil
}

// Invalidate drops the cached pair.
func (r *subjectResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.cachedToken = ""
	r.cachedResult = nil
}

// isWellFormedToken rejects empty tokens and tokens with embedded whitespace.
func isWellFormedToken(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	return strings.IndexFunc(token, unicode.IsSpace) < 0
}

// classifyProviderError keeps typed resolution errors and context errors as they
// are and tags anything else as an identity provider failure.
func classifyProviderError(err error) error {
	switch {
	case apperrors.Is(err, domain.ErrInvalidToken),
		apperrors.Is(err, domain.ErrSubjectNotFound),
		apperrors.Is(err, domain.ErrIdentityProvider),
		apperrors.Is(err, context.Canceled),
		apperrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
}

// NewSubjectResolver creates a SubjectResolver backed by the identity provider.
func NewSubjectResolver(provider IdentityProvider) SubjectResolver {
	return &subjectResolver{provider: provider}
}
