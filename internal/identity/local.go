// Package identity implements the identity providers the subject resolver
// talks to: a local provider that signs its own tokens and an HTTP client for
// a remote roleguard server.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/access/service"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// SubjectLookup loads subjects for the local provider.
type SubjectLookup interface {
	Get(ctx context.Context, subjectID string) (*domain.Subject, error)
	GetByEmail(ctx context.Context, email string) (*domain.Subject, error)
}

// Config holds the local provider settings.
type Config struct {
	Issuer     string
	SigningKey []byte
	TokenTTL   time.Duration // 0 means tokens never expire
	CodeTTL    time.Duration
}

// Claims are the JWT claims minted by the local provider.
type Claims struct {
	jwt.RegisteredClaims
}

// LocalProvider issues authorization codes and HS256 tokens for subjects
// stored in the subject repository.
type LocalProvider struct {
	subjects  SubjectLookup
	passwords service.PasswordService
	codes     service.CodeService
	codeStore *CodeStore
	config    Config
	logger    *slog.Logger
	now       func() time.Time

	// revoked caches revocations already seen; the code store holds the
	// durable copy.
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> token expiry, zero for non-expiring tokens
}

// Authorize checks the e-mail and password and returns a one-time code.
// Inactive subjects may authenticate; access is denied later by decisions.
func (p *LocalProvider) Authorize(ctx context.Context, email, password string) (string, error) {
	subject, err := p.subjects.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.Is(err, domain.ErrSubjectNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !p.passwords.ComparePassword(password, subject.PasswordHash) {
		p.logger.Warn("authorization rejected", slog.String("subject_id", subject.ID))
		return "", domain.ErrInvalidCredentials
	}

	return p.issueCode(ctx, subject.ID)
}

// IssueCode mints a code for an existing subject without a password check.
func (p *LocalProvider) IssueCode(ctx context.Context, subjectID string) (string, error) {
	subject, err := p.subjects.Get(ctx, subjectID)
	if err != nil {
		return "", err
	}
	return p.issueCode(ctx, subject.ID)
}

func (p *LocalProvider) issueCode(ctx context.Context, subjectID string) (string, error) {
	plainCode, codeHash, err := p.codes.GenerateCode()
	if err != nil {
		return "", err
	}

	grant := codeGrant{SubjectID: subjectID, ExpiresAt: p.now().Add(p.config.CodeTTL)}
	if err := p.codeStore.put(ctx, codeHash, grant); err != nil {
		return "", err
	}

	p.logger.Info("authorization code issued", slog.String("subject_id", subjectID))
	return plainCode, nil
}

// ExchangeCodeForToken consumes the code and returns a signed token.
func (p *LocalProvider) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", domain.ErrInvalidCode
	}

	grant, ok, err := p.codeStore.take(ctx, p.codes.HashCode(code))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	if !ok || !p.now().Before(grant.ExpiresAt) {
		return "", domain.ErrInvalidCode
	}

	return p.signToken(grant.SubjectID)
}

func (p *LocalProvider) signToken(subjectID string) (string, error) {
	now := p.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   p.config.Issuer,
			Subject:  subjectID,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if p.config.TokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(p.config.TokenTTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.config.SigningKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// parse verifies signature, issuer and expiry.
func (p *LocalProvider) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return p.config.SigningKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.config.Issuer),
		jwt.WithTimeFunc(p.now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// FetchSubject validates the token and loads its subject.
func (p *LocalProvider) FetchSubject(ctx context.Context, token string) (*domain.Subject, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := p.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	if revoked {
		return nil, domain.ErrInvalidToken
	}

	subject, err := p.subjects.Get(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return subject, nil
}

// TokenExpiry reports when a valid token expires. nil means never.
func (p *LocalProvider) TokenExpiry(token string) (*time.Time, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, nil
	}
	expiresAt := claims.ExpiresAt.UTC()
	return &expiresAt, nil
}

// Revoke makes every later FetchSubject with token fail with ErrInvalidToken,
// including from other providers sharing the code store.
func (p *LocalProvider) Revoke(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := p.codeStore.revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}

	p.mu.Lock()
	p.pruneRevoked()
	p.revoked[claims.ID] = expiresAt
	p.mu.Unlock()

	p.logger.Info("token revoked", slog.String("subject_id", claims.Subject))
	return nil
}

// isRevoked checks the in-process cache, then the code store. Records of
// tokens that have expired anyway are removed from the store.
func (p *LocalProvider) isRevoked(ctx context.Context, jti string) (bool, error) {
	p.mu.RLock()
	_, cached := p.revoked[jti]
	p.mu.RUnlock()
	if cached {
		return true, nil
	}

	expiresAt, found, err := p.codeStore.revokedUntil(ctx, jti)
	if err != nil || !found {
		return false, err
	}
	if !expiresAt.IsZero() && p.now().After(expiresAt) {
		return false, p.codeStore.dropRevocation(ctx, jti)
	}

	p.mu.Lock()
	p.revoked[jti] = expiresAt
	p.mu.Unlock()
	return true, nil
}

// pruneRevoked drops entries whose tokens have expired anyway. Caller holds mu.
func (p *LocalProvider) pruneRevoked() {
	now := p.now()
	for jti, expiresAt := range p.revoked {
		if !expiresAt.IsZero() && now.After(expiresAt) {
			delete(p.revoked, jti)
		}
	}
}

// NewLocalProvider creates a LocalProvider.
func NewLocalProvider(
	subjects SubjectLookup,
	passwords service.PasswordService,
	codes service.CodeService,
	codeStore *CodeStore,
	config Config,
	logger *slog.Logger,
) *LocalProvider {
	return &LocalProvider{
		subjects:  subjects,
		passwords: passwords,
		codes:     codes,
		codeStore: codeStore,
		config:    config,
		logger:    logger,
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}
}
