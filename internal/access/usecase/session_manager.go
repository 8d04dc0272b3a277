package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/allisson/roleguard/internal/access/domain"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// sessionManager implements SessionManager. mu guards every field below it;
// identity provider round trips run without holding it.
type sessionManager struct {
	resolver SubjectResolver
	store    TokenStore
	logger   *slog.Logger

	mu      sync.Mutex
	token   string
	subject *domain.Subject
	session *domain.Session
}

// Start resolves the token first and commits the session only on success.
func (s *sessionManager) Start(ctx context.Context, token string) (*domain.Subject, error) {
	subject, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	// The caller may have given up while the provider was answering.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		return nil, apperrors.Wrap(err, "failed to store session token")
	}

	s.commit(token, subject)
	s.logger.Info("session started", slog.String("subject_id", subject.ID))

	return subject.Clone(), nil
}

// End clears the stored token and the cached subject.
func (s *sessionManager) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		return apperrors.Wrap(err, "failed to delete session token")
	}

	if s.subject != nil {
		s.logger.Info("session ended", slog.String("subject_id", s.subject.ID))
	}
	s.clear()

	return nil
}

// Current returns a snapshot of the cached subject, or Anonymous.
func (s *sessionManager) Current() *domain.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.subject.Clone()
}

// State reports whether a session is active.
func (s *sessionManager) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subject == nil {
		return domain.SessionLoggedOut
	}
	return domain.SessionLoggedIn
}

// Restore resumes a session from the token store.
func (s *sessionManager) Restore(ctx context.Context) (*domain.Subject, error) {
	token, ok, err := s.store.Load(ctx)
	if err != nil {
		return domain.Anonymous, apperrors.Wrap(err, "failed to load session token")
	}
	if !ok {
		return domain.Anonymous, nil
	}

	subject, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Anonymous, ctxErr
		}
		s.logger.Warn("stored session token rejected", slog.Any("error", err))

		s.mu.Lock()
		defer s.mu.Unlock()

		if delErr := s.store.Delete(ctx); delErr != nil {
			s.logger.Error("failed to delete rejected session token", slog.Any("error", delErr))
		}
		s.clear()

		return domain.Anonymous, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(token, subject)

	return subject.Clone(), nil
}

// Refresh drops the resolver cache and resolves the current token again.
// A token that no longer maps to a subject ends the session.
func (s *sessionManager) Refresh(ctx context.Context) (*domain.Subject, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return domain.Anonymous, domain.ErrNoSession
	}

	s.resolver.Invalidate()

	subject, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		if apperrors.Is(err, domain.ErrInvalidToken) || apperrors.Is(err, domain.ErrSubjectNotFound) {
			s.logger.Info("session token invalidated externally", slog.Any("error", err))
			if endErr := s.endIfCurrent(ctx, token); endErr != nil {
				return domain.Anonymous, endErr
			}
			return domain.Anonymous, err
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent Start or End wins over this refresh.
	if s.token != token {
		return s.subject.Clone(), nil
	}
	s.subject = subject.Clone()

	return subject.Clone(), nil
}

// Session returns a copy of the active session, or nil when logged out.
func (s *sessionManager) Session() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// UpdateProfile merges non-blank display fields into the cached subject.
func (s *sessionManager) UpdateProfile(input *domain.UpdateProfileInput) (*domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subject == nil {
		return domain.Anonymous, domain.ErrNoSession
	}

	if name := strings.TrimSpace(input.DisplayName); name != "" {
		s.subject.DisplayName = name
	}
	if avatar := strings.TrimSpace(input.AvatarURL); avatar != "" {
		s.subject.AvatarURL = avatar
	}
	s.subject.UpdatedAt = time.Now().UTC()

	return s.subject.Clone(), nil
}

func (s *sessionManager) endIfCurrent(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		return nil
	}
	if err := s.store.Delete(ctx); err != nil {
		return apperrors.Wrap(err, "failed to delete session token")
	}
	s.clear()

	return nil
}

// commit and clear must be called with mu held.
func (s *sessionManager) commit(token string, subject *domain.Subject) {
	s.token = token
	s.subject = subject.Clone()
	s.session = &domain.Session{
		Token:     token,
		SubjectID: subject.ID,
		IssuedAt:  time.Now().UTC(),
	}
}

func (s *sessionManager) clear() {
	s.token = ""
	s.subject = nil
	s.session = nil
	s.resolver.Invalidate()
}

// NewSessionManager creates a SessionManager that persists its token in store.
func NewSessionManager(resolver SubjectResolver, store TokenStore, logger *slog.Logger) SessionManager {
	return &sessionManager{
		resolver: resolver,
		store:    store,
		logger:   logger,
	}
}
