package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/allisson/roleguard/internal/access/domain"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

const maxRemoteBodyBytes = 1 << 20

type remoteTokenRequest struct {
	Code string `json:"code"`
}

type remoteTokenResponse struct {
	Token string `json:"token"`
}

type remoteSubjectResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RemoteProvider is an IdentityProvider backed by a running roleguard server.
type RemoteProvider struct {
	baseURL string
	client  *http.Client
}

// ExchangeCodeForToken calls POST /v1/token.
func (p *RemoteProvider) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(remoteTokenRequest{Code: code})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp remoteTokenResponse
	if err := p.do(req, &resp, domain.ErrInvalidCode); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperrors.Wrap(domain.ErrIdentityProvider, "empty token in response")
	}
	return resp.Token, nil
}

// FetchSubject calls GET /v1/me with the token as bearer credential.
func (p *RemoteProvider) FetchSubject(ctx context.Context, token string) (*domain.Subject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp remoteSubjectResponse
	if err := p.do(req, &resp, domain.ErrInvalidToken); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(resp.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}

	return &domain.Subject{
		ID:          resp.ID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		AvatarURL:   resp.AvatarURL,
		Role:        role,
		IsActive:    resp.IsActive,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}, nil
}

// Revoke calls POST /v1/token/revoke.
func (p *RemoteProvider) Revoke(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/token/revoke", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return p.do(req, nil, domain.ErrInvalidToken)
}

// do sends req and decodes a 2xx body into out. unauthorized is returned for 401.
func (p *RemoteProvider) do(req *http.Request, out any, unauthorized error) error {
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return unauthorized
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrSubjectNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return apperrors.Wrapf(domain.ErrIdentityProvider, "unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrIdentityProvider, err)
	}
	return nil
}

// NewRemoteProvider creates a RemoteProvider for baseURL. A nil client uses a
// client without timeout; cancellation comes from the caller's context.
func NewRemoteProvider(baseURL string, client *http.Client) *RemoteProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}
