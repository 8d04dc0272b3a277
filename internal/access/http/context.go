// Package http provides the gin handlers and middleware of the authorization API.
package http

import (
	"context"

	"github.com/allisson/roleguard/internal/access/domain"
)

type subjectKey struct{}

type tokenKey struct{}

// WithSubject stores the authenticated subject in the context.
func WithSubject(ctx context.Context, subject *domain.Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetSubject retrieves the authenticated subject. Returns (nil, false) for
// anonymous requests.
func GetSubject(ctx context.Context) (*domain.Subject, bool) {
	subject, ok := ctx.Value(subjectKey{}).(*domain.Subject)
	return subject, ok && subject != nil
}

// WithToken stores the caller's bearer token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the caller's bearer token.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
