package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/roleguard/internal/access/domain"
)

func TestRunLogin(t *testing.T) {
	ctx := context.Background()
	subject := testSubject(domain.RoleUser, true)

	t.Run("with-code", func(t *testing.T) {
		sessions := &mockSessionManager{}
		provider := &mockIdentity{}
		provider.On("ExchangeCodeForToken", ctx, "code-1").Return("token-1", nil)
		sessions.On("Start", ctx, "token-1").Return(subject, nil)

		var out bytes.Buffer
		err := RunLogin(ctx, sessions, provider, nil, LoginInput{Code: "code-1"}, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		assert.Equal(t, "Logged in as jane.smith@example.com (User)\n", out.String())
		sessions.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("with-password", func(t *testing.T) {
		sessions := &mockSessionManager{}
		provider := &mockIdentity{}
		provider.On("Authorize", ctx, subject.Email, "community42").Return("code-2", nil)
		provider.On("ExchangeCodeForToken", ctx, "code-2").Return("token-2", nil)
		sessions.On("Start", ctx, "token-2").Return(subject, nil)

		var out bytes.Buffer
		err := RunLogin(ctx, sessions, provider, provider,
			LoginInput{Email: subject.Email, Password: "community42"}, "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"email": "jane.smith@example.com"`)
		provider.AssertExpectations(t)
	})

	t.Run("password-login-without-local-provider", func(t *testing.T) {
		err := RunLogin(ctx, &mockSessionManager{}, &mockIdentity{}, nil,
			LoginInput{Email: subject.Email}, "text", IOTuple{Writer: &bytes.Buffer{}})

		require.ErrorIs(t, err, errPasswordLogin)
	})

	t.Run("no-credentials", func(t *testing.T) {
		err := RunLogin(ctx, &mockSessionManager{}, &mockIdentity{}, nil, LoginInput{}, "text",
			IOTuple{Writer: &bytes.Buffer{}})

		require.ErrorIs(t, err, errLoginCredentials)
	})

	t.Run("invalid-code-keeps-session-untouched", func(t *testing.T) {
		sessions := &mockSessionManager{}
		provider := &mockIdentity{}
		provider.On("ExchangeCodeForToken", ctx, "stale").Return("", domain.ErrInvalidCode)

		err := RunLogin(ctx, sessions, provider, nil, LoginInput{Code: "stale"}, "text",
			IOTuple{Writer: &bytes.Buffer{}})

		require.ErrorIs(t, err, domain.ErrInvalidCode)
		require.ErrorIs(t, err, domain.ErrIdentityProvider)
		sessions.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})
}

func TestRunLogout(t *testing.T) {
	ctx := context.Background()
	subject := testSubject(domain.RoleUser, true)

	t.Run("revokes-and-ends", func(t *testing.T) {
		sessions := &mockSessionManager{}
		revoker := &mockIdentity{}
		sessions.On("Restore", ctx).Return(subject, nil)
		sessions.On("Session").Return(&domain.Session{Token: "token-1", SubjectID: subject.ID})
		revoker.On("Revoke", ctx, "token-1").Return(nil)
		sessions.On("End", ctx).Return(nil)

		var out bytes.Buffer
		require.NoError(t, RunLogout(ctx, sessions, revoker, discardLogger(), &out))

		assert.Equal(t, "Logged out\n", out.String())
		sessions.AssertExpectations(t)
		revoker.AssertExpectations(t)
	})

	t.Run("revocation-failure-still-ends", func(t *testing.T) {
		sessions := &mockSessionManager{}
		revoker := &mockIdentity{}
		sessions.On("Restore", ctx).Return(subject, nil)
		sessions.On("Session").Return(&domain.Session{Token: "token-1"})
		revoker.On("Revoke", ctx, "token-1").Return(domain.ErrIdentityProvider)
		sessions.On("End", ctx).Return(nil)

		require.NoError(t, RunLogout(ctx, sessions, revoker, discardLogger(), &bytes.Buffer{}))
		sessions.AssertExpectations(t)
	})

	t.Run("logged-out-is-no-op", func(t *testing.T) {
		sessions := &mockSessionManager{}
		sessions.On("Restore", ctx).Return(nil, nil)
		sessions.On("Session").Return(nil)
		sessions.On("End", ctx).Return(nil)

		require.NoError(t, RunLogout(ctx, sessions, nil, discardLogger(), &bytes.Buffer{}))
		sessions.AssertExpectations(t)
	})

	t.Run("end-error", func(t *testing.T) {
		sessions := &mockSessionManager{}
		sessions.On("Restore", ctx).Return(nil, nil)
		sessions.On("Session").Return(nil)
		sessions.On("End", ctx).Return(errors.New("disk full"))

		err := RunLogout(ctx, sessions, nil, discardLogger(), &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to end session")
	})
}

func TestRunWhoami(t *testing.T) {
	ctx := context.Background()

	t.Run("logged-in", func(t *testing.T) {
		sessions := &mockSessionManager{}
		sessions.On("Restore", ctx).Return(testSubject(domain.RoleServiceProvider, true), nil)

		var out bytes.Buffer
		require.NoError(t, RunWhoami(ctx, sessions, &out, "text"))
		assert.Contains(t, out.String(), "Role:   Service Provider")
	})

	t.Run("anonymous-text", func(t *testing.T) {
		sessions := &mockSessionManager{}
		sessions.On("Restore", ctx).Return(nil, nil)

		var out bytes.Buffer
		require.NoError(t, RunWhoami(ctx, sessions, &out, "text"))
		assert.Equal(t, "Not logged in\n", out.String())
	})

	t.Run("anonymous-json", func(t *testing.T) {
		sessions := &mockSessionManager{}
		sessions.On("Restore", ctx).Return(nil, nil)

		var out bytes.Buffer
		require.NoError(t, RunWhoami(ctx, sessions, &out, "json"))
		assert.Contains(t, out.String(), `"state": "logged_out"`)
	})

	t.Run("rejected-token", func(t *testing.T) {
		sessions := &mockSessionManager{}
		sessions.On("Restore", ctx).Return(nil, domain.ErrInvalidToken)

		err := RunWhoami(ctx, sessions, &bytes.Buffer{}, "text")
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
