package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/roleguard/internal/access/domain"
)

func newTestSessionManager(provider IdentityProvider, store TokenStore) SessionManager {
	return NewSessionManager(NewSubjectResolver(provider), store, discardLogger())
}

func TestSessionManager_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LogsIn", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)
		expected := createTestSubject("u1", domain.RoleUser, true)

		provider.On("FetchSubject", mock.Anything, "token-1").Return(expected, nil)

		assert.Equal(t, domain.SessionLoggedOut, manager.State())

		subject, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)
		assert.Equal(t, expected, subject)
		assert.Equal(t, domain.SessionLoggedIn, manager.State())
		assert.Equal(t, expected, manager.Current())

		session := manager.Session()
		require.NotNil(t, session)
		assert.Equal(t, "token-1", session.Token)
		assert.Equal(t, "u1", session.SubjectID)
		assert.Nil(t, session.ExpiresAt)

		token, ok := store.stored()
		assert.True(t, ok)
		assert.Equal(t, "token-1", token)
	})

	t.Run("Error_FailureWhileLoggedOutLeavesStateUnchanged", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "bad").Return(nil, domain.ErrSubjectNotFound)

		subject, err := manager.Start(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
		assert.Nil(t, subject)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())
		assert.Nil(t, manager.Current())
		assert.Nil(t, manager.Session())

		_, ok := store.stored()
		assert.False(t, ok)
	})

	t.Run("Error_MalformedTokenNeverReachesProvider", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})

		_, err := manager.Start(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		provider.AssertNotCalled(t, "FetchSubject", mock.Anything, mock.Anything)
	})

	t.Run("Error_FailureWhileLoggedInKeepsPreviousSession", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil)
		provider.On("FetchSubject", mock.Anything, "token-2").Return(nil, domain.ErrIdentityProvider)

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		_, err = manager.Start(ctx, "token-2")
		assert.ErrorIs(t, err, domain.ErrIdentityProvider)

		assert.Equal(t, "u1", manager.Current().ID)
		token, _ := store.stored()
		assert.Equal(t, "token-1", token)
	})

	t.Run("Error_StoreFailureLeavesStateUnchanged", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{saveErr: errors.New("disk full")}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil)

		_, err := manager.Start(ctx, "token-1")
		assert.ErrorContains(t, err, "disk full")
		assert.Equal(t, domain.SessionLoggedOut, manager.State())
	})

	t.Run("Success_NewSessionOverwritesPrevious", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil)
		provider.On("FetchSubject", mock.Anything, "token-2").
			Return(createTestSubject("u2", domain.RoleModerator, true), nil)

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)
		_, err = manager.Start(ctx, "token-2")
		require.NoError(t, err)

		assert.Equal(t, "u2", manager.Current().ID)
		token, _ := store.stored()
		assert.Equal(t, "token-2", token)
	})

	t.Run("Error_CancelledWhileResolving", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.Canceled)

		cancelCtx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := manager.Start(cancelCtx, "token-1")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())

		_, ok := store.stored()
		assert.False(t, ok)
	})

	t.Run("Error_CancelledAfterProviderAnswered", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		cancelCtx, cancel := context.WithCancel(ctx)
		provider.On("FetchSubject", mock.Anything, "token-1").
			Run(func(mock.Arguments) { cancel() }).
			Return(createTestSubject("u1", domain.RoleUser, true), nil)

		_, err := manager.Start(cancelCtx, "token-1")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())
	})
}

func TestSessionManager_End(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IsIdempotent", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleAdmin, true), nil)

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		require.NoError(t, manager.End(ctx))
		require.NoError(t, manager.End(ctx))

		assert.Equal(t, domain.SessionLoggedOut, manager.State())
		assert.Nil(t, manager.Current())
		_, ok := store.stored()
		assert.False(t, ok)
	})

	t.Run("Success_EndWithoutSession", func(t *testing.T) {
		manager := newTestSessionManager(&mockIdentityProvider{}, &memoryTokenStore{})
		assert.NoError(t, manager.End(ctx))
		assert.Equal(t, domain.SessionLoggedOut, manager.State())
	})

	t.Run("Success_NextStartAsksProviderAgain", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil).
			Twice()

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)
		require.NoError(t, manager.End(ctx))
		_, err = manager.Start(ctx, "token-1")
		require.NoError(t, err)

		provider.AssertExpectations(t)
	})

	t.Run("Error_StoreFailureKeepsSession", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil)

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		store.deleteErr = errors.New("read-only bucket")
		assert.Error(t, manager.End(ctx))
		assert.Equal(t, domain.SessionLoggedIn, manager.State())
	})
}

func TestSessionManager_Current(t *testing.T) {
	ctx := context.Background()
	provider := &mockIdentityProvider{}
	manager := newTestSessionManager(provider, &memoryTokenStore{})

	assert.True(t, domain.IsAnonymous(manager.Current()))

	provider.On("FetchSubject", mock.Anything, "token-1").
		Return(createTestSubject("u1", domain.RoleUser, true), nil)

	_, err := manager.Start(ctx, "token-1")
	require.NoError(t, err)

	current := manager.Current()
	current.Role = domain.RoleAdmin
	current.IsActive = false

	assert.Equal(t, domain.RoleUser, manager.Current().Role)
	assert.True(t, manager.Current().IsActive)
}

func TestSessionManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NoStoredToken", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})

		subject, err := manager.Restore(ctx)
		require.NoError(t, err)
		assert.Nil(t, subject)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())
		provider.AssertNotCalled(t, "FetchSubject", mock.Anything, mock.Anything)
	})

	t.Run("Success_ValidStoredToken", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{token: "token-1", ok: true}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleModerator, true), nil)

		subject, err := manager.Restore(ctx)
		require.NoError(t, err)
		assert.Equal(t, "u1", subject.ID)
		assert.Equal(t, domain.SessionLoggedIn, manager.State())
	})

	t.Run("Error_RejectedTokenIsRemoved", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{token: "stale", ok: true}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "stale").Return(nil, domain.ErrInvalidToken)

		subject, err := manager.Restore(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		assert.Nil(t, subject)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())

		_, ok := store.stored()
		assert.False(t, ok)
	})

	t.Run("Error_CancelledKeepsStoredToken", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{token: "token-1", ok: true}
		manager := newTestSessionManager(provider, store)

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		provider.On("FetchSubject", mock.Anything, "token-1").Return(nil, context.Canceled)

		_, err := manager.Restore(cancelCtx)
		assert.ErrorIs(t, err, context.Canceled)

		_, ok := store.stored()
		assert.True(t, ok)
	})

	t.Run("Error_LoadFailure", func(t *testing.T) {
		manager := newTestSessionManager(&mockIdentityProvider{}, &memoryTokenStore{loadErr: errors.New("bucket gone")})

		subject, err := manager.Restore(ctx)
		assert.ErrorContains(t, err, "bucket gone")
		assert.Nil(t, subject)
	})
}

func TestSessionManager_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_NoSession", func(t *testing.T) {
		manager := newTestSessionManager(&mockIdentityProvider{}, &memoryTokenStore{})

		_, err := manager.Refresh(ctx)
		assert.ErrorIs(t, err, domain.ErrNoSession)
	})

	t.Run("Success_PicksUpRoleChange", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil).
			Once()
		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleModerator, true), nil).
			Once()

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		subject, err := manager.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleModerator, subject.Role)
		assert.Equal(t, domain.RoleModerator, manager.Current().Role)
		provider.AssertExpectations(t)
	})

	t.Run("Success_PicksUpDeactivation", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil).
			Once()
		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, false), nil).
			Once()

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		_, err = manager.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionLoggedIn, manager.State())
		assert.False(t, manager.Current().IsActive)
	})

	t.Run("Error_TokenInvalidatedExternallyEndsSession", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		store := &memoryTokenStore{}
		manager := newTestSessionManager(provider, store)

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil).
			Once()
		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(nil, domain.ErrInvalidToken).
			Once()

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		subject, err := manager.Refresh(ctx)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		assert.Nil(t, subject)
		assert.Equal(t, domain.SessionLoggedOut, manager.State())

		_, ok := store.stored()
		assert.False(t, ok)
	})

	t.Run("Error_ProviderOutageKeepsSession", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})

		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(createTestSubject("u1", domain.RoleUser, true), nil).
			Once()
		provider.On("FetchSubject", mock.Anything, "token-1").
			Return(nil, domain.ErrIdentityProvider).
			Once()

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		_, err = manager.Refresh(ctx)
		assert.ErrorIs(t, err, domain.ErrIdentityProvider)
		assert.Equal(t, domain.SessionLoggedIn, manager.State())
	})
}

func TestSessionManager_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_NoSession", func(t *testing.T) {
		manager := newTestSessionManager(&mockIdentityProvider{}, &memoryTokenStore{})

		_, err := manager.UpdateProfile(&domain.UpdateProfileInput{DisplayName: "Someone"})
		assert.ErrorIs(t, err, domain.ErrNoSession)
	})

	t.Run("Success_MergesDisplayFields", func(t *testing.T) {
		provider := &mockIdentityProvider{}
		manager := newTestSessionManager(provider, &memoryTokenStore{})
		original := createTestSubject("u1", domain.RoleUser, true)
		original.AvatarURL = "https://example.com/a.png"

		provider.On("FetchSubject", mock.Anything, "token-1").Return(original, nil)

		_, err := manager.Start(ctx, "token-1")
		require.NoError(t, err)

		updated, err := manager.UpdateProfile(&domain.UpdateProfileInput{DisplayName: "  John Doe  "})
		require.NoError(t, err)

		assert.Equal(t, "John Doe", updated.DisplayName)
		assert.Equal(t, "https://example.com/a.png", updated.AvatarURL)
		assert.Equal(t, domain.RoleUser, updated.Role)
		assert.True(t, updated.IsActive)
		assert.Equal(t, "John Doe", manager.Current().DisplayName)
	})
}

func TestSessionManager_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	provider := &mockIdentityProvider{}
	manager := newTestSessionManager(provider, &memoryTokenStore{})

	provider.On("FetchSubject", mock.Anything, "token-1").
		Return(createTestSubject("u1", domain.RoleUser, true), nil)

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, err := manager.Start(ctx, "token-1")
				assert.NoError(t, err)
			case 1:
				assert.NoError(t, manager.End(ctx))
			default:
				if current := manager.Current(); current != nil {
					assert.Equal(t, "u1", current.ID)
				}
			}
		}()
	}
	wg.Wait()
}
