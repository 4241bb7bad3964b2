// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/users/auth"
	"github.com/taibuivan/authgate/internal/users/identity"
)

// # Fakes

// memoryUserRepository is an in-memory [auth.UserRepository].
type memoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]*identity.User
	findErr error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byID: make(map[string]*identity.User)}
}

func (repository *memoryUserRepository) FindByID(_ context.Context, id string) (*identity.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.findErr != nil {
		return nil, repository.findErr
	}
	user, ok := repository.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repository *memoryUserRepository) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.findErr != nil {
		return nil, repository.findErr
	}
	for _, user := range repository.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryUserRepository) Create(_ context.Context, user *identity.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.byID {
		if existing.Email == user.Email {
			return identity.ErrEmailTaken
		}
	}
	clone := *user
	repository.byID[user.ID] = &clone
	return nil
}

func (repository *memoryUserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.LastLogin = &at
	return nil
}

func (repository *memoryUserRepository) setActive(email string, active bool) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, user := range repository.byID {
		if user.Email == email {
			user.IsActive = active
		}
	}
}

func (repository *memoryUserRepository) remove(id string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.byID, id)
}

// # Fixtures

const testSecret = "test-signing-secret"

func newTokenService(t *testing.T, now func() time.Time) *sec.TokenService {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     []byte(testSecret),
		Issuer:     "authgate",
		AccessTTL:  time.Hour,
		RefreshTTL: 2 * time.Hour,
		Now:        now,
	})
	require.NoError(t, err)
	return tokens
}

func newTestHasher() *sec.BcryptHasher {
	return sec.NewBcryptHasher(bcrypt.MinCost)
}

func newService(t *testing.T, issueRefresh bool) (*auth.Service, *memoryUserRepository, *sec.TokenService) {
	t.Helper()

	repository := newMemoryUserRepository()
	tokens := newTokenService(t, nil)
	service := auth.NewService(repository, newTestHasher(), tokens, issueRefresh)
	return service, repository, tokens
}

// # Register

func TestService_RegisterThenLogin(t *testing.T) {
	service, repository, tokens := newService(t, true)
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	assert.NotEmpty(t, registered.User.ID)
	assert.True(t, registered.User.IsActive)
	assert.Nil(t, registered.User.LastLogin)
	assert.Equal(t, time.Now().UTC().Format(identity.DateLayout), registered.User.Public().DateJoined)
	assert.NotEqual(t, "p", repository.byID[registered.User.ID].PasswordHash)

	claims, ok := tokens.Verify(registered.AccessToken, sec.TokenAccess)
	require.True(t, ok)
	assert.Equal(t, registered.User.ID, claims.UserID)

	claims, ok = tokens.Verify(registered.RefreshToken, sec.TokenRefresh)
	require.True(t, ok)
	assert.Equal(t, registered.User.ID, claims.UserID)

	session, err := service.Login(ctx, "a@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	require.NotNil(t, session.User.LastLogin)
	assert.NotNil(t, repository.byID[registered.User.ID].LastLogin)
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	service, _, _ := newService(t, true)
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	_, err = service.Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "other"})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, auth.FieldEmail, ae.Details[0].Field)
}

func TestService_BearerModeIssuesAccessOnly(t *testing.T) {
	service, _, _ := newService(t, false)

	session, err := service.Register(context.Background(), auth.RegisterInput{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Empty(t, session.RefreshToken)
	assert.True(t, session.RefreshExpiresAt.IsZero())
}

// # Login

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	service, repository, _ := newService(t, true)
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "right"})
	require.NoError(t, err)
	_, err = service.Register(ctx, auth.RegisterInput{Email: "off@x.com", Password: "right"})
	require.NoError(t, err)
	repository.setActive("off@x.com", false)

	attempts := map[string][2]string{
		"wrong_password": {"a@x.com", "wrong"},
		"unknown_email":  {"nobody@x.com", "right"},
		"inactive":       {"off@x.com", "right"},
	}

	for name, attempt := range attempts {
		t.Run(name, func(t *testing.T) {
			_, err := service.Login(ctx, attempt[0], attempt[1])

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
			assert.Equal(t, auth.MsgInvalidCredentials, ae.Message)
			assert.Empty(t, ae.Details)
		})
	}
}

func TestService_LoginStoreFailure(t *testing.T) {
	service, repository, _ := newService(t, true)
	repository.findErr = errors.New("connection reset")

	_, err := service.Login(context.Background(), "a@x.com", "p")
	require.Error(t, err)
	assert.Nil(t, apperr.As(err))
}

// # Refresh

func TestService_Refresh(t *testing.T) {
	service, repository, tokens := newService(t, true)
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterInput{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	t.Run("rotates_pair", func(t *testing.T) {
		session, err := service.Refresh(ctx, registered.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, session.User.ID)

		_, ok := tokens.Verify(session.AccessToken, sec.TokenAccess)
		assert.True(t, ok)
		_, ok = tokens.Verify(session.RefreshToken, sec.TokenRefresh)
		assert.True(t, ok)
	})

	t.Run("rejects_access_token", func(t *testing.T) {
		_, err := service.Refresh(ctx, registered.AccessToken)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		_, err := service.Refresh(ctx, "not-a-token")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)
	})

	t.Run("rejects_expired", func(t *testing.T) {
		past := newTokenService(t, func() time.Time { return time.Now().Add(-3 * time.Hour) })
		pair, err := past.IssuePair(registered.User.ID, "")
		require.NoError(t, err)

		_, err = service.Refresh(ctx, pair.RefreshToken)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)
	})

	t.Run("rejects_inactive_user", func(t *testing.T) {
		repository.setActive("a@x.com", false)
		defer repository.setActive("a@x.com", true)

		_, err := service.Refresh(ctx, registered.RefreshToken)
		assert.Equal(t, auth.MsgInvalidRefresh, apperr.As(err).Message)
	})

	t.Run("rejects_vanished_user", func(t *testing.T) {
		repository.remove(registered.User.ID)

		_, err := service.Refresh(ctx, registered.RefreshToken)
		assert.Equal(t, auth.MsgInvalidRefresh, apperr.As(err).Message)
	})
}

func TestService_RefreshDisabledInBearerMode(t *testing.T) {
	service, _, tokens := newService(t, false)

	registered, err := service.Register(context.Background(), auth.RegisterInput{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	pair, err := tokens.IssuePair(registered.User.ID, "")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)
}
