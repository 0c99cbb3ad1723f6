// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
	"github.com/cardfolio/cardfolio/internal/users/auth"
	"github.com/cardfolio/cardfolio/pkg/date"
)

// fakeUserRepository is an in-memory auth.UserRepository.
type fakeUserRepository struct {
	users map[string]*auth.User // keyed by username
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*auth.User)}
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if user, found := f.users[username]; found {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) Create(ctx context.Context, user *auth.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepository) Update(ctx context.Context, user *auth.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	for _, user := range f.users {
		if user.ID == userID {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return apperr.NotFound("User")
}

func (f *fakeUserRepository) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	for _, user := range f.users {
		if user.ID == userID {
			user.LastLogin = &loginTime
			return nil
		}
	}
	return apperr.NotFound("User")
}

func (f *fakeUserRepository) Delete(ctx context.Context, userID string) error {
	for username, user := range f.users {
		if user.ID == userID {
			delete(f.users, username)
			return nil
		}
	}
	return apperr.NotFound("User")
}

// newTestService wires a Service against in-memory fakes and a real HS256
// token provider.
func newTestService(t *testing.T) (*auth.Service, *fakeUserRepository) {
	t.Helper()

	repository := newFakeUserRepository()
	revocations := auth.NewMemoryRevocationStore()
	tokens := sec.NewTokenService("test-secret", "cardfolio.test", 30*time.Minute, 168*time.Hour)

	return auth.NewService(repository, revocations, tokens), repository
}

func registerAlice(t *testing.T, service *auth.Service) *auth.User {
	t.Helper()

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "Passw0rd",
		FirstName:   "Alice",
		LastName:    "Smith",
		DateOfBirth: date.New(1990, time.May, 15),
	})
	require.NoError(t, err)
	return user
}

/*
TestService_Register covers enrollment and identity conflicts.
*/
func TestService_Register(t *testing.T) {
	service, repository := newTestService(t)

	user := registerAlice(t, service)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)

	// Plaintext must never be stored.
	stored := repository.users["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Passw0rd", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("Passw0rd", stored.PasswordHash))

	t.Run("duplicate_username", func(t *testing.T) {
		_, err := service.Register(context.Background(), auth.RegisterInput{
			Username: "alice",
			Email:    "other@example.com",
			Password: "Passw0rd",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := service.Register(context.Background(), auth.RegisterInput{
			Username: "alice2",
			Email:    "alice@example.com",
			Password: "Passw0rd",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestService_Login verifies credential checks and the issued pair.
*/
func TestService_Login(t *testing.T) {
	service, repository := newTestService(t)
	registerAlice(t, service)

	t.Run("success", func(t *testing.T) {
		pair, err := service.Login(context.Background(), "alice", "Passw0rd")
		require.NoError(t, err)

		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "bearer", pair.TokenType)

		// Login timestamp is recorded.
		assert.NotNil(t, repository.users["alice"].LastLogin)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := service.Login(context.Background(), "alice", "nope")
		require.Error(t, err)
		assert.Equal(t, "Incorrect username or password", apperr.As(err).Message)
	})

	t.Run("unknown_user_same_message", func(t *testing.T) {
		_, err := service.Login(context.Background(), "mallory", "Passw0rd")
		require.Error(t, err)
		assert.Equal(t, "Incorrect username or password", apperr.As(err).Message)
	})
}

/*
TestService_Refresh covers the rotation flow: a refresh token works exactly
once, and access tokens are never accepted as refresh tokens.
*/
func TestService_Refresh(t *testing.T) {
	service, _ := newTestService(t)
	registerAlice(t, service)

	pair, err := service.Login(context.Background(), "alice", "Passw0rd")
	require.NoError(t, err)

	t.Run("access_token_rejected", func(t *testing.T) {
		_, err := service.Refresh(context.Background(), pair.AccessToken)
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
	})

	t.Run("rotation", func(t *testing.T) {
		fresh, err := service.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)

		// Replaying the rotated-out token must fail.
		_, err = service.Refresh(context.Background(), pair.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)

		// The freshly issued token still works.
		_, err = service.Refresh(context.Background(), fresh.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("garbage_token", func(t *testing.T) {
		_, err := service.Refresh(context.Background(), "not.a.token")
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
	})
}

/*
TestService_Logout verifies that a revoked access token no longer resolves.
*/
func TestService_Logout(t *testing.T) {
	service, _ := newTestService(t)
	registerAlice(t, service)

	pair, err := service.Login(context.Background(), "alice", "Passw0rd")
	require.NoError(t, err)

	// Token works before logout.
	principal, err := service.ResolveBearer(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)

	require.NoError(t, service.Logout(context.Background(), pair.AccessToken))

	// Same token is dead afterwards, even though the signature still verifies.
	_, err = service.ResolveBearer(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	// Logging out twice fails because the token is already revoked.
	err = service.Logout(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

/*
TestService_ResolveBearer covers the remaining failure modes: refresh tokens
on protected endpoints and subjects that vanished from storage.
*/
func TestService_ResolveBearer(t *testing.T) {
	service, repository := newTestService(t)
	user := registerAlice(t, service)

	pair, err := service.Login(context.Background(), "alice", "Passw0rd")
	require.NoError(t, err)

	t.Run("refresh_token_rejected", func(t *testing.T) {
		_, err := service.ResolveBearer(context.Background(), pair.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
	})

	t.Run("vanished_account", func(t *testing.T) {
		require.NoError(t, repository.Delete(context.Background(), user.ID))

		_, err := service.ResolveBearer(context.Background(), pair.AccessToken)
		require.Error(t, err)
		assert.Equal(t, "Could not validate credentials", apperr.As(err).Message)
	})
}
