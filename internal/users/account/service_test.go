// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
	"github.com/cardfolio/cardfolio/internal/users/account"
	"github.com/cardfolio/cardfolio/internal/users/auth"
	"github.com/cardfolio/cardfolio/pkg/date"
)

// fakeUserRepository is an in-memory auth.UserRepository keyed by user ID.
type fakeUserRepository struct {
	users map[string]*auth.User
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if user, found := f.users[id]; found {
		return user, nil
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
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) Create(ctx context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) Update(ctx context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	user, found := f.users[userID]
	if !found {
		return apperr.NotFound("User")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepository) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	return nil
}

func (f *fakeUserRepository) Delete(ctx context.Context, userID string) error {
	if _, found := f.users[userID]; !found {
		return apperr.NotFound("User")
	}
	delete(f.users, userID)
	return nil
}

func newTestService(t *testing.T) (*account.Service, *fakeUserRepository) {
	t.Helper()

	hash, err := sec.HashPassword("Passw0rd")
	require.NoError(t, err)

	repository := &fakeUserRepository{users: map[string]*auth.User{
		"user-1": {
			ID:           "user-1",
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: hash,
			FirstName:    "Alice",
			LastName:     "Smith",
			DateOfBirth:  date.New(1990, time.May, 15),
		},
		"user-2": {
			ID:       "user-2",
			Username: "bob",
			Email:    "bob@example.com",
		},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return account.NewService(repository, logger), repository
}

/*
TestService_GetUser enforces self-access before the storage lookup.
*/
func TestService_GetUser(t *testing.T) {
	service, _ := newTestService(t)

	t.Run("self", func(t *testing.T) {
		user, err := service.GetUser(context.Background(), "user-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		_, err := service.GetUser(context.Background(), "user-1", "user-2")
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("nonexistent_target_also_forbidden", func(t *testing.T) {
		// Existence must not leak: unknown IDs get the same 403, not a 404.
		_, err := service.GetUser(context.Background(), "user-1", "no-such-user")
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})
}

/*
TestService_UpdateProfile covers partial updates and email collisions.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, repository := newTestService(t)

	t.Run("partial_update", func(t *testing.T) {
		newName := "Alicia"
		user, err := service.UpdateProfile(context.Background(), "user-1", account.UpdateProfileInput{
			FirstName: &newName,
		})
		require.NoError(t, err)

		assert.Equal(t, "Alicia", user.FirstName)
		// Untouched fields survive.
		assert.Equal(t, "Smith", user.LastName)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("email_taken_by_other_account", func(t *testing.T) {
		taken := "bob@example.com"
		_, err := service.UpdateProfile(context.Background(), "user-1", account.UpdateProfileInput{
			Email: &taken,
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("email_change", func(t *testing.T) {
		fresh := "alice.new@example.com"
		user, err := service.UpdateProfile(context.Background(), "user-1", account.UpdateProfileInput{
			Email: &fresh,
		})
		require.NoError(t, err)
		assert.Equal(t, fresh, user.Email)
		assert.Equal(t, fresh, repository.users["user-1"].Email)
	})
}

/*
TestService_ChangePassword requires the current password before rotating.
*/
func TestService_ChangePassword(t *testing.T) {
	service, repository := newTestService(t)

	t.Run("wrong_current_password", func(t *testing.T) {
		err := service.ChangePassword(context.Background(), "user-1", "nope", "NewPassw0rd")
		require.Error(t, err)
		assert.Equal(t, "Current password is incorrect", apperr.As(err).Message)
	})

	t.Run("success", func(t *testing.T) {
		err := service.ChangePassword(context.Background(), "user-1", "Passw0rd", "NewPassw0rd")
		require.NoError(t, err)

		assert.True(t, sec.CheckPasswordHash("NewPassw0rd", repository.users["user-1"].PasswordHash))
		assert.False(t, sec.CheckPasswordHash("Passw0rd", repository.users["user-1"].PasswordHash))
	})
}

/*
TestService_DeleteAccount requires password confirmation for the hard delete.
*/
func TestService_DeleteAccount(t *testing.T) {
	service, repository := newTestService(t)

	t.Run("wrong_password", func(t *testing.T) {
		err := service.DeleteAccount(context.Background(), "user-1", "nope")
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
		assert.Contains(t, repository.users, "user-1")
	})

	t.Run("success", func(t *testing.T) {
		err := service.DeleteAccount(context.Background(), "user-1", "Passw0rd")
		require.NoError(t, err)
		assert.NotContains(t, repository.users, "user-1")
	})
}
