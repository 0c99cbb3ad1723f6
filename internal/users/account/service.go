// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

// Package account implements profile management for authenticated users.
//
// It builds on the auth domain's user entity and repository, adding the
// self-service operations: profile retrieval, partial updates, password
// changes, and account deletion.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
	"github.com/cardfolio/cardfolio/internal/users/auth"
	"github.com/cardfolio/cardfolio/pkg/date"
)

// # Service Layer

// Service orchestrates business logic for user profiles.
type Service struct {
	userRepository auth.UserRepository
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(userRepo auth.UserRepository, logger *slog.Logger) *Service {
	return &Service{
		userRepository: userRepo,
		logger:         logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
GetUser retrieves a user profile by ID, enforcing self-access.

Description: Profiles are private. Requests for any account other than the
authenticated principal's own are rejected before the storage lookup, so the
response does not reveal whether the target account exists.

Parameters:
  - context: context.Context
  - principalID: string (the authenticated user)
  - targetID: string (the requested profile)

Returns:
  - *auth.User: The hydrated user profile
  - error: Forbidden, not found, or execution failures
*/
func (service *Service) GetUser(context context.Context, principalID, targetID string) (*auth.User, error) {
	if targetID != principalID {
		return nil, apperr.Forbidden("Not authorized to access this user")
	}

	return service.GetProfile(context, targetID)
}

// UpdateProfileInput defines the mutable subset of user profile fields.
// Nil pointers leave the corresponding field untouched.
type UpdateProfileInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	DateOfBirth *date.Date
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overlays provided fields, and
synchronizes the change to persistent storage. Email changes are checked for
collisions with other accounts.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Conflict, update, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Email uniqueness check before applying the delta
	if input.Email != nil && *input.Email != user.Email {
		existing, err := service.userRepository.FindByEmail(context, *input.Email)
		if err == nil && existing.ID != userID {
			return nil, apperr.Conflict("Email is already registered")
		}
		user.Email = *input.Email
	}

	// Apply delta updates
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}

	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if input.DateOfBirth != nil {
		user.DateOfBirth = *input.DateOfBirth
	}

	// Persist changes
	if err := service.userRepository.Update(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

// # Credential Management

/*
ChangePassword rotates the authenticated user's password.

Description: Verifies the current password before hashing and persisting the
replacement.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("account_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return err
	}

	service.logger.Info("user_password_changed", slog.String("user_id", userID))

	return nil
}

/*
DeleteAccount permanently removes a user account.

Description: Requires the current password as confirmation. The deletion is a
hard delete; gift cards owned by the account are removed by cascade.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string

Returns:
  - error: Unauthorized or execution failures
*/
func (service *Service) DeleteAccount(context context.Context, userID, currentPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	if err := service.userRepository.Delete(context, userID); err != nil {
		return err
	}

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))

	return nil
}
