// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

/*
Package auth implements the core identity and access management system.

It handles everything from user registration and secure password hashing to
token lifecycle management via paired HS256 JWTs and a Redis-backed
revocation list.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh, Logout).
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Revocation).
  - Security: Leverages bcrypt hashing and HMAC-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
	"github.com/cardfolio/cardfolio/pkg/date"
	"github.com/cardfolio/cardfolio/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying JWTs.
//
// The concrete implementation is [sec.TokenService]; the indirection keeps the
// service testable with deterministic token fakes.
type TokenProvider interface {
	// IssueAccessToken creates a signed short-lived access token for a username.
	IssueAccessToken(username string) (string, error)

	// IssueRefreshToken creates a signed long-lived refresh token for a username.
	IssueRefreshToken(username string) (string, error)

	// VerifyToken checks a JWT's signature and validity window.
	VerifyToken(tokenString string) (*sec.WalletClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token logic must be reviewed by the security team.
type Service struct {
	userRepository  UserRepository
	revocationStore RevocationStore
	tokenProvider   TokenProvider
	now             func() time.Time
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(userRepo UserRepository, revocations RevocationStore, tokens TokenProvider) *Service {
	return &Service{
		userRepository:  userRepo,
		revocationStore: revocations,
		tokenProvider:   tokens,
		now:             time.Now,
	}
}

// WithClock overrides the time source. Test hook for revocation TTL scenarios.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth date.Date
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling password hashing and
identity conflict detection.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify username uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err = service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		DateOfBirth:  input.DateOfBirth,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

/*
Login validates user credentials and issues a fresh token pair.

Description: Verifies identity, performs constant-time password comparison via
bcrypt, records the login timestamp, and issues paired access/refresh tokens.

Parameters:
  - context: context.Context
  - username: string
  - password: string

Returns:
  - *TokenPair: Transport-ready credentials
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, username, password string) (*TokenPair, error) {
	user, err := service.userRepository.FindByUsername(context, username)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Incorrect username or password")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Incorrect username or password")
	}

	// Record the successful authentication. Non-fatal on failure.
	_ = service.userRepository.UpdateLastLogin(context, user.ID, service.now())

	return service.issuePair(user.Username)
}

/*
Refresh implements the refresh-token rotation mechanism.

Description: Requires a valid, non-expired refresh token. Access tokens are
rejected outright. The presented refresh token is revoked for its remaining
lifetime (replay mitigation) and a fresh pair is issued.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := service.checkToken(context, refreshToken, sec.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	// The subject must still resolve to a live account.
	user, err := service.userRepository.FindByUsername(context, claims.Subject())
	if err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	// Rotation: revoke the presented refresh token so it can never be replayed.
	if err := service.revocationStore.Revoke(context, claims.TokenID(), service.remainingLife(claims)); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	return service.issuePair(user.Username)
}

/*
Logout revokes the presented access token until its natural expiry.

Description: The token's "jti" claim lands on the revocation list with a TTL
equal to its remaining lifetime. Subsequent requests with the same token fail
authentication even though the signature still verifies.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - error: Unauthorized or revocation failures
*/
func (service *Service) Logout(context context.Context, accessToken string) error {
	claims, err := service.checkToken(context, accessToken, sec.TokenKindAccess)
	if err != nil {
		return err
	}

	if err := service.revocationStore.Revoke(context, claims.TokenID(), service.remainingLife(claims)); err != nil {
		return fmt.Errorf("auth_service_logout_revoke_failed: %w", err)
	}

	return nil
}

// # Bearer Resolution

/*
ResolveBearer turns a bearer access token into an authenticated principal.

Description: Verifies the token (kind must be access), consults the revocation
list, and confirms the subject still exists in storage. Every failure mode
collapses into the same Unauthorized error so callers cannot distinguish a bad
signature from a vanished account.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Principal: The resolved identity
  - error: apperr.Unauthorized on any failure
*/
func (service *Service) ResolveBearer(context context.Context, token string) (*sec.Principal, error) {
	claims, err := service.checkToken(context, token, sec.TokenKindAccess)
	if err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByUsername(context, claims.Subject())
	if err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	return &sec.Principal{UserID: user.ID, Username: user.Username}, nil
}

// # Internal Helpers

// checkToken verifies signature, kind, and revocation status in one pass.
func (service *Service) checkToken(context context.Context, token, kind string) (*sec.WalletClaims, error) {
	claims, err := service.tokenProvider.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	if claims.Kind != kind {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	revoked, err := service.revocationStore.IsRevoked(context, claims.TokenID())
	if err != nil {
		return nil, fmt.Errorf("auth_service_revocation_check_failed: %w", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	return claims, nil
}

// issuePair generates a fresh access/refresh token pair for a username.
func (service *Service) issuePair(username string) (*TokenPair, error) {
	accessToken, err := service.tokenProvider.IssueAccessToken(username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.IssueRefreshToken(username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
	}, nil
}

// remainingLife computes how long a token would still verify.
func (service *Service) remainingLife(claims *sec.WalletClaims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(service.now())
}
