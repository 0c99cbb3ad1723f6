// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
package sec

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cardfolio/cardfolio/pkg/uuid"
)

// Token kinds carried in the "knd" claim. The refresh endpoint only accepts
// refresh tokens; every other protected endpoint only accepts access tokens.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for any other verification failure: bad
	// signature, wrong algorithm, malformed claims, or missing subject.
	ErrTokenInvalid = errors.New("sec: invalid token")
)

// WalletClaims represents the payload embedded inside a Cardfolio JWT.
//
// The subject claim is the account username; TokenID ("jti") uniquely
// identifies this token instance so it can be revoked before natural expiry.
type WalletClaims struct {
	jwt.RegisteredClaims

	// Kind distinguishes access tokens from refresh tokens.
	Kind string `json:"knd"`
}

// TokenID returns the unique identifier ("jti") of this token instance.
func (c *WalletClaims) TokenID() string { return c.ID }

// Subject returns the username the token was issued for.
func (c *WalletClaims) Subject() string { return c.RegisteredClaims.Subject }

// TokenService handles generation and verification of JWT tokens using a
// symmetric MAC (HMAC-SHA256). The signing secret is held in memory for the
// process lifetime and never logged.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a new TokenService.
//
// TTLs are fixed at construction; callers cannot override them per token.
func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test hook for expiry scenarios.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	service.now = now
	return service
}

// IssueAccessToken creates a short-lived signed access token for a username.
func (service *TokenService) IssueAccessToken(username string) (string, error) {
	return service.issue(username, TokenKindAccess, service.accessTTL)
}

// IssueRefreshToken creates a long-lived signed refresh token for a username.
func (service *TokenService) IssueRefreshToken(username string) (string, error) {
	return service.issue(username, TokenKindRefresh, service.refreshTTL)
}

// AccessTokenTTL reports the configured access token lifetime.
func (service *TokenService) AccessTokenTTL() time.Duration { return service.accessTTL }

// issue encodes {sub, exp, iat, jti, iss, knd} and signs with the shared secret.
func (service *TokenService) issue(username, kind string, timeToLive time.Duration) (string, error) {
	currentTime := service.now()
	claims := WalletClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    service.issuer,
			ID:        uuid.New(),
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Kind: kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", ErrTokenInvalid
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// A token is valid if and only if its signature verifies under the current
// secret AND its expiry is in the future AND it carries a subject. Expired
// tokens fail with [ErrTokenExpired]; every other failure is [ErrTokenInvalid].
// The two are distinguishable for diagnostics, but callers map both to a
// single unauthenticated response.
func (service *TokenService) VerifyToken(tokenString string) (*WalletClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &WalletClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(service.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*WalletClaims)
	if !ok || !token.Valid || claims.Subject() == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
