// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/constants"
	"github.com/cardfolio/cardfolio/internal/platform/ctxutil"
	"github.com/cardfolio/cardfolio/internal/platform/respond"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
)

// PrincipalResolver turns a bearer token into an authenticated principal.
//
// # Why an interface?
//
// Defining PrincipalResolver here decouples the middleware from the auth
// service implementation, allowing us to easily inject mocks during unit testing.
//
// The resolver is expected to verify the token signature and kind, consult the
// revocation list, and confirm the subject still exists in storage.
type PrincipalResolver interface {
	ResolveBearer(ctx context.Context, token string) (*sec.Principal, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, resolve the token via [PrincipalResolver].
//  4. Inject [*sec.Principal] into the request context for downstream use.
//
// Every failure mode (bad format, bad signature, expired, revoked, unknown
// subject) collapses into a single 401 response so the error itself leaks
// nothing about which check failed.
func Authenticate(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Could not validate credentials"))
				return
			}

			// ── 3. Token Resolution ───────────────────────────────────────────
			principal, err := resolver.ResolveBearer(request.Context(), parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Could not validate credentials"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequirePrincipal blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Principal] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Could not validate credentials"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
