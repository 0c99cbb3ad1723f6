// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/constants"
	"github.com/cardfolio/cardfolio/internal/platform/ctxutil"
	"github.com/cardfolio/cardfolio/internal/platform/middleware"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
)

// okHandler records whether the chain reached the terminal handler.
func okHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*reached = true
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestValidateRequest covers the Content-Type enforcement matrix.
*/
func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		wantStatus  int
	}{
		{"get_passes_without_type", http.MethodGet, "/vendors", "", http.StatusOK},
		{"health_exempt", http.MethodPost, "/health", "", http.StatusOK},
		{"ready_exempt", http.MethodPost, "/ready", "", http.StatusOK},
		{"options_preflight_exempt", http.MethodOptions, "/vendors", "", http.StatusOK},
		{"post_without_type_rejected", http.MethodPost, "/vendors", "", http.StatusBadRequest},
		{"put_without_type_rejected", http.MethodPut, "/users/me", "", http.StatusBadRequest},
		{"post_json_passes", http.MethodPost, "/auth/register", "application/json", http.StatusOK},
		{"post_form_passes", http.MethodPost, "/auth/token", "application/x-www-form-urlencoded", http.StatusOK},
		{"multipart_passes", http.MethodPost, "/gift-cards", "multipart/form-data; boundary=xyz", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := middleware.ValidateRequest()(okHandler(&reached))

			request := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.contentType != "" {
				request.Header.Set(constants.HeaderContentType, tt.contentType)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, reached)
		})
	}
}

// stubResolver satisfies middleware.PrincipalResolver in tests.
type stubResolver struct {
	principal *sec.Principal
	err       error
	gotToken  string
}

func (s *stubResolver) ResolveBearer(ctx context.Context, token string) (*sec.Principal, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

/*
TestAuthenticate covers the bearer-token extraction flow: anonymous
pass-through, malformed headers, resolver failure, and principal injection.
*/
func TestAuthenticate(t *testing.T) {
	principal := &sec.Principal{UserID: "user-1", Username: "alice"}

	t.Run("no_header_passes_as_anonymous", func(t *testing.T) {
		resolver := &stubResolver{principal: principal}

		var seen *sec.Principal
		handler := middleware.Authenticate(resolver)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetPrincipal(request.Context())
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/vendors", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, seen)
		assert.Empty(t, resolver.gotToken)
	})

	t.Run("malformed_header_rejected", func(t *testing.T) {
		for _, header := range []string{"token-without-scheme", "Basic xyz", "Bearer"} {
			reached := false
			handler := middleware.Authenticate(&stubResolver{principal: principal})(okHandler(&reached))

			request := httptest.NewRequest(http.MethodGet, "/vendors", nil)
			request.Header.Set(constants.HeaderAuthorization, header)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code, "header %q", header)
			assert.False(t, reached)
			assert.Equal(t, constants.BearerScheme, recorder.Header().Get(constants.HeaderWWWAuthenticate))
		}
	})

	t.Run("resolver_failure_rejected", func(t *testing.T) {
		reached := false
		resolver := &stubResolver{err: apperr.Unauthorized("Could not validate credentials")}
		handler := middleware.Authenticate(resolver)(okHandler(&reached))

		request := httptest.NewRequest(http.MethodGet, "/vendors", nil)
		request.Header.Set(constants.HeaderAuthorization, "Bearer some.revoked.token")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, reached)
		assert.Contains(t, recorder.Body.String(), "Could not validate credentials")
	})

	t.Run("valid_token_injects_principal", func(t *testing.T) {
		resolver := &stubResolver{principal: principal}

		var seen *sec.Principal
		handler := middleware.Authenticate(resolver)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetPrincipal(request.Context())
		}))

		request := httptest.NewRequest(http.MethodGet, "/vendors", nil)
		request.Header.Set(constants.HeaderAuthorization, "Bearer good-token")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "good-token", resolver.gotToken)
		require.NotNil(t, seen)
		assert.Equal(t, "user-1", seen.UserID)
	})
}

/*
TestRequirePrincipal verifies that anonymous requests are blocked while
authenticated ones pass.
*/
func TestRequirePrincipal(t *testing.T) {
	t.Run("anonymous_blocked", func(t *testing.T) {
		reached := false
		handler := middleware.RequirePrincipal(okHandler(&reached))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, reached)
	})

	t.Run("authenticated_passes", func(t *testing.T) {
		reached := false
		handler := middleware.RequirePrincipal(okHandler(&reached))

		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: "user-1", Username: "alice"})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, reached)
	})
}

/*
TestRequestID checks generation and client passthrough of X-Request-ID.
*/
func TestRequestID(t *testing.T) {
	t.Run("generates_when_absent", func(t *testing.T) {
		var captured string
		handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			captured = ctxutil.GetRequestID(request.Context())
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, captured)
		assert.Equal(t, captured, recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("honours_client_value", func(t *testing.T) {
		var captured string
		handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			captured = ctxutil.GetRequestID(request.Context())
		}))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "trace-abc-123")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "trace-abc-123", captured)
	})
}

/*
TestRealIP covers proxy header precedence.
*/
func TestRealIP(t *testing.T) {
	t.Run("x_real_ip_wins", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, "203.0.113.9")
		request.Header.Set(constants.HeaderXForwardedFor, "198.51.100.1, 10.0.0.1")

		assert.Equal(t, "203.0.113.9", middleware.RealIP(request))
	})

	t.Run("forwarded_for_first_hop", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXForwardedFor, "198.51.100.1, 10.0.0.1")

		assert.Equal(t, "198.51.100.1", middleware.RealIP(request))
	})

	t.Run("falls_back_to_remote_addr", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ip := middleware.RealIP(request)

		assert.True(t, strings.HasPrefix(ip, "192.0.2."), "got %s", ip)
	})
}
