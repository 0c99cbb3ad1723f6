// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

/*
Package auth provides the HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle, from account
creation to token rotation and revocation.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: RESTful JSON, except the form-encoded token endpoint.
  - Security: Orchestrates the paired access/refresh JWT exchange.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/constants"
	requestutil "github.com/cardfolio/cardfolio/internal/platform/request"
	"github.com/cardfolio/cardfolio/internal/platform/respond"
	"github.com/cardfolio/cardfolio/internal/platform/validate"
	"github.com/cardfolio/cardfolio/pkg/date"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points (Registration, Token
// issuance, Refresh rotation, Logout).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /token    : Authenticates (form-encoded) and returns a token pair.
//   - POST /refresh  : Rotates a refresh token into a fresh pair.
//   - POST /logout   : Revokes the presented access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/token", handler.token)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

/*
Register handles the creation of a new user account.

POST /auth/register

Description: Validates input, checks for identity conflicts, and persists
a new user profile to the database.

Request:
  - Body: registerRequest (Username, Email, Password, FirstName, LastName, DateOfBirth)

Response:
  - 201: User: Created user profile (password hash never serialized)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLen).
		MaxLen(FieldUsername, input.Username, UsernameMaxLen).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		Password(FieldPassword, input.Password).
		Required(FieldFirstName, input.FirstName).
		MaxLen(FieldFirstName, input.FirstName, NameMaxLen).
		Required(FieldLastName, input.LastName).
		MaxLen(FieldLastName, input.LastName, NameMaxLen).
		Required(FieldDateOfBirth, input.DateOfBirth).
		Date(FieldDateOfBirth, input.DateOfBirth)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	dateOfBirth, err := date.Parse(input.DateOfBirth)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldDateOfBirth, "must be a valid date"))
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:    input.Username,
		Email:       input.Email,
		Password:    input.Password,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DateOfBirth: dateOfBirth,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Token authenticates a user and issues a token pair.

POST /auth/token

Description: Accepts form-encoded credentials (username, password), verifies
the bcrypt hash, records the login timestamp, and returns paired tokens.

Request:
  - Body: application/x-www-form-urlencoded (username, password)

Response:
  - 200: TokenPair: {access_token, refresh_token, token_type: "bearer"}
  - 401: ErrUnauthorized: Invalid credentials (with WWW-Authenticate: Bearer)
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid form data"))
		return
	}

	username := request.PostFormValue(FieldUsername)
	password := request.PostFormValue(FieldPassword)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username)
	validator.Required(FieldPassword, password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), username, password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Refresh rotates a refresh token into a fresh credential pair.

POST /auth/refresh

Description: Requires a valid, non-expired refresh token in the JSON body.
Access tokens are rejected. The presented token is revoked (rotation) before
the new pair is issued.

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: TokenPair: Fresh credentials
  - 401: ErrUnauthorized: Missing, expired, revoked, or wrong-kind token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "is required"))
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Logout revokes the presented access token.

POST /auth/logout

Description: Places the bearer token's "jti" on the revocation list until its
natural expiry. The raw token is read from the Authorization header rather
than the resolved principal because revocation needs the token itself.

Response:
  - 200: Success message
  - 401: ErrUnauthorized: Missing or invalid bearer token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token, err := bearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Successfully logged out",
	})
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(request *http.Request) (string, error) {
	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", apperr.Unauthorized("Could not validate credentials")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperr.Unauthorized("Could not validate credentials")
	}

	return parts[1], nil
}
