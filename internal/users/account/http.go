// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/cardfolio/cardfolio/internal/platform/request"
	"github.com/cardfolio/cardfolio/internal/platform/respond"
	"github.com/cardfolio/cardfolio/internal/platform/validate"
	"github.com/cardfolio/cardfolio/internal/users/auth"
	"github.com/cardfolio/cardfolio/pkg/date"
)

// # Definitions & Constructors

// Handler implements profile management HTTP endpoints.
//
// All routes require an authenticated principal; the router mounts this
// handler behind the RequirePrincipal middleware.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with profile routes.
//
// # Endpoints
//   - GET    /me          : Current profile.
//   - PUT    /me          : Partial profile update.
//   - PUT    /me/password : Password change.
//   - DELETE /me          : Account deletion (password confirmed).
//   - GET    /{user_id}   : Profile by ID (self only).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.me)
	router.Put("/me", handler.updateProfile)
	router.Put("/me/password", handler.changePassword)
	router.Delete("/me", handler.deleteAccount)
	router.Get("/{user_id}", handler.getUser)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type deleteAccountRequest struct {
	CurrentPassword string `json:"current_password"`
}

/*
Me returns the authenticated user's own profile.

GET /users/me

Response:
  - 200: User: Current profile
  - 401: ErrUnauthorized: Not authenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
GetUser returns a user profile by ID, self-access only.

GET /users/{user_id}

Response:
  - 200: User: Profile
  - 403: ErrForbidden: Requesting another user's profile
  - 404: ErrNotFound: Account does not exist
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := requestutil.Param(request, "user_id")

	user, err := handler.accountService.GetUser(request.Context(), principal.UserID, targetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile applies a partial update to the authenticated user's profile.

PUT /users/me

Request:
  - Body: updateProfileRequest (Email?, FirstName?, LastName?, DateOfBirth?)

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Bad input
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Email != nil {
		validator.Required(auth.FieldEmail, *input.Email).Email(auth.FieldEmail, *input.Email)
	}
	if input.FirstName != nil {
		validator.Required(auth.FieldFirstName, *input.FirstName).
			MaxLen(auth.FieldFirstName, *input.FirstName, auth.NameMaxLen)
	}
	if input.LastName != nil {
		validator.Required(auth.FieldLastName, *input.LastName).
			MaxLen(auth.FieldLastName, *input.LastName, auth.NameMaxLen)
	}
	if input.DateOfBirth != nil {
		validator.Date(auth.FieldDateOfBirth, *input.DateOfBirth)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	serviceInput := UpdateProfileInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	if input.DateOfBirth != nil {
		parsed, err := date.Parse(*input.DateOfBirth)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(auth.FieldDateOfBirth, "must be a valid date"))
			return
		}
		serviceInput.DateOfBirth = &parsed
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), principal.UserID, serviceInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ChangePassword rotates the authenticated user's password.

PUT /users/me/password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success message
  - 400: ErrInvalidJSON: Weak password or validation failure
  - 401: ErrUnauthorized: Current password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldCurrentPassword, input.CurrentPassword).
		Required(auth.FieldNewPassword, input.NewPassword).
		MinLen(auth.FieldNewPassword, input.NewPassword, auth.PasswordMinLen).
		Password(auth.FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ChangePassword(
		request.Context(),
		principal.UserID,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		auth.FieldMessage: "Password changed successfully",
	})
}

/*
DeleteAccount permanently removes the authenticated user's account.

DELETE /users/me

Request:
  - Body: deleteAccountRequest (CurrentPassword)

Response:
  - 204: No Content: Account deleted
  - 401: ErrUnauthorized: Current password incorrect
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input deleteAccountRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.CurrentPassword == "" {
		respond.Error(writer, request, validate.RequiredError(auth.FieldCurrentPassword, "is required"))
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), principal.UserID, input.CurrentPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
