// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package giftcard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	requestutil "github.com/cardfolio/cardfolio/internal/platform/request"
	"github.com/cardfolio/cardfolio/internal/platform/respond"
	"github.com/cardfolio/cardfolio/internal/platform/validate"
	"github.com/cardfolio/cardfolio/pkg/date"
	"github.com/cardfolio/cardfolio/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements gift-card HTTP endpoints.
//
// All routes require an authenticated principal; the router mounts this
// handler behind the RequirePrincipal middleware.
type Handler struct {
	cardService    *Service
	maxUploadBytes int64
}

// NewHandler constructs a new [Handler].
//
// maxUploadBytes caps card image uploads; it comes from application config.
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		cardService:    service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns a [chi.Router] with card-scoped routes.
//
// # Endpoints
//   - POST /                             : Create card (multipart, optional images).
//   - GET  /{card_id}                    : Card detail.
//   - PUT  /{card_id}/balance            : Replace balance.
//   - GET  /{card_id}/images/{image_type}: Raw front/back image bytes.
//
// The per-user listing (GET /users/{user_id}/gift-cards) is registered
// separately via [Handler.ListUserCards] since it lives under the users tree.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/{card_id}", handler.get)
	router.Put("/{card_id}/balance", handler.updateBalance)
	router.Get("/{card_id}/images/{image_type}", handler.getImage)

	return router
}

// # Request Payloads

type updateBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

/*
Create registers a new gift card with optional images.

POST /gift-cards

Request:
  - Body: multipart/form-data (user_id, vendor_id, card_number, pin?, balance,
    expiration_date?, front_image?, back_image?)

Response:
  - 201: GiftCard: Created card (image flags derived, no blobs)
  - 400: ErrValidation: Missing fields, bad balance, or non-image uploads
  - 403: ErrForbidden: user_id is not the authenticated principal
  - 404: ErrNotFound: Vendor does not exist
  - 409: ErrConflict: Card number already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	frontUpload, err := requestutil.ReadOptionalImageUpload(request, FieldFrontImage, handler.maxUploadBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	backUpload, err := requestutil.ReadOptionalImageUpload(request, FieldBackImage, handler.maxUploadBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := request.PostFormValue(FieldUserID)
	vendorID := request.PostFormValue(FieldVendorID)
	cardNumber := request.PostFormValue(FieldCardNumber)
	rawBalance := request.PostFormValue(FieldBalance)
	rawExpiration := request.PostFormValue(FieldExpirationDate)
	rawPIN := request.PostFormValue(FieldPIN)

	validator := &validate.Validator{}
	validator.Required(FieldUserID, userID).
		Required(FieldVendorID, vendorID).
		Required(FieldCardNumber, cardNumber).
		Required(FieldBalance, rawBalance)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Balance must be a decimal number"))
		return
	}

	input := CreateInput{
		UserID:     userID,
		VendorID:   vendorID,
		CardNumber: cardNumber,
		Balance:    balance,
	}

	if rawPIN != "" {
		input.PIN = &rawPIN
	}

	if rawExpiration != "" {
		expiration, err := date.Parse(rawExpiration)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldExpirationDate, "must be a valid date"))
			return
		}
		input.ExpirationDate = &expiration
	}

	if frontUpload != nil {
		input.FrontImage = frontUpload.Data
	}
	if backUpload != nil {
		input.BackImage = backUpload.Data
	}

	card, err := handler.cardService.Create(request.Context(), principal.UserID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, card)
}

/*
ListUserCards returns a paginated listing of a user's gift cards.

GET /users/{user_id}/gift-cards?page=&page_size=&search=

Description: Self-access only; search covers card number and vendor name.

Response:
  - 200: PaginatedEnvelope: Cards plus pagination metadata
  - 403: ErrForbidden: Listing another user's wallet
*/
func (handler *Handler) ListUserCards(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "user_id")
	params := pagination.FromRequest(request)
	search := request.URL.Query().Get("search")

	cards, meta, err := handler.cardService.ListForUser(request.Context(), principal.UserID, userID, search, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, cards, meta)
}

/*
Get returns a single gift card.

GET /gift-cards/{card_id}

Response:
  - 200: GiftCard: Detail with vendor name and image flags
  - 403: ErrForbidden: Card belongs to another user
  - 404: ErrNotFound: Card does not exist
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cardID := requestutil.Param(request, "card_id")

	card, err := handler.cardService.Get(request.Context(), principal.UserID, cardID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, card)
}

/*
UpdateBalance replaces a card's balance.

PUT /gift-cards/{card_id}/balance

Request:
  - Body: updateBalanceRequest (Balance)

Response:
  - 200: GiftCard: Updated card
  - 400: ErrValidation: Negative balance or bad JSON
  - 403: ErrForbidden: Card belongs to another user
  - 404: ErrNotFound: Card does not exist
*/
func (handler *Handler) updateBalance(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cardID := requestutil.Param(request, "card_id")

	var input updateBalanceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	card, err := handler.cardService.UpdateBalance(request.Context(), principal.UserID, cardID, input.Balance)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, card)
}

/*
GetImage serves one side's raw image bytes for a card.

GET /gift-cards/{card_id}/images/{image_type}

Response:
  - 200: image bytes (image/png)
  - 400: ErrValidation: image_type not "front" or "back"
  - 403: ErrForbidden: Card belongs to another user
  - 404: ErrNotFound: Card absent or no image stored on that side
*/
func (handler *Handler) getImage(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cardID := requestutil.Param(request, "card_id")
	imageType := requestutil.Param(request, "image_type")

	validator := &validate.Validator{}
	validator.OneOf(FieldImageType, imageType, ImageTypeFront, ImageTypeBack)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.cardService.GetImage(request.Context(), principal.UserID, cardID, imageType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Image(writer, "", image)
}
