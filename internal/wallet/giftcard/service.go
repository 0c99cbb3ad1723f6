// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package giftcard

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/pkg/date"
	"github.com/cardfolio/cardfolio/pkg/pagination"
	"github.com/cardfolio/cardfolio/pkg/uuid"
)

// # Service Layer

// Service orchestrates business logic for gift cards.
//
// Every operation takes the authenticated principal's user ID and enforces
// ownership before touching storage state.
type Service struct {
	repository Repository
	vendors    VendorDirectory
	logger     *slog.Logger
}

// NewService constructs a new gift-card [Service].
func NewService(repository Repository, vendors VendorDirectory, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		vendors:    vendors,
		logger:     logger,
	}
}

// CreateInput holds the data required to register a new gift card.
type CreateInput struct {
	UserID         string
	VendorID       string
	CardNumber     string
	PIN            *string
	Balance        decimal.Decimal
	ExpirationDate *date.Date
	FrontImage     []byte
	BackImage      []byte
}

/*
Create registers a new gift card in the principal's wallet.

Description: Rejects attempts to create cards for other users, confirms the
vendor exists, and requires a strictly positive starting balance.

Parameters:
  - context: context.Context
  - principalID: string (authenticated user)
  - input: CreateInput

Returns:
  - *GiftCard: Created entity with vendor name and image flags
  - error: Forbidden, not found, validation, conflict, or storage failures
*/
func (service *Service) Create(context context.Context, principalID string, input CreateInput) (*GiftCard, error) {

	// Ownership: cards can only be created in the principal's own wallet.
	if input.UserID != principalID {
		return nil, apperr.Forbidden("Not authorized to create gift cards for other users")
	}

	// The referenced vendor must exist.
	cardVendor, err := service.vendors.FindByID(context, input.VendorID)
	if err != nil {
		return nil, apperr.NotFound("Vendor")
	}

	// A card with nothing on it is not worth tracking.
	if !input.Balance.IsPositive() {
		return nil, apperr.ValidationError("Balance must be greater than 0")
	}

	card := &GiftCard{
		ID:             uuid.New(),
		UserID:         input.UserID,
		VendorID:       input.VendorID,
		CardNumber:     input.CardNumber,
		PIN:            input.PIN,
		Balance:        input.Balance,
		ExpirationDate: input.ExpirationDate,
		FrontImage:     input.FrontImage,
		BackImage:      input.BackImage,
	}

	if err := service.repository.Create(context, card); err != nil {
		return nil, err
	}

	card.VendorName = cardVendor.CompanyName

	service.logger.Info("gift_card_created",
		slog.String("card_id", card.ID),
		slog.String("user_id", card.UserID),
		slog.String("vendor_id", card.VendorID),
	)

	// Image bytes stay out of JSON responses
	card.FrontImage = nil
	card.BackImage = nil
	return card, nil
}

/*
ListForUser retrieves a page of a user's cards, self-access only.

Parameters:
  - context: context.Context
  - principalID: string
  - userID: string (wallet owner being listed)
  - search: string
  - params: pagination.Params

Returns:
  - []GiftCard: Page of cards
  - pagination.Meta: Metadata for the response envelope
  - error: Forbidden or retrieval failures
*/
func (service *Service) ListForUser(context context.Context, principalID, userID, search string, params pagination.Params) ([]GiftCard, pagination.Meta, error) {
	if userID != principalID {
		return nil, pagination.Meta{}, apperr.Forbidden("Not authorized to view these gift cards")
	}

	cards, total, err := service.repository.ListByUser(context, userID, search, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return cards, pagination.NewMeta(params.Page, params.PageSize, total), nil
}

/*
Get retrieves a single gift card, enforcing ownership.

Parameters:
  - context: context.Context
  - principalID: string
  - cardID: string

Returns:
  - *GiftCard: Hydrated entity
  - error: Not found, forbidden, or retrieval failures
*/
func (service *Service) Get(context context.Context, principalID, cardID string) (*GiftCard, error) {
	card, err := service.repository.FindByID(context, cardID)
	if err != nil {
		return nil, err
	}

	if card.UserID != principalID {
		return nil, apperr.Forbidden("Not authorized to view this gift card")
	}

	return card, nil
}

/*
UpdateBalance replaces a card's balance after a purchase or top-up.

Description: Ownership is enforced; the new balance may be zero (fully spent)
but never negative.

Parameters:
  - context: context.Context
  - principalID: string
  - cardID: string
  - balance: decimal.Decimal

Returns:
  - *GiftCard: Updated entity
  - error: Not found, forbidden, validation, or storage failures
*/
func (service *Service) UpdateBalance(context context.Context, principalID, cardID string, balance decimal.Decimal) (*GiftCard, error) {
	card, err := service.Get(context, principalID, cardID)
	if err != nil {
		return nil, err
	}

	if balance.IsNegative() {
		return nil, apperr.ValidationError("Balance cannot be negative")
	}

	if err := service.repository.UpdateBalance(context, cardID, balance); err != nil {
		return nil, err
	}

	service.logger.Info("gift_card_balance_updated",
		slog.String("card_id", cardID),
		slog.String("balance", balance.String()),
	)

	card.Balance = balance
	return card, nil
}

/*
GetImage retrieves one side's raw image bytes, enforcing ownership.

Parameters:
  - context: context.Context
  - principalID: string
  - cardID: string
  - imageType: string (ImageTypeFront or ImageTypeBack)

Returns:
  - []byte: The stored image
  - error: Not found, forbidden, or retrieval failures
*/
func (service *Service) GetImage(context context.Context, principalID, cardID, imageType string) ([]byte, error) {

	// Ownership gate before touching the blob column.
	if _, err := service.Get(context, principalID, cardID); err != nil {
		return nil, err
	}

	return service.repository.FindImage(context, cardID, imageType)
}
