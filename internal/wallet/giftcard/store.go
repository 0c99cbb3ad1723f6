// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package giftcard

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio/internal/wallet/vendor"
	"github.com/cardfolio/cardfolio/pkg/pagination"
)

// Repository defines the data access contract for gift cards.
type Repository interface {

	/*
		Create persists a new gift card, including optional image blobs.

		Parameters:
		  - context: context.Context
		  - card: *GiftCard

		Returns:
		  - error: Conflict on duplicate card number, or persistence failures
	*/
	Create(context context.Context, card *GiftCard) error

	/*
		FindByID returns the card with the given ID, with the vendor name joined
		and image-presence flags derived. Image bytes are not loaded.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *GiftCard: Hydrated entity without image bytes
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*GiftCard, error)

	/*
		ListByUser returns a page of cards owned by a user, optionally filtered by
		a case-insensitive substring over card number and vendor name.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - search: string (empty disables filtering)
		  - params: pagination.Params

		Returns:
		  - []GiftCard: The page of cards
		  - int: Total matching count
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID, search string, params pagination.Params) ([]GiftCard, int, error)

	/*
		UpdateBalance replaces the balance of an existing card.

		Parameters:
		  - context: context.Context
		  - id: string
		  - balance: decimal.Decimal

		Returns:
		  - error: apperr.NotFound when the card is absent, or persistence failures
	*/
	UpdateBalance(context context.Context, id string, balance decimal.Decimal) error

	/*
		FindImage returns the raw bytes of one side of the card.

		Parameters:
		  - context: context.Context
		  - id: string
		  - imageType: string (ImageTypeFront or ImageTypeBack)

		Returns:
		  - []byte: The stored image
		  - error: apperr.NotFound when the card or the requested image is absent
	*/
	FindImage(context context.Context, id, imageType string) ([]byte, error)
}

// VendorDirectory is the slice of the vendor domain the gift-card service
// needs: existence checks and names for newly created cards.
type VendorDirectory interface {
	FindByID(context context.Context, id string) (*vendor.Vendor, error)
}
