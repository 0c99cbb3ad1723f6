// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

/*
Package giftcard implements the core wallet domain: gift cards owned by users.

A gift card references a vendor, carries an exact decimal balance, and may
store front/back images of the physical card. Cards are strictly private:
every operation checks that the requesting principal owns the card.
*/
package giftcard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio/pkg/date"
)

// # Domain Entities

// GiftCard represents a stored-value card in a user's wallet.
//
// Image blobs live only in storage; responses expose the derived
// HasFrontImage/HasBackImage flags and VendorName joined from the vendor row.
type GiftCard struct {
	ID             string          `json:"card_id"`
	UserID         string          `json:"user_id"`
	VendorID       string          `json:"vendor_id"`
	CardNumber     string          `json:"card_number"`
	PIN            *string         `json:"pin,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	ExpirationDate *date.Date      `json:"expiration_date,omitempty"`
	FrontImage     []byte          `json:"-"`
	BackImage      []byte          `json:"-"`
	HasFrontImage  bool            `json:"has_front_image"`
	HasBackImage   bool            `json:"has_back_image"`
	VendorName     string          `json:"vendor_name"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// # Image Sides

// Image side identifiers accepted by the image endpoint.
const (
	ImageTypeFront = "front"
	ImageTypeBack  = "back"
)

// # Field Identifiers

const (
	FieldUserID         = "user_id"
	FieldVendorID       = "vendor_id"
	FieldCardNumber     = "card_number"
	FieldPIN            = "pin"
	FieldBalance        = "balance"
	FieldExpirationDate = "expiration_date"
	FieldFrontImage     = "front_image"
	FieldBackImage      = "back_image"
	FieldImageType      = "image_type"
)
