// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package giftcard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/dberr"
	"github.com/cardfolio/cardfolio/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the gift-card Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// cardColumns are the blob-free columns selected for card reads, with the
// vendor name joined and image presence derived in SQL.
const cardColumns = `
	c.id, c.userid, c.vendorid, c.cardnumber, c.pin, c.balance, c.expirationdate,
	(c.frontimage IS NOT NULL), (c.backimage IS NOT NULL),
	v.companyname, c.createdat, c.updatedat`

// scanCard hydrates a single joined card row.
func scanCard(row pgx.Row) (*GiftCard, error) {
	card := &GiftCard{}
	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.VendorID,
		&card.CardNumber,
		&card.PIN,
		&card.Balance,
		&card.ExpirationDate,
		&card.HasFrontImage,
		&card.HasBackImage,
		&card.VendorName,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return card, nil
}

/*
Create persists a new gift card record into the wallet.giftcard table.

Parameters:
  - context: context.Context
  - card: *GiftCard (Entity to persist, images may be nil)

Returns:
  - error: apperr.Conflict on duplicate card number, or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, card *GiftCard) error {
	const query = `
		INSERT INTO wallet.giftcard (
			id, userid, vendorid, cardnumber, pin, balance, expirationdate,
			frontimage, backimage, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		card.ID,
		card.UserID,
		card.VendorID,
		card.CardNumber,
		card.PIN,
		card.Balance,
		card.ExpirationDate,
		card.FrontImage,
		card.BackImage,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Card number already exists")
		}
		return fmt.Errorf("postgres_giftcard_repo_create_failed: %w", err)
	}

	card.HasFrontImage = card.FrontImage != nil
	card.HasBackImage = card.BackImage != nil
	return nil
}

/*
FindByID retrieves a gift card without loading image blobs.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *GiftCard: Hydrated entity (flags set, vendor name joined, blobs nil)
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*GiftCard, error) {
	const query = `
		SELECT ` + cardColumns + `
		FROM wallet.giftcard c
		JOIN wallet.vendor v ON c.vendorid = v.id
		WHERE c.id = $1`

	card, err := scanCard(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Gift card")
		}
		return nil, fmt.Errorf("postgres_giftcard_repo_find_failed: %w", err)
	}

	return card, nil
}

/*
ListByUser retrieves a page of a user's cards with optional search over card
number and vendor name.

Parameters:
  - context: context.Context
  - userID: string
  - search: string
  - params: pagination.Params

Returns:
  - []GiftCard: Ordered page of cards
  - int: Total matching count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByUser(context context.Context, userID, search string, params pagination.Params) ([]GiftCard, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM wallet.giftcard c
		JOIN wallet.vendor v ON c.vendorid = v.id
		WHERE c.userid = $1
		  AND ($2 = '' OR c.cardnumber ILIKE '%' || $2 || '%' OR v.companyname ILIKE '%' || $2 || '%')`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_giftcard_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT ` + cardColumns + `
		FROM wallet.giftcard c
		JOIN wallet.vendor v ON c.vendorid = v.id
		WHERE c.userid = $1
		  AND ($2 = '' OR c.cardnumber ILIKE '%' || $2 || '%' OR v.companyname ILIKE '%' || $2 || '%')
		ORDER BY c.createdat DESC
		LIMIT $3 OFFSET $4`

	rows, err := repository.pool.Query(context, listQuery, userID, search, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_giftcard_repo_list_failed: %w", err)
	}
	defer rows.Close()

	cards := make([]GiftCard, 0, params.PageSize)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_giftcard_repo_scan_failed: %w", err)
		}
		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_giftcard_repo_rows_failed: %w", err)
	}

	return cards, total, nil
}

/*
UpdateBalance replaces the balance of an existing card.

Parameters:
  - context: context.Context
  - id: string
  - balance: decimal.Decimal

Returns:
  - error: apperr.NotFound when the card is absent, or execution errors
*/
func (repository *PostgresRepository) UpdateBalance(context context.Context, id string, balance decimal.Decimal) error {
	const query = "UPDATE wallet.giftcard SET balance = $2, updatedat = $3 WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id, balance, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_giftcard_repo_update_balance_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Gift card")
	}

	return nil
}

/*
FindImage retrieves one side's raw image bytes for a card.

Parameters:
  - context: context.Context
  - id: string
  - imageType: string (ImageTypeFront or ImageTypeBack)

Returns:
  - []byte: The stored image
  - error: apperr.NotFound when the card or the requested image is absent
*/
func (repository *PostgresRepository) FindImage(context context.Context, id, imageType string) ([]byte, error) {
	column := "frontimage"
	if imageType == ImageTypeBack {
		column = "backimage"
	}

	query := "SELECT " + column + " FROM wallet.giftcard WHERE id = $1"

	var image []byte
	err := repository.pool.QueryRow(context, query, id).Scan(&image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Gift card")
		}
		return nil, fmt.Errorf("postgres_giftcard_repo_find_image_failed: %w", err)
	}

	if image == nil {
		return nil, apperr.NotFound("Image")
	}

	return image, nil
}
