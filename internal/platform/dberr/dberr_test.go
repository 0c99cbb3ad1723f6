// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/dberr"
)

/*
TestWrap maps driver-level failures onto client-safe AppErrors.
*/
func TestWrap(t *testing.T) {
	t.Run("no_rows_becomes_not_found", func(t *testing.T) {
		err := dberr.Wrap(pgx.ErrNoRows, "Vendor")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
		assert.Equal(t, "Vendor not found", ae.Message)
	})

	t.Run("unique_violation_becomes_conflict", func(t *testing.T) {
		err := dberr.Wrap(&pgconn.PgError{Code: "23505"}, "Vendor")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})

	t.Run("foreign_key_violation_becomes_validation_error", func(t *testing.T) {
		err := dberr.Wrap(&pgconn.PgError{Code: "23503"}, "Gift card")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("unknown_error_becomes_internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := dberr.Wrap(cause, "Vendor")

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INTERNAL_ERROR", ae.Code)
		// The cause survives for server-side logging.
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil_stays_nil", func(t *testing.T) {
		assert.NoError(t, dberr.Wrap(nil, "Vendor"))
	})
}

/*
TestIsUniqueViolation detects 23505 anywhere in the chain.
*/
func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, dberr.IsUniqueViolation(errors.New("other")))
	assert.False(t, dberr.IsUniqueViolation(nil))
}
