// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardfolio/cardfolio/pkg/pagination"
)

/*
TestFromRequest covers query parsing, defaults, and clamping.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "?page=3&page_size=25", 3, 25},
		{"zero_page", "?page=0", 1, 10},
		{"negative_page", "?page=-5", 1, 10},
		{"non_numeric", "?page=abc&page_size=xyz", 1, 10},
		{"oversized_page_size", "?page_size=500", 1, 100},
		{"zero_page_size", "?page_size=0", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/vendors"+tt.query, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantPageSize, params.PageSize)
		})
	}
}

/*
TestParams_Offset checks the SQL OFFSET derivation.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 10, pagination.Params{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 50, pagination.Params{Page: 3, PageSize: 25}.Offset())
}

/*
TestNewMeta verifies total page computation, including the empty result set
and partial final pages.
*/
func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int
	}{
		{"empty", 0, 10, 0},
		{"exact_fit", 100, 10, 10},
		{"partial_last_page", 101, 10, 11},
		{"single_item", 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := pagination.NewMeta(1, tt.pageSize, tt.total)

			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
		})
	}
}
