// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package sec

// Principal is the resolved identity behind an authenticated request.
//
// It is derived transiently from a verified token plus a storage lookup and
// is never persisted independently.
type Principal struct {
	// UserID is the account's primary key (UUID).
	UserID string `json:"user_id"`

	// Username matches the token's subject claim.
	Username string `json:"username"`
}
