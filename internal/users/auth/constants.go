// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package auth

// # Authentication Constraints

const (
	// UsernameMinLen is the minimum accepted username length.
	UsernameMinLen = 3

	// UsernameMaxLen is the maximum accepted username length.
	UsernameMaxLen = 50

	// PasswordMinLen is the minimum accepted password length.
	// Complexity (upper, lower, digit) is enforced on top of this.
	PasswordMinLen = 8

	// NameMaxLen is the maximum accepted length for first and last names.
	NameMaxLen = 50

	// TokenTypeBearer is the token_type value returned with issued token pairs.
	TokenTypeBearer = "bearer"
)
