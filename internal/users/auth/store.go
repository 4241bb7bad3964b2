// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/authgate/internal/users/identity"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Lookups return an [apperr.AppError] with code NOT_FOUND when no row matches.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *identity.User: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, id string) (*identity.User, error)

	/*
		FindByEmail returns the account registered with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *identity.User: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByEmail(context context.Context, email string) (*identity.User, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - user: *identity.User

		Returns:
		  - error: identity.ErrEmailTaken when the email is already registered
	*/
	Create(context context.Context, user *identity.User) error

	/*
		UpdateLastLogin records a successful login.

		Parameters:
		  - context: context.Context
		  - id: string
		  - at: time.Time

		Returns:
		  - error: apperr.NotFound or database errors
	*/
	UpdateLastLogin(context context.Context, id string, at time.Time) error
}

// # Credentials

// PasswordHasher hashes new passwords and checks presented ones.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}
