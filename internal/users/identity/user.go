// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity defines the account entity shared by the auth domain and the
request-authentication middleware.

# Architecture

This package sits below both [auth] and [middleware] so the middleware can
attach a resolved [User] to the request context without importing the
delivery layer. Entities defined here have no external dependencies.
*/
package identity

import (
	"errors"
	"time"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   time.Time  `json:"date_joined"`
}

// Public is the client-safe projection of a [User].
type Public struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	LastLogin  *time.Time `json:"last_login"`
	DateJoined string     `json:"date_joined"`
}

// DateLayout is the wire format of [User.DateJoined].
const DateLayout = "2006-01-02"

// Public returns the fields of the user that may leave the server.
func (user *User) Public() Public {
	return Public{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		IsActive:   user.IsActive,
		LastLogin:  user.LastLogin,
		DateJoined: user.DateJoined.Format(DateLayout),
	}
}

// # Store Errors

// ErrEmailTaken is returned by user stores when the unique email constraint rejects an insert.
var ErrEmailTaken = errors.New("identity: email already registered")
