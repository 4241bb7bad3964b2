// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Input Constraints

const (
	// MaxEmailLength follows the RFC 5321 path limit.
	MaxEmailLength = 254

	// MaxNameLength bounds the optional display name.
	MaxNameLength = 150
)

// # Payload Fields

const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldName        = "name"
	FieldUser        = "user"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
)

// # Client Messages

const (
	// MsgInvalidCredentials is shared by every failed login, whatever the cause.
	MsgInvalidCredentials = "Invalid credentials"

	// MsgInvalidRefresh is shared by every failed refresh, whatever the cause.
	MsgInvalidRefresh = "Invalid or expired refresh token"

	// MsgEmailTaken is the field error for a duplicate registration.
	MsgEmailTaken = "A user with this email already exists"
)
