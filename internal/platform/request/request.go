// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It covers body decoding and access to the authenticated user placed in the
context by the authentication middleware.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/validate"
	"github.com/taibuivan/authgate/internal/users/identity"
)

// MaxBodyBytes caps the size of a decoded JSON body.
const MaxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil {
		return validate.ErrInvalidJSON
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, MaxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
User returns the authenticated user from the request context.

Returns nil if the request is anonymous.
*/
func User(request *http.Request) *identity.User {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredUser ensures the request is authenticated and returns the user.

Returns:
  - *identity.User: The resolved account
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredUser(request *http.Request) (*identity.User, error) {
	user := ctxutil.GetAuthUser(request.Context())
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return user, nil
}
