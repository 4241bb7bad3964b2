// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/respond"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/users/identity"
)

// MsgInvalidCredentials is the single message returned for every rejected credential.
const MsgInvalidCredentials = "Invalid or expired credentials"

// ErrMalformedCredential is returned by an extractor when a credential is
// present but unusable.
var ErrMalformedCredential = errors.New("middleware: malformed credential")

// # Collaborators

// TokenVerifier checks a token's signature, expiry and type.
type TokenVerifier interface {
	Verify(token string, expected sec.TokenType) (*sec.Claims, bool)
}

// UserResolver loads the account a verified token points at.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*identity.User, error)
}

// CredentialExtractor pulls the raw token out of a request.
//
// It returns an empty token and a nil error when the request carries no
// credential, and [ErrMalformedCredential] when one is present but unusable.
type CredentialExtractor func(request *http.Request) (string, error)

// BearerExtractor reads "Authorization: Bearer <token>".
func BearerExtractor(request *http.Request) (string, error) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", nil
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) || token == "" || strings.Contains(token, " ") {
		return "", ErrMalformedCredential
	}
	return token, nil
}

// CookieExtractor reads the access token cookie.
func CookieExtractor(request *http.Request) (string, error) {
	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil {
		return "", nil
	}
	return cookie.Value, nil
}

// # Authentication

// Authenticate resolves the caller from an access token.
//
// # Flow
//  1. No credential: the request proceeds as anonymous.
//  2. Malformed or unverifiable credential: 401.
//  3. Verified token: the user is loaded; a missing or inactive user is a 401
//     with the same message.
//  4. The [*identity.User] is injected into the request context.
func Authenticate(extract CredentialExtractor, verifier TokenVerifier, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)

			token, err := extract(request)
			if err != nil {
				logger.DebugContext(ctx, "authentication_rejected", slog.String("reason", "malformed_credential"))
				respond.Error(writer, request, apperr.Unauthorized(MsgInvalidCredentials))
				return
			}

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, ok := verifier.Verify(token, sec.TokenAccess)
			if !ok {
				logger.DebugContext(ctx, "authentication_rejected", slog.String("reason", "invalid_token"))
				respond.Error(writer, request, apperr.Unauthorized(MsgInvalidCredentials))
				return
			}

			// ── 3. User Resolution ────────────────────────────────────────────
			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				if apperr.IsNotFound(err) {
					logger.DebugContext(ctx, "authentication_rejected", slog.String("reason", "unknown_user"))
					respond.Error(writer, request, apperr.Unauthorized(MsgInvalidCredentials))
					return
				}
				respond.Error(writer, request, err)
				return
			}

			if !user.IsActive {
				logger.DebugContext(ctx, "authentication_rejected", slog.String("reason", "inactive_user"))
				respond.Error(writer, request, apperr.Unauthorized(MsgInvalidCredentials))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			if tracker := userTrackerFrom(ctx); tracker != nil {
				tracker.userID = user.ID
			}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(ctx, user)))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Log Correlation

// userTracker carries the resolved user id back up to [StructuredLogger].
type userTracker struct {
	userID string
}

type userTrackerKey struct{}

func withUserTracker(ctx context.Context, tracker *userTracker) context.Context {
	return context.WithValue(ctx, userTrackerKey{}, tracker)
}

func userTrackerFrom(ctx context.Context) *userTracker {
	tracker, _ := ctx.Value(userTrackerKey{}).(*userTracker)
	return tracker
}
