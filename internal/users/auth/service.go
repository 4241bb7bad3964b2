// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration, password login and stateless
token sessions.

Architecture:

  - Service: Orchestrates the use cases (Register, Login, Refresh).
  - Repository: [UserRepository], backed by PostgreSQL (pgx) or SQLite (gorm).
  - Handler: JSON endpoints that deliver tokens as cookies or in the body.

No session state is kept on the server. A token is valid until it expires.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/validate"
	"github.com/taibuivan/authgate/internal/users/identity"
	"github.com/taibuivan/authgate/pkg/uuid"
)

// # Contracts & Types

// dummyPassword is hashed once so that unknown emails cost one bcrypt check.
const dummyPassword = "authgate-timing-equalizer"

// Service implements the account use cases.
type Service struct {
	userRepository UserRepository
	hasher         PasswordHasher
	tokens         *sec.TokenService
	issueRefresh   bool
	now            func() time.Time
	dummyHash      func() string
}

// NewService constructs a [Service].
//
// issueRefresh selects the credential shape: an access/refresh pair when true,
// a single access token otherwise.
func NewService(userRepository UserRepository, hasher PasswordHasher, tokens *sec.TokenService, issueRefresh bool) *Service {
	return &Service{
		userRepository: userRepository,
		hasher:         hasher,
		tokens:         tokens,
		issueRefresh:   issueRefresh,
		now:            time.Now,
		dummyHash: sync.OnceValue(func() string {
			hash, _ := hasher.Hash(dummyPassword)
			return hash
		}),
	}
}

// Session is the outcome of a successful register, login or refresh.
type Session struct {
	User             *identity.User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// # Registration Flow

// RegisterInput holds the normalized data of a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

/*
Register hashes the password, persists the account and signs it in.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: The new account and its credentials
  - error: Validation error on a duplicate email, or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.now().UTC()
	user := &identity.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		IsActive:     true,
		DateJoined:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	// The unique constraint is the only uniqueness check, so concurrent
	// registrations for one email cannot both succeed.
	if err := service.userRepository.Create(context, user); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, validate.FieldError(FieldEmail, MsgEmailTaken)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered", slog.String("user_id", user.ID))

	return service.issue(user)
}

// # Authentication Flow

/*
Login checks a password and signs the account in.

Unknown email, wrong password and inactive account produce the same
[apperr.AppError], and an unknown email still pays for one hash comparison.

Parameters:
  - context: context.Context
  - email: string (normalized)
  - password: string

Returns:
  - *Session: Account and credentials
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	logger := ctxutil.GetLogger(context)

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
		}
		service.hasher.Verify(service.dummyHash(), password)
		logger.InfoContext(context, "login_failed", slog.String("reason", "unknown_email"))
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if !service.hasher.Verify(user.PasswordHash, password) {
		logger.InfoContext(context, "login_failed", slog.String("reason", "wrong_password"), slog.String("user_id", user.ID))
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if !user.IsActive {
		logger.InfoContext(context, "login_failed", slog.String("reason", "inactive"), slog.String("user_id", user.ID))
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	loginAt := service.now().UTC()
	if err := service.userRepository.UpdateLastLogin(context, user.ID, loginAt); err != nil {
		return nil, fmt.Errorf("auth_service_update_last_login_failed: %w", err)
	}
	user.LastLogin = &loginAt

	logger.InfoContext(context, "login_succeeded", slog.String("user_id", user.ID))

	return service.issue(user)
}

// # Session Management

/*
Refresh exchanges a refresh token for a new credential pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: Rotated credentials
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {
	if !service.issueRefresh {
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	claims, ok := service.tokens.Verify(refreshToken, sec.TokenRefresh)
	if !ok {
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized(MsgInvalidRefresh)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	return service.issue(user)
}

// AccessTTL exposes the access token lifetime for the expires_in field.
func (service *Service) AccessTTL() time.Duration {
	return service.tokens.AccessTTL()
}

// RefreshTTL exposes the refresh token lifetime for the cookie Max-Age.
func (service *Service) RefreshTTL() time.Duration {
	return service.tokens.RefreshTTL()
}

// issue signs the credentials matching the configured transport.
func (service *Service) issue(user *identity.User) (*Session, error) {
	if !service.issueRefresh {
		token, expiresAt, err := service.tokens.IssueAccess(user.ID, user.Email)
		if err != nil {
			return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
		}
		return &Session{User: user, AccessToken: token, AccessExpiresAt: expiresAt}, nil
	}

	pair, err := service.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{
		User:             user,
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}, nil
}
