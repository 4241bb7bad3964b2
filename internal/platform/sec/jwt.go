// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the cryptographic primitives of the service: HS256
// token issuance and verification, and bcrypt password hashing.
//
// # Failure policy
//
// [TokenService.Verify] never returns an error. Expired, forged, malformed and
// wrongly-typed tokens all collapse into the same negative result so callers
// cannot leak which check failed.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token with the endpoint family allowed to consume it.
type TokenType string

const (
	// TokenAccess authorizes regular requests.
	TokenAccess TokenType = "access"

	// TokenRefresh is accepted only by the refresh endpoint.
	TokenRefresh TokenType = "refresh"
)

// Claims is the payload embedded inside every token.
type Claims struct {
	jwt.RegisteredClaims

	UserID string    `json:"user_id"`
	Type   TokenType `json:"type,omitempty"`
	Email  string    `json:"email,omitempty"`
}

// TokenConfig is the signing configuration handed to [NewTokenService].
type TokenConfig struct {
	// Secret is the HMAC key. Required.
	Secret []byte

	// Issuer is stamped as 'iss' and required on verification when non-empty.
	Issuer string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// EmbedEmail adds the account email to access tokens.
	EmbedEmail bool

	// Now overrides the clock. Defaults to [time.Now].
	Now func() time.Time
}

// TokenPair is the result of [TokenService.IssuePair].
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenService handles generation and verification of HS256 tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	embedEmail bool
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenService validates cfg and builds a [TokenService].
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("sec: signing secret is empty")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("sec: access token ttl must be positive")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, fmt.Errorf("sec: refresh ttl %s must exceed access ttl %s", cfg.RefreshTTL, cfg.AccessTTL)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	return &TokenService{
		secret:     cfg.Secret,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		embedEmail: cfg.EmbedEmail,
		now:        now,
		parser:     jwt.NewParser(options...),
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (service *TokenService) RefreshTTL() time.Duration { return service.refreshTTL }

// IssueAccess signs a single access token for the account.
func (service *TokenService) IssueAccess(userID, email string) (string, time.Time, error) {
	return service.sign(userID, email, TokenAccess, service.accessTTL)
}

// IssuePair signs an access token and a longer-lived refresh token.
func (service *TokenService) IssuePair(userID, email string) (*TokenPair, error) {
	access, accessExpiry, err := service.sign(userID, email, TokenAccess, service.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, refreshExpiry, err := service.sign(userID, "", TokenRefresh, service.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

func (service *TokenService) sign(userID, email string, tokenType TokenType, timeToLive time.Duration) (string, time.Time, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(timeToLive)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Type:   tokenType,
	}
	if service.embedEmail && tokenType == TokenAccess {
		claims.Email = email
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign %s token: %w", tokenType, err)
	}

	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer, expiry and, when expected is
// non-empty, the type tag. It reports false for every kind of failure.
func (service *TokenService) Verify(tokenString string, expected TokenType) (*Claims, bool) {
	claims := &Claims{}

	token, err := service.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return service.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	if claims.UserID == "" {
		return nil, false
	}

	if expected != "" && claims.Type != expected {
		return nil, false
	}

	return claims, true
}
