// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/middleware"
	requestutil "github.com/taibuivan/authgate/internal/platform/request"
	"github.com/taibuivan/authgate/internal/platform/respond"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/validate"
	"github.com/taibuivan/authgate/pkg/textnorm"
)

// # Definitions & Constructors

// HandlerConfig selects how credentials travel to the client.
type HandlerConfig struct {
	// UseCookies sets httponly cookies instead of returning the token in the body.
	UseCookies bool
	// CookieSecure marks cookies Secure. Disable only for plain-HTTP development.
	CookieSecure bool
	// CookieDomain scopes cookies to a parent domain. Empty means host-only.
	CookieDomain string
}

// Handler implements the account HTTP endpoints.
type Handler struct {
	authService *Service
	config      HandlerConfig
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, config HandlerConfig) *Handler {
	return &Handler{authService: service, config: config}
}

// Routes returns a [chi.Router] with the account routes.
//
// # Endpoints
//   - POST /register : Creates an account and signs it in.
//   - POST /login    : Exchanges email and password for credentials.
//   - POST /refresh  : Rotates the cookie pair (cookie transport only).
//   - POST /logout   : Clears the cookies.
//   - GET  /profile  : Returns the authenticated account.
//
// authenticate guards /profile only. The credential routes never read the
// access token, so a stale one cannot block login, refresh or logout.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	if handler.config.UseCookies {
		router.Post("/refresh", handler.refresh)
	}

	router.Group(func(r chi.Router) {
		r.Use(authenticate, middleware.RequireAuth)
		r.Get("/profile", handler.profile)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register creates a new account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Email, Password, Name)

Response:
  - 201: The public user, plus the access token in bearer mode
  - 400: Validation failure or email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := textnorm.Email(input.Email)
	name := textnorm.DisplayName(input.Name)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		MaxLen(FieldEmail, email, MaxEmailLength).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MaxBytes(FieldPassword, input.Password, sec.MaxPasswordBytes).
		MaxLen(FieldName, name, MaxNameLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    email,
		Password: input.Password,
		Name:     name,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, handler.deliver(writer, session))
}

/*
Login authenticates an account.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: The public user, plus the access token in bearer mode
  - 400: Missing fields
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := textnorm.Email(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.deliver(writer, session))
}

/*
Refresh rotates the cookie pair.

POST /api/v1/auth/refresh

Response:
  - 200: The public user, with both cookies replaced
  - 401: Missing, invalid or expired refresh token. No cookie is set.
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized(MsgInvalidRefresh))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.deliver(writer, session))
}

/*
Logout clears the credential cookies.

POST /api/v1/auth/logout

Tokens already issued stay valid until they expire.

Response:
  - 204: No Content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if handler.config.UseCookies {
		handler.clearCookie(writer, constants.AccessTokenCookieName, constants.AccessTokenCookiePath)
		handler.clearCookie(writer, constants.RefreshTokenCookieName, constants.RefreshTokenCookiePath)
	}
	respond.NoContent(writer)
}

/*
Profile returns the authenticated account.

GET /api/v1/auth/profile

Response:
  - 200: The public user
  - 401: Anonymous request
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Public())
}

// # Credential Delivery

// deliver sets cookies or builds the bearer body for a session.
func (handler *Handler) deliver(writer http.ResponseWriter, session *Session) map[string]any {
	body := map[string]any{FieldUser: session.User.Public()}

	if handler.config.UseCookies {
		handler.setCookie(writer, constants.AccessTokenCookieName, constants.AccessTokenCookiePath,
			session.AccessToken, session.AccessExpiresAt, handler.authService.AccessTTL())
		handler.setCookie(writer, constants.RefreshTokenCookieName, constants.RefreshTokenCookiePath,
			session.RefreshToken, session.RefreshExpiresAt, handler.authService.RefreshTTL())
		return body
	}

	body[FieldAccessToken] = session.AccessToken
	body[FieldTokenType] = constants.BearerScheme
	body[FieldExpiresIn] = int64(handler.authService.AccessTTL() / time.Second)
	return body
}

func (handler *Handler) setCookie(writer http.ResponseWriter, name, path, value string, expiresAt time.Time, lifetime time.Duration) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   handler.config.CookieDomain,
		Expires:  expiresAt,
		MaxAge:   int(lifetime / time.Second),
		Secure:   handler.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (handler *Handler) clearCookie(writer http.ResponseWriter, name, path string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   handler.config.CookieDomain,
		MaxAge:   -1,
		Secure:   handler.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
