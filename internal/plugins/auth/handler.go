package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/apperror"
)

// Handler handles the signup, login, and logout actions. Handlers are
// thin: bind the request, call the service, translate the outcome. No
// business logic lives here.
type Handler struct {
	service AuthService
	tokens  *TokenService

	// secureCookies forces the Secure attribute on the session cookie.
	// Set outside development so the cookie stays TLS-only even when a
	// misconfigured proxy drops the forwarded-proto header.
	secureCookies bool
}

// NewHandler creates an auth handler with the given collaborators.
func NewHandler(service AuthService, tokens *TokenService, secureCookies bool) *Handler {
	return &Handler{service: service, tokens: tokens, secureCookies: secureCookies}
}

// Signup processes the signup form (POST /signup). On success the account
// exists but no session is created; the client is pointed at the login
// page to authenticate explicitly.
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user":     user,
		"redirect": "/login",
	})
}

// Login processes the login form (POST /login). On success it sets the
// session cookie and points the client at the dashboard.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, _, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		// No cookie is touched on failure; the error handler renders the
		// generic message.
		return err
	}

	setTokenCookie(c, token, int(h.tokens.TTL().Seconds()), h.secureCookies)

	return c.JSON(http.StatusOK, map[string]string{
		"redirect": "/dashboard",
	})
}

// Logout clears the session cookie (POST /logout). The token itself is
// stateless so there is nothing to revoke server-side; dropping the cookie
// is the whole operation, and it always succeeds.
func (h *Handler) Logout(c echo.Context) error {
	clearTokenCookie(c)

	return c.JSON(http.StatusOK, map[string]string{
		"redirect": "/login",
	})
}

// Me returns the authenticated identity (GET /api/v1/me). The SPA calls
// this on load to populate the header.
func (h *Handler) Me(c echo.Context) error {
	identity := GetIdentity(c)
	if identity == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"user_id": identity.UserID,
		"name":    identity.Name,
	})
}
