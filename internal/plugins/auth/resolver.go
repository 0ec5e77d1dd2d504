package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// tokenCookieName is the HTTP cookie used to carry the session token.
const tokenCookieName = "token"

// Resolve reads the session cookie and verifies it, yielding the
// authenticated identity. A missing or invalid session is a normal
// outcome, reported as ok=false -- never an error.
func (ts *TokenService) Resolve(c echo.Context) (*Identity, bool) {
	token := readTokenCookie(c)
	if token == "" {
		return nil, false
	}

	claims, err := ts.Verify(token)
	if err != nil {
		return nil, false
	}

	return &Identity{UserID: claims.Subject, Name: claims.Name}, true
}

// readTokenCookie returns the raw session token from the request, or "".
func readTokenCookie(c echo.Context) string {
	cookie, err := c.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// setTokenCookie sets the session cookie on the response. HttpOnly keeps
// it away from scripts. Secure is forced outside development, so a proxy
// that drops X-Forwarded-Proto cannot downgrade the cookie; the request
// check only upgrades TLS-terminated dev setups. Max-age matches the
// token TTL.
func setTokenCookie(c echo.Context, token string, maxAge int, secure bool) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure || req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearTokenCookie removes the session cookie by setting MaxAge to -1.
func clearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
