package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// PathClass is the closed set of route classifications the guard decides
// over. Classification is a pure function of the path string: no request
// body, no clock, no per-request state.
type PathClass int

const (
	// ClassBypass covers static assets, health checks, and the JSON API,
	// which carries its own perimeter (RequireAuth).
	ClassBypass PathClass = iota

	// ClassAuthPage covers the login and signup pages.
	ClassAuthPage

	// ClassProtected covers the dashboard and everything nested under it.
	ClassProtected

	// ClassOther is every remaining path (landing page, marketing pages).
	// Policy: passed through unchanged. The original gating matcher only
	// ever covered /dashboard, /login, and /signup.
	ClassOther
)

// bypassPrefixes are never gated by the page guard.
var bypassPrefixes = []string{"/static", "/api", "/healthz", "/favicon.ico"}

// Classify maps a request path to its PathClass.
func Classify(path string) PathClass {
	for _, p := range bypassPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return ClassBypass
		}
	}
	switch {
	case path == "/login" || path == "/signup":
		return ClassAuthPage
	case path == "/dashboard" || strings.HasPrefix(path, "/dashboard/"):
		return ClassProtected
	default:
		return ClassOther
	}
}

// Guard returns the global middleware enforcing the session perimeter on
// page routes. Decision table:
//
//	Bypass     any session        -> pass through
//	AuthPage   valid session      -> 303 to /dashboard
//	AuthPage   invalid or absent  -> pass through
//	Protected  valid session      -> pass through, identity in context
//	Protected  invalid or absent  -> 303 to /login; stale cookie deleted
//	Other      any session        -> pass through
//
// The guard never returns an error for an authentication failure: an
// invalid session is an expected branch that degrades to a redirect, not
// an exceptional condition. Running it twice on the same request yields
// the same decision.
func Guard(ts *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			class := Classify(c.Request().URL.Path)
			if class == ClassBypass || class == ClassOther {
				return next(c)
			}

			identity, ok := ts.Resolve(c)

			switch class {
			case ClassAuthPage:
				if ok {
					return c.Redirect(http.StatusSeeOther, "/dashboard")
				}
				return next(c)

			case ClassProtected:
				if !ok {
					// A cookie that was present but failed verification
					// is dead weight; tell the client to drop it.
					if readTokenCookie(c) != "" {
						clearTokenCookie(c)
					}
					return c.Redirect(http.StatusSeeOther, "/login")
				}
				setIdentity(c, identity)
				return next(c)
			}

			return next(c)
		}
	}
}
