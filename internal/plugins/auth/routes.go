package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/middleware"
)

// RegisterRoutes sets up the auth action routes. The page guard and the
// API middleware are exported separately; the app wires them globally and
// onto the /api/v1 group respectively.
//
// The POST endpoints are rate-limited per IP: 10 login attempts and 5
// signups per minute, to slow down brute-force and bulk account creation.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.POST("/signup", h.Signup, middleware.RateLimit(5, time.Minute))
	e.POST("/logout", h.Logout)
}

// RegisterAPIRoutes adds the session introspection endpoint to the
// authenticated API group.
func RegisterAPIRoutes(g *echo.Group, h *Handler) {
	g.GET("/me", h.Me)
}
