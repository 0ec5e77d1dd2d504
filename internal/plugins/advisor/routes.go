package advisor

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/middleware"
)

// RegisterAPIRoutes mounts the advisory endpoints on the authenticated
// API group. Both endpoints fan out to the AI collaborator, so they get a
// tighter per-IP rate limit than the rest of the API.
func RegisterAPIRoutes(g *echo.Group, h *Handler) {
	g.POST("/suggestions", h.Suggest, middleware.RateLimit(20, time.Minute))
	g.POST("/identify", h.Identify, middleware.RateLimit(10, time.Minute))
}
