package messages

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/middleware"
)

// RegisterAPIRoutes mounts the community chat endpoints on the
// authenticated API group. The client polls the conversation endpoint, so
// reads are unlimited; sends are rate-limited to curb spam.
func RegisterAPIRoutes(g *echo.Group, h *Handler) {
	g.GET("/users", h.Partners)
	g.GET("/messages/:userID", h.Conversation)
	g.POST("/messages/:userID", h.Send, middleware.RateLimit(30, time.Minute))
}
