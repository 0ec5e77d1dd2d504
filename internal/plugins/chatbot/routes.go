package chatbot

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/middleware"
)

// RegisterAPIRoutes mounts the chatbot endpoints on the authenticated API
// group. Asking costs a collaborator call, so it is rate-limited; reading
// and clearing history are local and are not.
func RegisterAPIRoutes(g *echo.Group, h *Handler) {
	g.POST("/chatbot", h.Ask, middleware.RateLimit(20, time.Minute))
	g.GET("/chatbot/history", h.History)
	g.DELETE("/chatbot/history", h.ClearHistory)
}
