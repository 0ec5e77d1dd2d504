package chatbot

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/apperror"
	"github.com/Subodhrana390/cropsense/internal/plugins/auth"
)

// Handler exposes the chatbot endpoints.
type Handler struct {
	service ChatbotService
}

// NewHandler creates a chatbot handler.
func NewHandler(service ChatbotService) *Handler {
	return &Handler{service: service}
}

// Ask handles POST /api/v1/chatbot.
func (h *Handler) Ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	resp, err := h.service.Ask(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// History handles GET /api/v1/chatbot/history.
func (h *Handler) History(c echo.Context) error {
	msgs, err := h.service.History(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	// An empty conversation renders as [], not null.
	if msgs == nil {
		msgs = []Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": msgs})
}

// ClearHistory handles DELETE /api/v1/chatbot/history.
func (h *Handler) ClearHistory(c echo.Context) error {
	deleted, err := h.service.ClearHistory(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"deleted_count": deleted})
}
