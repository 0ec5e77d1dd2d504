package messages

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/apperror"
	"github.com/Subodhrana390/cropsense/internal/plugins/auth"
)

// Handler exposes the community chat endpoints.
type Handler struct {
	service MessageService
}

// NewHandler creates a messages handler.
func NewHandler(service MessageService) *Handler {
	return &Handler{service: service}
}

// Partners handles GET /api/v1/users.
func (h *Handler) Partners(c echo.Context) error {
	partners, err := h.service.Partners(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"users": partners})
}

// Conversation handles GET /api/v1/messages/:userID.
func (h *Handler) Conversation(c echo.Context) error {
	partnerID := c.Param("userID")
	if partnerID == "" {
		return apperror.NewBadRequest("missing user ID")
	}

	msgs, err := h.service.Conversation(c.Request().Context(), auth.GetUserID(c), partnerID)
	if err != nil {
		return err
	}

	if msgs == nil {
		msgs = []Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": msgs})
}

// Send handles POST /api/v1/messages/:userID.
func (h *Handler) Send(c echo.Context) error {
	partnerID := c.Param("userID")
	if partnerID == "" {
		return apperror.NewBadRequest("missing user ID")
	}

	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	msg, err := h.service.Send(c.Request().Context(), auth.GetUserID(c), partnerID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, msg)
}
