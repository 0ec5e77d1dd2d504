package advisor

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/apperror"
)

// Handler exposes the advisory endpoints.
type Handler struct {
	service AdvisorService
}

// NewHandler creates an advisor handler.
func NewHandler(service AdvisorService) *Handler {
	return &Handler{service: service}
}

// Suggest handles POST /api/v1/suggestions.
func (h *Handler) Suggest(c echo.Context) error {
	var req SuggestionRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	resp, err := h.service.Suggest(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// Identify handles POST /api/v1/identify.
func (h *Handler) Identify(c echo.Context) error {
	var req IdentifyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	ident, err := h.service.Identify(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ident)
}
