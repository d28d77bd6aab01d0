package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetTags returns every distinct tag with its note count
func (h *Handler) GetTags(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Tags())
}
