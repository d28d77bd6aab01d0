package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"notekeeper/internal/settings"
)

func (h *Handler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.settings.Preferences())
}

// UpdateSettings changes theme and/or language; omitted fields are kept
func (h *Handler) UpdateSettings(c echo.Context) error {
	var req settings.Preferences
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.settings.SetPreferences(req); err != nil {
		if errors.Is(err, settings.ErrInvalidTheme) || errors.Is(err, settings.ErrInvalidLanguage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, h.settings.Preferences())
}

// UpdatePassphrase sets the encryption passphrase; an empty one restores the default
func (h *Handler) UpdatePassphrase(c echo.Context) error {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.svc.SetPassphrase(req.Passphrase); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

// GetReminders drains the fired reminders the UI has not seen yet
func (h *Handler) GetReminders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.inbox.Drain())
}
