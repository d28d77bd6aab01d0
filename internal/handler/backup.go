package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notekeeper/internal/archive"
)

// ExportArchive downloads a tar.gz archive of the stored slots
func (h *Handler) ExportArchive(c echo.Context) error {
	buf, err := h.archiver.Export()
	if err != nil {
		h.logger.Error("Export failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to create archive: %v", err)})
	}

	filename := archive.FileName("export", h.now())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/gzip", buf.Bytes())
}
