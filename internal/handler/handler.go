package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notekeeper/internal/archive"
	"notekeeper/internal/reminder"
	"notekeeper/internal/service"
	"notekeeper/internal/settings"
	"notekeeper/internal/version"
)

type Handler struct {
	svc      *service.Service
	settings *settings.Settings
	inbox    *reminder.Inbox
	archiver *archive.Archiver
	logger   *zap.Logger
	now      func() time.Time
}

func NewHandler(svc *service.Service, prefs *settings.Settings, inbox *reminder.Inbox, archiver *archive.Archiver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		svc:      svc,
		settings: prefs,
		inbox:    inbox,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts the bridge routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/version", h.GetVersion)

	// Notes API
	g.GET("/notes", h.ListNotes)
	g.GET("/search", h.SearchNotes)
	g.GET("/notes/:id/edit", h.EditNote)
	g.DELETE("/notes/:id", h.DeleteNote)
	g.POST("/notes/:id/favorite", h.ToggleFavorite)
	g.GET("/tags", h.GetTags)

	// Edit session API
	g.POST("/drafts", h.CreateDraft)
	g.GET("/session", h.GetSession)
	g.PUT("/session/draft", h.UpdateDraft)
	g.POST("/session/save", h.SaveSession)
	g.DELETE("/session", h.CloseSession)

	// Settings API
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.PUT("/settings/passphrase", h.UpdatePassphrase)

	g.GET("/reminders", h.GetReminders)
	g.GET("/export", h.ExportArchive)
}

// GetVersion returns the build information
func (h *Handler) GetVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.GetInfo())
}
