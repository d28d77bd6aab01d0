package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notekeeper/internal/notes"
	"notekeeper/internal/service"
)

// NoteCard is a note as shown in the list: content is replaced by a preview.
type NoteCard struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Preview     string     `json:"preview"`
	Tags        []string   `json:"tags"`
	Reminder    *time.Time `json:"reminder"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	IsFavorite  bool       `json:"isFavorite"`
	IsEncrypted bool       `json:"isEncrypted"`
}

func (h *Handler) noteToCard(n notes.Note) NoteCard {
	return NoteCard{
		ID:          n.ID,
		Title:       n.Title,
		Preview:     h.svc.Preview(n),
		Tags:        n.Tags,
		Reminder:    n.Reminder,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		IsFavorite:  n.IsFavorite,
		IsEncrypted: n.IsEncrypted,
	}
}

func (h *Handler) notesToCards(list []notes.Note) []NoteCard {
	cards := make([]NoteCard, 0, len(list))
	for _, n := range list {
		cards = append(cards, h.noteToCard(n))
	}
	return cards
}

// DraftRequest carries the editor fields as typed: tags comma separated and
// the reminder in datetime-local form.
type DraftRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags"`
	Reminder  string    `json:"reminder"`
	Encrypt   bool      `json:"encrypt"`
}

type SessionRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
}

func noteID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handler) ListNotes(c echo.Context) error {
	view, ok := notes.ParseView(c.QueryParam("view"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid view"})
	}

	return c.JSON(http.StatusOK, h.notesToCards(h.svc.Find(view)))
}

func (h *Handler) SearchNotes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.notesToCards(h.svc.Search(c.QueryParam("q"))))
}

// CreateDraft opens an edit session on a new note
func (h *Handler) CreateDraft(c echo.Context) error {
	return c.JSON(http.StatusCreated, h.svc.CreateDraft())
}

// EditNote opens an edit session on a stored note
func (h *Handler) EditNote(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	sess, err := h.svc.LoadForEdit(id)
	if err != nil {
		return h.noteError(c, err)
	}

	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) GetSession(c echo.Context) error {
	sess, ok := h.svc.CurrentSession()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": service.ErrNoSession.Error()})
	}
	return c.JSON(http.StatusOK, sess)
}

// UpdateDraft replaces the draft that auto-save flushes
func (h *Handler) UpdateDraft(c echo.Context) error {
	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	d := service.Draft{
		Title:   req.Title,
		Content: req.Content,
		Tags:    notes.ParseTags(req.Tags),
		Encrypt: req.Encrypt,
	}
	if strings.TrimSpace(req.Reminder) != "" {
		at, err := notes.ParseReminder(req.Reminder)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid reminder"})
		}
		d.Reminder = &at
	}

	if err := h.svc.UpdateDraft(req.SessionID, d); err != nil {
		return h.noteError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SaveSession is the manual save of the open draft
func (h *Handler) SaveSession(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	n, err := h.svc.SaveSession(c.Request().Context(), req.SessionID, service.CommitOptions{})
	if err != nil {
		return h.noteError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"note":    n,
		"message": h.svc.SavedMessage(),
	})
}

func (h *Handler) CloseSession(c echo.Context) error {
	id, err := uuid.Parse(c.QueryParam("sessionId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session id"})
	}

	if err := h.svc.CloseSession(id); err != nil {
		return h.noteError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteNote(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	if err := h.svc.Remove(id); err != nil {
		return h.noteError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleFavorite(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	n, err := h.svc.ToggleFavorite(id)
	if err != nil {
		return h.noteError(c, err)
	}

	return c.JSON(http.StatusOK, h.noteToCard(n))
}

// noteError maps service and store errors to responses.
func (h *Handler) noteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNoSession):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyNote):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": h.svc.EmptyMessage()})
	default:
		h.logger.Error("Note operation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
