package notes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Note is the single persisted entity.
type Note struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Reminder    *time.Time `json:"reminder"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	IsFavorite  bool       `json:"isFavorite"`
	IsEncrypted bool       `json:"isEncrypted,omitempty"`
}

// isoMillis matches Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Layouts accepted for reminder values. The editor's datetime-local input has
// neither seconds nor a zone and is read as local time.
var reminderLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type wireNote struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Reminder    *string  `json:"reminder"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	IsFavorite  bool     `json:"isFavorite"`
	IsEncrypted bool     `json:"isEncrypted,omitempty"`
}

// MarshalJSON writes timestamps in UTC with millisecond precision.
func (n Note) MarshalJSON() ([]byte, error) {
	w := wireNote{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Tags:        n.Tags,
		CreatedAt:   n.CreatedAt.UTC().Format(isoMillis),
		UpdatedAt:   n.UpdatedAt.UTC().Format(isoMillis),
		IsFavorite:  n.IsFavorite,
		IsEncrypted: n.IsEncrypted,
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if n.Reminder != nil {
		s := n.Reminder.UTC().Format(isoMillis)
		w.Reminder = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the persisted shape, including reminders written by
// the datetime-local editor field.
func (n *Note) UnmarshalJSON(data []byte) error {
	var w wireNote
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	created, err := parseTime(w.CreatedAt)
	if err != nil {
		return fmt.Errorf("note %d createdAt: %w", w.ID, err)
	}
	updated, err := parseTime(w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("note %d updatedAt: %w", w.ID, err)
	}

	*n = Note{
		ID:          w.ID,
		Title:       w.Title,
		Content:     w.Content,
		Tags:        w.Tags,
		CreatedAt:   created,
		UpdatedAt:   updated,
		IsFavorite:  w.IsFavorite,
		IsEncrypted: w.IsEncrypted,
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}

	if w.Reminder != nil && strings.TrimSpace(*w.Reminder) != "" {
		r, err := ParseReminder(*w.Reminder)
		if err != nil {
			return fmt.Errorf("note %d reminder: %w", w.ID, err)
		}
		n.Reminder = &r
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ParseReminder parses a reminder timestamp in any accepted layout.
func ParseReminder(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range reminderLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseTags splits comma separated tag input, trimming each tag and dropping
// empty ones. Order is kept and duplicates are allowed.
func ParseTags(input string) []string {
	tags := []string{}
	for _, part := range strings.Split(input, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CleanTags applies the ParseTags rules to an already split list.
func CleanTags(in []string) []string {
	tags := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// clone returns a deep copy so callers never alias store state.
func (n Note) clone() Note {
	c := n
	c.Tags = append([]string{}, n.Tags...)
	if n.Reminder != nil {
		r := *n.Reminder
		c.Reminder = &r
	}
	return c
}
