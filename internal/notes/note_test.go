package notes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteWireShape(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	n := Note{
		ID:        1767323045006,
		Title:     "Shopping",
		Content:   "<p>milk, eggs</p>",
		CreatedAt: created,
		UpdatedAt: created,
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 1767323045006,
		"title": "Shopping",
		"content": "<p>milk, eggs</p>",
		"tags": [],
		"reminder": null,
		"createdAt": "2026-01-02T03:04:05.006Z",
		"updatedAt": "2026-01-02T03:04:05.006Z",
		"isFavorite": false
	}`, string(data))
}

func TestNoteReadsEditorReminder(t *testing.T) {
	raw := `{"id":5,"title":"call","content":"","tags":["x"],"reminder":"2026-05-01T14:30",
		"createdAt":"2026-04-30T10:00:00.000Z","updatedAt":"2026-04-30T10:00:00.000Z","isFavorite":true,"isEncrypted":true}`

	var n Note
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	require.NotNil(t, n.Reminder)
	want := time.Date(2026, 5, 1, 14, 30, 0, 0, time.Local)
	assert.True(t, n.Reminder.Equal(want))
	assert.True(t, n.IsFavorite)
	assert.True(t, n.IsEncrypted)
}

func TestNoteEmptyReminderIsNil(t *testing.T) {
	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"reminder":"","tags":null}`), &n))
	assert.Nil(t, n.Reminder)
	assert.NotNil(t, n.Tags)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"work", []string{"work"}},
		{" work , home ,, ", []string{"work", "home"}},
		{"a,a,b", []string{"a", "a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.in), tt.in)
	}
}

func TestParseReminder(t *testing.T) {
	for _, s := range []string{
		"2026-05-01T14:30",
		"2026-05-01T14:30:00",
		"2026-05-01T14:30:00Z",
		"2026-05-01T14:30:00.000+03:00",
	} {
		_, err := ParseReminder(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseReminder("tomorrow")
	assert.Error(t, err)
}
