package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notekeeper/internal/notes"
)

func TestInboxKeepsNewest(t *testing.T) {
	box := NewInbox(2)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, box.Notify(ctx, Event{NoteID: id}))
	}

	got := box.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].NoteID)
	assert.Equal(t, int64(3), got[1].NoteID)
	assert.Empty(t, box.Drain())
}

func TestFailingNotifierDoesNotBlockOthers(t *testing.T) {
	box := NewInbox(10)
	failing := NotifierFunc(func(context.Context, Event) error { return errors.New("offline") })

	s := NewScheduler(WithNotifiers(failing, box, LogNotifier{Logger: zap.NewNop()}), WithLogger(zap.NewNop()))
	defer s.Stop()

	when := time.Now().Add(20 * time.Millisecond)
	s.Arm(notes.Note{ID: 7, Title: "water plants", Reminder: &when})

	var got []Event
	require.Eventually(t, func() bool {
		got = append(got, box.Drain()...)
		return len(got) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "water plants", got[0].Title)
}

func TestShoutrrrNotifierValidation(t *testing.T) {
	_, err := NewShoutrrrNotifier(nil, time.Second, nil)
	assert.Error(t, err)

	_, err = NewShoutrrrNotifier([]string{"notaservice://nowhere"}, time.Second, nil)
	assert.Error(t, err)
}
