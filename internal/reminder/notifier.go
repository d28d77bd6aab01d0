package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"sync"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"

	"notekeeper/internal/i18n"
)

// Notifier receives fired reminders.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Inbox keeps the most recent events for the UI to collect.
type Inbox struct {
	mu     sync.Mutex
	size   int
	events []Event
}

// NewInbox creates an inbox holding at most size events.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 50
	}
	return &Inbox{size: size}
}

// Notify stores ev, dropping the oldest event when full.
func (b *Inbox) Notify(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, ev)
	if over := len(b.events) - b.size; over > 0 {
		b.events = slices.Delete(b.events, 0, over)
	}
	return nil
}

// Drain returns the stored events oldest first and empties the inbox.
func (b *Inbox) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.events
	b.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}

// LogNotifier writes fired reminders to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs ev.
func (l LogNotifier) Notify(_ context.Context, ev Event) error {
	logger := l.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info("Reminder",
		zap.Int64("note_id", ev.NoteID),
		zap.String("title", ev.Title),
		zap.Time("at", ev.At),
	)
	return nil
}

// ShoutrrrNotifier pushes reminders to shoutrrr service URLs.
type ShoutrrrNotifier struct {
	sender   *router.ServiceRouter
	language func() string
}

// NewShoutrrrNotifier builds a sender for urls. language returns the current
// language preference used to word the message.
func NewShoutrrrNotifier(urls []string, timeout time.Duration, language func() string) (*ShoutrrrNotifier, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("invalid push url: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	if language == nil {
		language = func() string { return i18n.DefaultLanguage }
	}
	return &ShoutrrrNotifier{sender: sender, language: language}, nil
}

// Notify sends ev to every configured service and returns the first failure.
func (s *ShoutrrrNotifier) Notify(_ context.Context, ev Event) error {
	p := i18n.Printer(s.language())

	params := stypes.Params{}
	params.SetTitle(p.Sprintf(i18n.ReminderTitle))

	for _, err := range s.sender.Send(p.Sprintf(i18n.ReminderBody, ev.Title), &params) {
		if err != nil {
			return err
		}
	}
	return nil
}
