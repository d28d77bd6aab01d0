// Package reminder arms one-shot timers for notes with a future reminder and
// delivers an Event to the configured notifiers when a timer expires.
package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/notes"
)

// State is the reminder lifecycle of one note.
type State int

const (
	Unarmed State = iota
	Armed
	Fired
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "unarmed"
	}
}

// Event is emitted when a reminder fires.
type Event struct {
	NoteID int64     `json:"noteId"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

type entry struct {
	timer *time.Timer
	token uint64
	at    time.Time
	title string
}

// Scheduler keeps at most one live timer per note id. Re-arming or
// cancelling bumps the id's token so a timer that already started firing
// cannot deliver a stale event.
type Scheduler struct {
	mu        sync.Mutex
	entries   map[int64]*entry
	fired     map[int64]bool
	seq       uint64
	stopped   bool
	inflight  sync.WaitGroup
	now       func() time.Time
	notifiers []Notifier
	logger    *zap.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock used to compare reminders.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the scheduler logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithNotifiers appends notifiers that receive every fired event.
func WithNotifiers(n ...Notifier) Option {
	return func(s *Scheduler) { s.notifiers = append(s.notifiers, n...) }
}

// NewScheduler creates an idle scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		entries: make(map[int64]*entry),
		fired:   make(map[int64]bool),
		now:     time.Now,
		logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm observes a saved note. A reminder strictly in the future replaces any
// pending timer for the note; a missing or past reminder only cancels the
// pending timer and is otherwise dropped. Arm reports whether a timer is now
// pending.
func (s *Scheduler) Arm(n notes.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	s.cancelLocked(n.ID)

	if n.Reminder == nil {
		return false
	}
	at := *n.Reminder
	delay := at.Sub(s.now())
	if delay <= 0 {
		s.logger.Debug("Reminder in the past dropped",
			zap.Int64("note_id", n.ID),
			zap.Time("reminder", at),
		)
		return false
	}

	s.seq++
	token := s.seq
	id := n.ID
	s.entries[id] = &entry{
		token: token,
		at:    at,
		title: n.Title,
		timer: time.AfterFunc(delay, func() { s.fire(id, token) }),
	}
	delete(s.fired, id)

	s.logger.Debug("Reminder armed",
		zap.Int64("note_id", id),
		zap.Duration("in", delay),
	)
	return true
}

// Cancel discards the pending timer and any state for a note.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(id)
	delete(s.fired, id)
}

func (s *Scheduler) cancelLocked(id int64) {
	if e, ok := s.entries[id]; ok {
		e.timer.Stop()
		delete(s.entries, id)
	}
}

// State reports the reminder state of a note.
func (s *Scheduler) State(id int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; ok {
		return Armed
	}
	if s.fired[id] {
		return Fired
	}
	return Unarmed
}

// Pending returns the number of armed reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop cancels every timer and waits for deliveries already under way.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id := range s.entries {
		s.cancelLocked(id)
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Scheduler) fire(id int64, token uint64) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.token != token || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	s.fired[id] = true
	notifiers := append([]Notifier(nil), s.notifiers...)
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ev := Event{NoteID: id, Title: e.title, At: e.at}
	s.logger.Info("Reminder fired", zap.Int64("note_id", id))

	for _, n := range notifiers {
		if err := n.Notify(context.Background(), ev); err != nil {
			s.logger.Warn("Reminder notification failed",
				zap.Int64("note_id", id),
				zap.Error(err),
			)
		}
	}
}
