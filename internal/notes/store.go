package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/storage"
)

// View names one of the predefined listings.
type View string

const (
	ViewAll       View = "all"
	ViewFavorites View = "favorites"
	ViewRecent    View = "recent"
)

// RecentLimit caps the recent view.
const RecentLimit = 10

// ErrNotFound is returned when no note has the requested id.
var ErrNotFound = errors.New("note not found")

// ParseView maps a view name to a View; "" means all.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, true
	case ViewFavorites, ViewRecent:
		return View(s), true
	}
	return "", false
}

// TagCount is one distinct tag and the number of notes carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Store owns the note collection. Every mutation rewrites the whole
// collection into the notes slot before returning. Content is stored as
// given, encrypted or not.
type Store struct {
	mu     sync.Mutex
	slots  storage.Slots
	notes  []Note
	lastID int64
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for updatedAt and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store over slots and loads the persisted collection.
func NewStore(slots storage.Slots, opts ...Option) *Store {
	s := &Store{
		slots:  slots,
		now:    time.Now,
		logger: zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.LoadAll()
	return s
}

// LoadAll re-reads the persisted collection. A missing or unreadable slot
// yields an empty collection.
func (s *Store) LoadAll() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = s.read()
	for _, n := range s.notes {
		if n.ID > s.lastID {
			s.lastID = n.ID
		}
	}
	return cloneAll(s.notes)
}

func (s *Store) read() []Note {
	data, ok, err := s.slots.Get(storage.SlotNotes)
	if err != nil {
		s.logger.Warn("Failed to read notes, starting empty", zap.Error(err))
		return []Note{}
	}
	if !ok {
		return []Note{}
	}

	var list []Note
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("Stored notes are corrupt, starting empty",
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return []Note{}
	}
	if list == nil {
		list = []Note{}
	}
	return list
}

func (s *Store) persist(list []Note) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	if err := s.slots.Put(storage.SlotNotes, data); err != nil {
		return fmt.Errorf("failed to persist notes: %w", err)
	}
	return nil
}

// NextID allocates a creation-timestamp id, strictly greater than any id
// seen by this store.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIDLocked()
}

func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Upsert replaces the note with the same id in place, or appends it. It
// stamps updatedAt, keeps an existing createdAt, and persists before
// returning the stored note.
func (s *Store) Upsert(n Note) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n = n.clone()
	if n.ID == 0 {
		n.ID = s.nextIDLocked()
	} else if n.ID > s.lastID {
		s.lastID = n.ID
	}

	idx := s.indexLocked(n.ID)
	if idx >= 0 {
		n.CreatedAt = s.notes[idx].CreatedAt
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}

	next := slices.Clone(s.notes)
	if idx >= 0 {
		next[idx] = n
	} else {
		next = append(next, n)
	}

	if err := s.persist(next); err != nil {
		s.logger.Error("Upsert failed", zap.Int64("note_id", n.ID), zap.Error(err))
		return Note{}, err
	}
	s.notes = next

	s.logger.Debug("Note saved",
		zap.Int64("note_id", n.ID),
		zap.Bool("encrypted", n.IsEncrypted),
		zap.Bool("created", idx < 0),
	)
	return n.clone(), nil
}

// Delete removes the note with id. A missing id is a no-op that still
// rewrites the collection.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.notes), func(n Note) bool { return n.ID == id })
	if err := s.persist(next); err != nil {
		s.logger.Error("Delete failed", zap.Int64("note_id", id), zap.Error(err))
		return err
	}
	s.notes = next
	return nil
}

// Get returns a copy of the note with id.
func (s *Store) Get(id int64) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Note{}, ErrNotFound
	}
	return s.notes[idx].clone(), nil
}

// SetFavorite records the user's favorite toggle. It does not touch updatedAt.
func (s *Store) SetFavorite(id int64, favorite bool) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Note{}, ErrNotFound
	}

	next := slices.Clone(s.notes)
	next[idx].IsFavorite = favorite
	if err := s.persist(next); err != nil {
		return Note{}, err
	}
	s.notes = next
	return next[idx].clone(), nil
}

// Query returns the notes of a view.
func (s *Store) Query(view View) []Note {
	s.mu.Lock()
	list := cloneAll(s.notes)
	s.mu.Unlock()

	switch view {
	case ViewFavorites:
		return slices.DeleteFunc(list, func(n Note) bool { return !n.IsFavorite })
	case ViewRecent:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		})
		if len(list) > RecentLimit {
			list = list[:RecentLimit]
		}
		return list
	default:
		return list
	}
}

// Tags lists distinct tags in first-seen order with their note counts.
func (s *Store) Tags() []TagCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := map[string]int{}
	out := []TagCount{}
	for _, n := range s.notes {
		seen := map[string]bool{}
		for _, t := range n.Tags {
			if seen[t] {
				continue
			}
			seen[t] = true
			if i, ok := index[t]; ok {
				out[i].Count++
				continue
			}
			index[t] = len(out)
			out = append(out, TagCount{Name: t, Count: 1})
		}
	}
	return out
}

// Len reports the number of notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

func cloneAll(in []Note) []Note {
	out := make([]Note, len(in))
	for i, n := range in {
		out[i] = n.clone()
	}
	return out
}
