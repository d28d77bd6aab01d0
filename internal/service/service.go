// Package service is the UI-facing facade over the note store: drafts and
// edit sessions, saving with optional encryption, listing, search and
// reminder bookkeeping.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notekeeper/internal/envelope"
	"notekeeper/internal/i18n"
	"notekeeper/internal/notes"
	"notekeeper/internal/reminder"
	"notekeeper/internal/search"
	"notekeeper/internal/settings"
)

var (
	// ErrEmptyNote rejects a manual save with neither title nor content.
	ErrEmptyNote = errors.New("note title or content cannot be empty")
	// ErrNoSession is returned when no edit session matches.
	ErrNoSession = errors.New("no active edit session")
)

// Draft is the editor's in-progress copy of a note. Content is always
// plaintext markup; Encrypt asks for it to be sealed on save.
//
// Unavailable reports that the stored content could not be decrypted with
// the current passphrase. While Content stays empty, saves keep the stored
// ciphertext.
type Draft struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Reminder    *time.Time `json:"reminder"`
	CreatedAt   time.Time  `json:"createdAt"`
	Encrypt     bool       `json:"encrypt"`
	Unavailable bool       `json:"contentUnavailable"`

	sealed string
}

// Session is the single open editor.
type Session struct {
	ID       uuid.UUID `json:"sessionId"`
	Draft    Draft     `json:"draft"`
	OpenedAt time.Time `json:"openedAt"`
}

// CommitOptions controls a save.
type CommitOptions struct {
	// Auto marks a periodic save: empty drafts are skipped without error
	// and no success notice is produced.
	Auto bool
}

// Service wires the note store to encryption, search and reminders.
type Service struct {
	store     *notes.Store
	keys      *envelope.KeyRing
	settings  *settings.Settings
	reminders *reminder.Scheduler
	logger    *zap.Logger
	now       func() time.Time

	searchEncrypted bool

	// commitMu orders store writes against Remove.
	commitMu sync.Mutex

	mu      sync.Mutex
	session *Session
}

// Config holds the collaborators of a Service.
type Config struct {
	Store     *notes.Store
	Keys      *envelope.KeyRing
	Settings  *settings.Settings
	Reminders *reminder.Scheduler
	Logger    *zap.Logger
	Now       func() time.Time

	// SearchEncrypted lets Search decrypt sealed notes to match their content.
	SearchEncrypted bool
}

// New creates a Service.
func New(cfg Config) *Service {
	s := &Service{
		store:           cfg.Store,
		keys:            cfg.Keys,
		settings:        cfg.Settings,
		reminders:       cfg.Reminders,
		logger:          cfg.Logger,
		now:             cfg.Now,
		searchEncrypted: cfg.SearchEncrypted,
	}
	if s.keys == nil {
		s.keys = envelope.NewKeyRing(0)
	}
	if s.logger == nil {
		s.logger = zap.L()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RestoreReminders arms the reminders of stored notes. Past reminders are
// dropped as usual.
func (s *Service) RestoreReminders() int {
	armed := 0
	for _, n := range s.store.Query(notes.ViewAll) {
		if s.reminders.Arm(n) {
			armed++
		}
	}
	if armed > 0 {
		s.logger.Info("Reminders restored", zap.Int("armed", armed))
	}
	return armed
}

func (s *Service) key() (*envelope.Key, error) {
	return s.keys.Key(s.settings.Passphrase())
}

// CreateDraft opens an edit session on a fresh, unsaved note.
func (s *Service) CreateDraft() Session {
	d := Draft{
		ID:        s.store.NextID(),
		Tags:      []string{},
		CreatedAt: s.now(),
	}
	return s.open(d)
}

// LoadForEdit opens an edit session on a stored note, decrypting its content.
// Content that cannot be decrypted comes back empty and the draft is marked
// Unavailable.
func (s *Service) LoadForEdit(id int64) (Session, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return Session{}, err
	}

	content := n.Content
	if n.IsEncrypted && content != "" {
		content = s.decrypt(n)
	}

	d := Draft{
		ID:        n.ID,
		Title:     n.Title,
		Content:   content,
		Tags:      n.Tags,
		Reminder:  n.Reminder,
		CreatedAt: n.CreatedAt,
		Encrypt:   n.IsEncrypted,
	}
	if n.IsEncrypted && n.Content != "" && content == "" {
		d.Unavailable = true
		d.sealed = n.Content
	}
	return s.open(d), nil
}

func (s *Service) open(d Draft) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &Session{ID: uuid.New(), Draft: d, OpenedAt: s.now()}
	s.logger.Debug("Edit session opened",
		zap.String("session_id", s.session.ID.String()),
		zap.Int64("note_id", d.ID),
	)
	return *s.session
}

// CurrentSession returns the open edit session, if any.
func (s *Service) CurrentSession() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// UpdateDraft replaces the draft of the open session identified by id.
func (s *Service) UpdateDraft(id uuid.UUID, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.ID != id {
		return ErrNoSession
	}
	// The session owns the note identity.
	d.ID = s.session.Draft.ID
	d.CreatedAt = s.session.Draft.CreatedAt
	d.Unavailable, d.sealed = false, ""
	if prev := s.session.Draft; prev.sealed != "" && strings.TrimSpace(d.Content) == "" {
		d.Unavailable, d.sealed = true, prev.sealed
	}
	s.session.Draft = d
	return nil
}

// CloseSession ends the open edit session without saving.
func (s *Service) CloseSession(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.ID != id {
		return ErrNoSession
	}
	s.session = nil
	return nil
}

// SaveSession commits the open session's draft.
func (s *Service) SaveSession(ctx context.Context, id uuid.UUID, opts CommitOptions) (*notes.Note, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	sess, ok := s.CurrentSession()
	if !ok || sess.ID != id {
		return nil, ErrNoSession
	}
	return s.commit(ctx, sess.Draft, opts)
}

// AutoSave commits the open session's draft as an automatic save. It does
// nothing when no session is open, including one closed by Remove while
// the save was waiting.
func (s *Service) AutoSave(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	sess, ok := s.CurrentSession()
	if !ok {
		return nil
	}
	_, err := s.commit(ctx, sess.Draft, CommitOptions{Auto: true})
	return err
}

// CommitEdit validates, optionally encrypts and upserts a draft, then
// re-arms its reminder. A manual save of an empty draft fails with
// ErrEmptyNote; an automatic one returns (nil, nil). The store is untouched
// in both cases.
func (s *Service) CommitEdit(ctx context.Context, d Draft, opts CommitOptions) (*notes.Note, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	return s.commit(ctx, d, opts)
}

// commit requires commitMu.
func (s *Service) commit(ctx context.Context, d Draft, opts CommitOptions) (*notes.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(d.Title)
	content := strings.TrimSpace(d.Content)
	keepSealed := content == "" && d.sealed != ""
	if title == "" && content == "" && !keepSealed {
		if opts.Auto {
			return nil, nil
		}
		return nil, ErrEmptyNote
	}
	if title == "" {
		title = i18n.Printer(s.settings.Language()).Sprintf(i18n.UntitledNote)
	}

	n := notes.Note{
		ID:        d.ID,
		Title:     title,
		Content:   content,
		Tags:      notes.CleanTags(d.Tags),
		Reminder:  d.Reminder,
		CreatedAt: d.CreatedAt,
	}
	if existing, err := s.store.Get(d.ID); err == nil {
		n.IsFavorite = existing.IsFavorite
	}

	switch {
	case keepSealed:
		n.Content = d.sealed
		n.IsEncrypted = true
	case d.Encrypt && content != "":
		key, err := s.key()
		if err != nil {
			return nil, err
		}
		sealed, err := envelope.Encrypt(key, content)
		if err != nil {
			return nil, err
		}
		n.Content = sealed
		n.IsEncrypted = true
	}

	saved, err := s.store.Upsert(n)
	if err != nil {
		return nil, err
	}
	s.reminders.Arm(saved)

	if opts.Auto {
		s.logger.Debug("Auto-saved note", zap.Int64("note_id", saved.ID))
	} else {
		s.logger.Info("Note saved",
			zap.Int64("note_id", saved.ID),
			zap.Bool("encrypted", saved.IsEncrypted),
		)
	}
	return &saved, nil
}

// Remove deletes a note, cancels its reminder and closes an edit session
// on it so a pending auto-save cannot bring it back.
func (s *Service) Remove(id int64) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.reminders.Cancel(id)

	s.mu.Lock()
	if s.session != nil && s.session.Draft.ID == id {
		s.session = nil
	}
	s.mu.Unlock()
	return nil
}

// Find lists the notes of a view as stored.
func (s *Service) Find(view notes.View) []notes.Note {
	return s.store.Query(view)
}

// Search matches text against all notes. Encrypted content is only
// searched when the service is configured to decrypt for search.
func (s *Service) Search(text string) []notes.Note {
	var resolve search.Resolver
	if s.searchEncrypted {
		resolve = func(n notes.Note) (string, bool) {
			plain := s.decrypt(n)
			return plain, plain != ""
		}
	}
	return search.Search(text, s.store.Query(notes.ViewAll), resolve)
}

// ToggleFavorite flips a note's favorite flag.
func (s *Service) ToggleFavorite(id int64) (notes.Note, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	n, err := s.store.Get(id)
	if err != nil {
		return notes.Note{}, err
	}
	return s.store.SetFavorite(id, !n.IsFavorite)
}

// Tags lists distinct tags.
func (s *Service) Tags() []notes.TagCount {
	return s.store.Tags()
}

// SetPassphrase changes the encryption passphrase used for future saves
// and decryption.
func (s *Service) SetPassphrase(p string) error {
	return s.settings.SetPassphrase(p)
}

// Preview is the card text for a note: a placeholder for encrypted notes,
// otherwise the start of the stripped content.
func (s *Service) Preview(n notes.Note) string {
	if n.IsEncrypted {
		return i18n.Printer(s.settings.Language()).Sprintf(i18n.EncryptedNote)
	}
	return search.Preview(n.Content)
}

// SavedMessage is the user-facing notice for a manual save.
func (s *Service) SavedMessage() string {
	return i18n.Printer(s.settings.Language()).Sprintf(i18n.NoteSaved)
}

// EmptyMessage is the user-facing notice for ErrEmptyNote.
func (s *Service) EmptyMessage() string {
	return i18n.Printer(s.settings.Language()).Sprintf(i18n.EmptyNote)
}

func (s *Service) decrypt(n notes.Note) string {
	key, err := s.key()
	if err != nil {
		s.logger.Warn("Key derivation failed", zap.Error(err))
		return ""
	}
	plain, err := envelope.Open(key, n.Content)
	if err != nil {
		s.logger.Debug("Note content unavailable", zap.Int64("note_id", n.ID), zap.Error(err))
		return ""
	}
	return plain
}
