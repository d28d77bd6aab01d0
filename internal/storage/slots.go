package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Well-known slot keys. Each slot holds one opaque value.
const (
	SlotNotes      = "premium-notes"
	SlotPassphrase = "encryption-passphrase"
	SlotTheme      = "theme-preference"
	SlotLanguage   = "language-preference"
)

// AllSlots lists every well-known slot key.
var AllSlots = []string{SlotNotes, SlotPassphrase, SlotTheme, SlotLanguage}

// ValidKey reports whether key can name a slot.
func ValidKey(key string) bool {
	return slotKeyPattern.MatchString(key)
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var (
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
	// ErrInvalidKey is returned for slot keys that are not plain names.
	ErrInvalidKey = errors.New("invalid slot key")
)

var slotKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Slots is a small persistent key/value store. Get reports ok=false for a
// slot that was never written.
type Slots interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open returns the slot store for driver, keeping its files under fs's data dir.
func Open(driver string, fs *FileSystem) (Slots, error) {
	switch driver {
	case "", DriverFile:
		return NewFileSlots(fs), nil
	case DriverSQLite:
		return NewSQLiteSlots(filepath.Join(fs.GetDataDir(), "notekeeper.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func validKey(key string) error {
	if !slotKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// FileSlots stores every slot as <data_dir>/slots/<key>.
type FileSlots struct {
	fs *FileSystem
}

// NewFileSlots creates a file-backed slot store.
func NewFileSlots(fs *FileSystem) *FileSlots {
	return &FileSlots{fs: fs}
}

func (s *FileSlots) path(key string) string {
	return filepath.Join(s.fs.GetDataDir(), "slots", key)
}

// Get reads a slot.
func (s *FileSlots) Get(key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}

	data, err := s.fs.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return data, true, nil
}

// Put replaces a slot in one atomic write.
func (s *FileSlots) Put(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.fs.WriteFileAtomic(s.path(key), value, 0600); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete removes a slot; deleting a missing slot is not an error.
func (s *FileSlots) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for file slots.
func (s *FileSlots) Close() error { return nil }
