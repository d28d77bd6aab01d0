package settings

import (
	"errors"
	"fmt"

	"notekeeper/internal/envelope"
	"notekeeper/internal/i18n"
	"notekeeper/internal/storage"
)

// Theme values accepted by SetPreferences.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

var (
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidLanguage = errors.New("unsupported language")
)

// Preferences are the settings panel values.
type Preferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// Settings reads and writes the preference and passphrase slots.
type Settings struct {
	slots storage.Slots
}

// New creates Settings over slots.
func New(slots storage.Slots) *Settings {
	return &Settings{slots: slots}
}

func (s *Settings) get(key, fallback string) string {
	v, ok, err := s.slots.Get(key)
	if err != nil || !ok || len(v) == 0 {
		return fallback
	}
	return string(v)
}

// Preferences returns the stored preferences, defaulting to dark and Turkish.
func (s *Settings) Preferences() Preferences {
	return Preferences{
		Theme:    s.get(storage.SlotTheme, ThemeDark),
		Language: s.Language(),
	}
}

// Language returns the stored language preference.
func (s *Settings) Language() string {
	return s.get(storage.SlotLanguage, i18n.DefaultLanguage)
}

// SetPreferences validates and stores p. Empty fields are left unchanged.
func (s *Settings) SetPreferences(p Preferences) error {
	if p.Theme != "" {
		switch p.Theme {
		case ThemeDark, ThemeLight, ThemeAuto:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTheme, p.Theme)
		}
	}
	if p.Language != "" && !i18n.Supported(p.Language) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, p.Language)
	}

	if p.Theme != "" {
		if err := s.slots.Put(storage.SlotTheme, []byte(p.Theme)); err != nil {
			return err
		}
	}
	if p.Language != "" {
		if err := s.slots.Put(storage.SlotLanguage, []byte(p.Language)); err != nil {
			return err
		}
	}
	return nil
}

// Passphrase returns the stored encryption passphrase, or the built-in
// default when none is set.
func (s *Settings) Passphrase() string {
	return s.get(storage.SlotPassphrase, envelope.DefaultPassphrase)
}

// SetPassphrase stores a new passphrase; "" reverts to the default.
// Content encrypted under the previous passphrase no longer decrypts.
func (s *Settings) SetPassphrase(p string) error {
	if p == "" {
		return s.slots.Delete(storage.SlotPassphrase)
	}
	return s.slots.Put(storage.SlotPassphrase, []byte(p))
}
