package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/envelope"
	"notekeeper/internal/storage"
)

func newSettings() *Settings {
	return New(storage.NewFileSlots(storage.NewMemoryFileSystem()))
}

func TestDefaults(t *testing.T) {
	s := newSettings()
	assert.Equal(t, Preferences{Theme: "dark", Language: "tr"}, s.Preferences())
	assert.Equal(t, envelope.DefaultPassphrase, s.Passphrase())
}

func TestSetPreferences(t *testing.T) {
	s := newSettings()

	require.NoError(t, s.SetPreferences(Preferences{Theme: ThemeLight}))
	assert.Equal(t, Preferences{Theme: "light", Language: "tr"}, s.Preferences())

	require.NoError(t, s.SetPreferences(Preferences{Language: "en"}))
	assert.Equal(t, Preferences{Theme: "light", Language: "en"}, s.Preferences())

	assert.ErrorIs(t, s.SetPreferences(Preferences{Theme: "neon"}), ErrInvalidTheme)
	assert.ErrorIs(t, s.SetPreferences(Preferences{Language: "xx"}), ErrInvalidLanguage)
	assert.Equal(t, Preferences{Theme: "light", Language: "en"}, s.Preferences(), "rejected input leaves slots untouched")
}

func TestPassphrase(t *testing.T) {
	s := newSettings()

	require.NoError(t, s.SetPassphrase("hunter2"))
	assert.Equal(t, "hunter2", s.Passphrase())

	require.NoError(t, s.SetPassphrase(""))
	assert.Equal(t, envelope.DefaultPassphrase, s.Passphrase())
}
