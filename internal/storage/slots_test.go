package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotBackends(t *testing.T) map[string]Slots {
	t.Helper()

	sqlite, err := NewSQLiteSlots(filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Slots{
		"file":   NewFileSlots(NewMemoryFileSystem()),
		"sqlite": sqlite,
	}
}

func TestSlots(t *testing.T) {
	for name, slots := range slotBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := slots.Get(SlotNotes)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store should have no notes slot")

			require.NoError(t, slots.Put(SlotNotes, []byte(`[]`)))
			require.NoError(t, slots.Put(SlotNotes, []byte(`[{"id":1}]`)))

			got, ok, err := slots.Get(SlotNotes)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, string(got))

			require.NoError(t, slots.Delete(SlotNotes))
			require.NoError(t, slots.Delete(SlotNotes), "second delete is a no-op")

			_, ok, err = slots.Get(SlotNotes)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSlotsRejectPathLikeKeys(t *testing.T) {
	for name, slots := range slotBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", "UPPER"} {
				assert.ErrorIs(t, slots.Put(key, []byte("x")), ErrInvalidKey, key)
				_, _, err := slots.Get(key)
				assert.ErrorIs(t, err, ErrInvalidKey, key)
			}
		})
	}
}

func TestFileSlotsLeaveNoTempFiles(t *testing.T) {
	fs := NewMemoryFileSystem()
	slots := NewFileSlots(fs)

	for i := 0; i < 3; i++ {
		require.NoError(t, slots.Put(SlotTheme, []byte("dark")))
	}

	entries, err := fs.Open(filepath.Join(fs.GetDataDir(), "slots"))
	require.NoError(t, err)
	defer entries.Close()

	names, err := entries.Readdirnames(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{SlotTheme}, names)
}

func TestOpenDriver(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	require.NoError(t, err)

	s, err := Open(DriverFile, fs)
	require.NoError(t, err)
	assert.IsType(t, &FileSlots{}, s)

	s, err = Open(DriverSQLite, fs)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSlots{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", fs)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
