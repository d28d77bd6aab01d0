package notes

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notekeeper/internal/storage"
)

// stepClock advances one second per reading.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, storage.Slots, *stepClock) {
	t.Helper()
	slots := storage.NewFileSlots(storage.NewMemoryFileSystem())
	clock := &stepClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewStore(slots, WithClock(clock.Now), WithLogger(zap.NewNop())), slots, clock
}

func TestLoadAllMissingSlot(t *testing.T) {
	store, _, _ := newTestStore(t)
	assert.Empty(t, store.LoadAll())
	assert.Empty(t, store.Query(ViewAll))
}

func TestLoadAllCorruptSlot(t *testing.T) {
	for name, blob := range map[string]string{
		"garbage":    "{not json",
		"wrong type": `{"id": 1}`,
		"bad time":   `[{"id":1,"title":"x","createdAt":"yesterday"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			slots := storage.NewFileSlots(storage.NewMemoryFileSystem())
			require.NoError(t, slots.Put(storage.SlotNotes, []byte(blob)))

			store := NewStore(slots, WithLogger(zap.NewNop()))
			assert.Empty(t, store.LoadAll())
		})
	}
}

func TestUpsertPersistsAndReloads(t *testing.T) {
	store, slots, _ := newTestStore(t)

	saved, err := store.Upsert(Note{ID: 1, Title: "Shopping", Content: "milk, eggs", Tags: []string{"home"}})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.Before(saved.CreatedAt))

	reopened := NewStore(slots, WithLogger(zap.NewNop()))
	all := reopened.Query(ViewAll)
	require.Len(t, all, 1)
	assert.Equal(t, "Shopping", all[0].Title)
	assert.Equal(t, []string{"home"}, all[0].Tags)
	assert.True(t, all[0].UpdatedAt.Equal(saved.UpdatedAt))
}

func TestUpsertIdentity(t *testing.T) {
	store, _, _ := newTestStore(t)

	first, err := store.Upsert(Note{ID: 42, Title: "v1", Content: "first"})
	require.NoError(t, err)
	second, err := store.Upsert(Note{ID: 42, Title: "v2", Content: "second"})
	require.NoError(t, err)

	all := store.Query(ViewAll)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Content)
	assert.Equal(t, "v2", all[0].Title)
	assert.True(t, all[0].UpdatedAt.Equal(second.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, all[0].CreatedAt.Equal(first.CreatedAt), "createdAt is set once")
}

func TestUpsertReplacesInPlace(t *testing.T) {
	store, _, _ := newTestStore(t)
	for _, id := range []int64{1, 2, 3} {
		_, err := store.Upsert(Note{ID: id, Title: "n"})
		require.NoError(t, err)
	}

	_, err := store.Upsert(Note{ID: 2, Title: "edited"})
	require.NoError(t, err)

	all := store.Query(ViewAll)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))
	assert.Equal(t, "edited", all[1].Title)
}

func TestUpsertAssignsIDs(t *testing.T) {
	store, _, _ := newTestStore(t)

	a, err := store.Upsert(Note{Title: "a"})
	require.NoError(t, err)
	b, err := store.Upsert(Note{Title: "b"})
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Greater(t, b.ID, a.ID)
}

func TestNextIDIsMonotonic(t *testing.T) {
	slots := storage.NewFileSlots(storage.NewMemoryFileSystem())
	frozen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(slots, WithClock(func() time.Time { return frozen }), WithLogger(zap.NewNop()))

	prev := store.NextID()
	for i := 0; i < 100; i++ {
		id := store.NextID()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestDelete(t *testing.T) {
	store, slots, _ := newTestStore(t)
	for _, id := range []int64{1, 2, 3} {
		_, err := store.Upsert(Note{ID: id, Title: "n"})
		require.NoError(t, err)
	}

	require.NoError(t, store.Delete(2))
	require.NoError(t, store.Delete(99), "missing id is a no-op")

	assert.Equal(t, []int64{1, 3}, ids(store.Query(ViewAll)))
	assert.Equal(t, []int64{1, 3}, ids(NewStore(slots, WithLogger(zap.NewNop())).Query(ViewAll)))

	_, err := store.Get(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryFavorites(t *testing.T) {
	store, _, _ := newTestStore(t)
	for i := int64(1); i <= 5; i++ {
		_, err := store.Upsert(Note{ID: i, Title: "n", IsFavorite: i == 2 || i == 4})
		require.NoError(t, err)
	}

	favs := store.Query(ViewFavorites)
	assert.Equal(t, []int64{2, 4}, ids(favs))
}

func TestQueryRecent(t *testing.T) {
	t.Run("newest first", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		for _, id := range []int64{1, 2, 3} {
			_, err := store.Upsert(Note{ID: id, Title: "n"})
			require.NoError(t, err)
		}
		assert.Equal(t, []int64{3, 2, 1}, ids(store.Query(ViewRecent)))
	})

	t.Run("re-saved note moves to front", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		for _, id := range []int64{1, 2, 3} {
			_, err := store.Upsert(Note{ID: id, Title: "n"})
			require.NoError(t, err)
		}
		_, err := store.Upsert(Note{ID: 1, Title: "again"})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3, 2}, ids(store.Query(ViewRecent)))
		assert.Equal(t, []int64{1, 2, 3}, ids(store.Query(ViewAll)), "all keeps insertion order")
	})

	t.Run("truncated to ten", func(t *testing.T) {
		store, _, _ := newTestStore(t)
		for id := int64(1); id <= 15; id++ {
			_, err := store.Upsert(Note{ID: id, Title: "n"})
			require.NoError(t, err)
		}
		recent := store.Query(ViewRecent)
		require.Len(t, recent, RecentLimit)
		assert.Equal(t, int64(15), recent[0].ID)
		assert.Equal(t, int64(6), recent[9].ID)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		slots := storage.NewFileSlots(storage.NewMemoryFileSystem())
		frozen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		store := NewStore(slots, WithClock(func() time.Time { return frozen }), WithLogger(zap.NewNop()))
		for _, id := range []int64{5, 3, 9} {
			_, err := store.Upsert(Note{ID: id, Title: "n"})
			require.NoError(t, err)
		}
		assert.Equal(t, []int64{5, 3, 9}, ids(store.Query(ViewRecent)))
	})
}

func TestQueryReturnsCopies(t *testing.T) {
	store, _, _ := newTestStore(t)
	_, err := store.Upsert(Note{ID: 1, Title: "n", Tags: []string{"a"}})
	require.NoError(t, err)

	all := store.Query(ViewAll)
	all[0].Title = "mutated"
	all[0].Tags[0] = "mutated"

	again := store.Query(ViewAll)
	assert.Equal(t, "n", again[0].Title)
	assert.Equal(t, []string{"a"}, again[0].Tags)
}

func TestStoreDoesNotInspectEncryption(t *testing.T) {
	store, _, _ := newTestStore(t)
	_, err := store.Upsert(Note{ID: 1, Title: "sealed", Content: "AAAA", IsEncrypted: true})
	require.NoError(t, err)

	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", got.Content)
	assert.True(t, got.IsEncrypted)
}

func TestSetFavorite(t *testing.T) {
	store, _, _ := newTestStore(t)
	saved, err := store.Upsert(Note{ID: 1, Title: "n"})
	require.NoError(t, err)

	fav, err := store.SetFavorite(1, true)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)
	assert.True(t, fav.UpdatedAt.Equal(saved.UpdatedAt))

	_, err = store.SetFavorite(7, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTags(t *testing.T) {
	store, _, _ := newTestStore(t)
	_, err := store.Upsert(Note{ID: 1, Title: "a", Tags: []string{"work", "urgent", "work"}})
	require.NoError(t, err)
	_, err = store.Upsert(Note{ID: 2, Title: "b", Tags: []string{"home", "work"}})
	require.NoError(t, err)

	assert.Equal(t, []TagCount{
		{Name: "work", Count: 2},
		{Name: "urgent", Count: 1},
		{Name: "home", Count: 1},
	}, store.Tags())
}

type failingSlots struct {
	storage.Slots
}

func (failingSlots) Put(string, []byte) error { return errors.New("disk full") }

func TestUpsertWriteFailureLeavesStoreUnchanged(t *testing.T) {
	inner := storage.NewFileSlots(storage.NewMemoryFileSystem())
	store := NewStore(failingSlots{inner}, WithLogger(zap.NewNop()))

	_, err := store.Upsert(Note{ID: 1, Title: "n"})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func ids(list []Note) []int64 {
	out := make([]int64, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}
