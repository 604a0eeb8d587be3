package journal

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/bulkren/internal/clock"
	"github.com/danieljhkim/bulkren/internal/rename"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*BadgerStore, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(epoch)
	clk.SetStep(time.Second)

	store, err := Open("", WithClock(clk), WithCacheSize(4))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store, clk
}

func sampleEntry(n int) *Entry {
	src := fmt.Sprintf("/data/%d.txt", n)
	dst := fmt.Sprintf("/data/%d.txt", n+1)
	return &Entry{
		Mode:    rename.ModeError,
		Pairs:   []rename.Pair{{Source: src, Target: dst}},
		Undo:    []rename.Pair{{Source: dst, Target: src}},
		State:   rename.Reversible,
		Outcome: OutcomeApplied,
	}
}

func TestBadgerStore_SaveAndGet(t *testing.T) {
	store, _ := setupTestStore(t)

	entry := sampleEntry(1)
	require.NoError(t, store.Save(entry))

	_, err := uuid.Parse(entry.ID)
	assert.NoError(t, err, "Save should assign a UUID")
	assert.True(t, entry.CreatedAt.Equal(epoch))

	got, err := store.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Pairs, got.Pairs)
	assert.Equal(t, entry.Undo, got.Undo)
	assert.Equal(t, rename.Reversible, got.State)
	assert.Equal(t, rename.ModeError, got.Mode)
	assert.Equal(t, OutcomeApplied, got.Outcome)
	assert.True(t, got.Reversible())

	t.Run("returned entries are copies", func(t *testing.T) {
		got.Pairs[0].Target = "/mutated"
		again, err := store.Get(entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry.Pairs[0].Target, again.Pairs[0].Target)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		dup := sampleEntry(2)
		dup.ID = entry.ID
		assert.Error(t, store.Save(dup))
	})

	t.Run("prefix lookup", func(t *testing.T) {
		byPrefix, err := store.Get(entry.ShortID())
		require.NoError(t, err)
		assert.Equal(t, entry.ID, byPrefix.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get("does-not-exist")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = store.Get("")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestBadgerStore_AmbiguousPrefix(t *testing.T) {
	store, _ := setupTestStore(t)

	a := sampleEntry(1)
	a.ID = "abc-1"
	b := sampleEntry(2)
	b.ID = "abc-2"
	require.NoError(t, store.Save(a))
	require.NoError(t, store.Save(b))

	_, err := store.Get("abc")
	assert.True(t, errors.Is(err, ErrAmbiguous))

	got, err := store.Get("abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", got.ID)
}

func TestBadgerStore_ListNewestFirst(t *testing.T) {
	store, _ := setupTestStore(t)

	var ids []string
	for i := 0; i < 10; i++ {
		entry := sampleEntry(i)
		require.NoError(t, store.Save(entry))
		ids = append(ids, entry.ID)
	}

	all, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, all, 10)
	for i, entry := range all {
		assert.Equal(t, ids[9-i], entry.ID)
	}

	limited, err := store.List(3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, ids[9], limited[0].ID)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, ids[9], latest.ID)
}

func TestBadgerStore_ExplicitTimestampsOrder(t *testing.T) {
	store, _ := setupTestStore(t)

	older := sampleEntry(1)
	older.CreatedAt = epoch.Add(-time.Hour)
	newer := sampleEntry(2)
	newer.CreatedAt = epoch.Add(time.Hour)

	require.NoError(t, store.Save(newer))
	require.NoError(t, store.Save(older))

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestBadgerStore_LatestOnEmpty(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Latest()
	assert.True(t, errors.Is(err, ErrEmpty))

	entries, err := store.List(5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBadgerStore_MarkUndone(t *testing.T) {
	store, clk := setupTestStore(t)

	entry := sampleEntry(1)
	require.NoError(t, store.Save(entry))

	at := clk.Now()
	require.NoError(t, store.MarkUndone(entry.ID, at))

	got, err := store.Get(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UndoneAt)
	assert.True(t, got.UndoneAt.Equal(at))
	assert.True(t, got.Undone())
	assert.False(t, got.Reversible())

	listed, err := store.List(1)
	require.NoError(t, err)
	assert.True(t, listed[0].Undone(), "persisted, not only cached")

	assert.True(t, errors.Is(store.MarkUndone("missing", at), ErrNotFound))
}

func TestBadgerStore_Prune(t *testing.T) {
	store, _ := setupTestStore(t)

	var ids []string
	for i := 0; i < 6; i++ {
		entry := sampleEntry(i)
		require.NoError(t, store.Save(entry))
		ids = append(ids, entry.ID)
	}

	removed, err := store.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	remaining, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, ids[5], remaining[0].ID)
	assert.Equal(t, ids[4], remaining[1].ID)

	for _, id := range ids[:4] {
		_, err := store.Get(id)
		assert.True(t, errors.Is(err, ErrNotFound), "pruned entry %s still readable", id)
	}

	removed, err = store.Prune(10)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = store.Prune(-1)
	assert.Error(t, err)
}

func TestBadgerStore_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	entry := sampleEntry(1)
	entry.State = rename.NotYetReversible
	entry.Outcome = OutcomeInterrupted
	entry.Error = "io error: boom"
	require.NoError(t, store.Save(entry))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, rename.NotYetReversible, got.State)
	assert.Equal(t, OutcomeInterrupted, got.Outcome)
	assert.Equal(t, "io error: boom", got.Error)
	assert.True(t, got.Reversible())
}

func TestEntry_Irreversible(t *testing.T) {
	entry := sampleEntry(1)
	entry.State = rename.Irreversible
	assert.False(t, entry.Reversible())

	entry = sampleEntry(1)
	entry.Undo = nil
	assert.False(t, entry.Reversible())
}
