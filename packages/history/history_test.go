package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(&Entry{
			ID:          fmt.Sprintf("id-%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Method:      "GET",
			URL:         fmt.Sprintf("http://localhost/api/%d", i),
			ContentType: "none",
			ExitCode:    0,
			Duration:    time.Duration(100+i) * time.Millisecond,
		}))
	}

	entries, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, "id-2", entries[0].ID)
	assert.Equal(t, "id-0", entries[2].ID)
	assert.Equal(t, "http://localhost/api/2", entries[0].URL)
	assert.Equal(t, 102*time.Millisecond, entries[0].Duration)
}

func TestList_Limit(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(&Entry{
			ID:        fmt.Sprintf("id-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			Method:    "GET",
			URL:       "http://localhost",
			Duration:  time.Millisecond,
		}))
	}

	entries, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPercentiles(t *testing.T) {
	store := openTestStore(t)

	durations := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
		1000 * time.Millisecond,
	}
	for i, d := range durations {
		require.NoError(t, store.Record(&Entry{
			ID:        fmt.Sprintf("id-%d", i),
			CreatedAt: time.Now().UTC(),
			Method:    "GET",
			URL:       "http://localhost",
			Duration:  d,
		}))
	}

	stats, err := store.Percentiles()
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Count)
	assert.Equal(t, 10*time.Millisecond, stats.Min)
	// hdrhistogram at 3 significant figures keeps these exact
	assert.Equal(t, 1000*time.Millisecond, stats.Max)
	assert.InDelta(t, float64(30*time.Millisecond), float64(stats.P50), float64(time.Millisecond))
	assert.GreaterOrEqual(t, stats.P99, stats.P50)
}

func TestPercentiles_Empty(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Percentiles()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Count)
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Record(&Entry{
		ID:        "id-1",
		CreatedAt: time.Now().UTC(),
		Method:    "GET",
		URL:       "http://localhost",
		Duration:  time.Millisecond,
	}))

	require.NoError(t, store.Clear())

	entries, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClose_PersistsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(&Entry{
		ID:        "id-1",
		CreatedAt: time.Now().UTC(),
		Method:    "GET",
		URL:       "http://localhost",
		Duration:  time.Millisecond,
	}))

	// Closing twice must stay safe: the dispatch path closes the store
	// explicitly before exiting and also holds a deferred close.
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "id-1", entries[0].ID)
}

func TestRecord_DuplicateID(t *testing.T) {
	store := openTestStore(t)

	e := &Entry{
		ID:        "dup",
		CreatedAt: time.Now().UTC(),
		Method:    "GET",
		URL:       "http://localhost",
		Duration:  time.Millisecond,
	}
	require.NoError(t, store.Record(e))
	assert.Error(t, store.Record(e))
}
