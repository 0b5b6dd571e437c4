package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Run{
		JobID:      "abc12345",
		Document:   "balance.json",
		Status:     "completed",
		Violations: 4,
		Applied:    3,
		Failed:     1,
	}))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "abc12345", runs[0].JobID)
	require.Equal(t, "balance.json", runs[0].Document)
	require.Equal(t, 4, runs[0].Violations)
	require.Equal(t, 3, runs[0].Applied)
	require.Equal(t, 1, runs[0].Failed)
	require.False(t, runs[0].CreatedAt.IsZero())
}

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, job := range []string{"first", "second", "third"} {
		require.NoError(t, store.Record(ctx, Run{
			JobID:     job,
			Document:  "doc.json",
			Status:    "completed",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "third", runs[0].JobID)
	require.Equal(t, "first", runs[2].JobID)
}

func TestRecentLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, store.Record(ctx, Run{JobID: "x", Document: "d", Status: "completed"}))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestRecentEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestReopenPersists(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, Run{JobID: "abc", Document: "d", Status: "completed"}))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
