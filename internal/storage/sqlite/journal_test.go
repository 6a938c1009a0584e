package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/italolelis/football_logos/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *InstrumentedJournalRepository {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "state", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewInstrumentedJournalRepository(db, nil)
}

func TestJournal_RecordAndListRuns(t *testing.T) {
	ctx := context.Background()
	repo := newTestJournal(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []storage.FetchRecord{
		{RunID: "run-a", CountrySlug: "england", TeamSlug: "liverpool", Variant: "png", Result: "downloaded", RecordedAt: base},
		{RunID: "run-a", CountrySlug: "england", TeamSlug: "liverpool", Variant: "svg", Result: "no_vector", RecordedAt: base.Add(time.Second)},
		{RunID: "run-a", CountrySlug: "england", TeamSlug: "arsenal", Variant: "png", Result: "downloaded", RecordedAt: base.Add(2 * time.Second)},
		{RunID: "run-b", CountrySlug: "england", TeamSlug: "liverpool", Variant: "png", Result: "skipped", RecordedAt: base.Add(time.Hour)},
	}

	for _, rec := range records {
		require.NoError(t, repo.RecordFetch(ctx, rec))
	}

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-b", runs[0].RunID, "most recent run first")
	assert.Equal(t, 1, runs[0].Total)
	assert.Equal(t, map[string]int{"skipped": 1}, runs[0].Counts)

	assert.Equal(t, "run-a", runs[1].RunID)
	assert.Equal(t, 3, runs[1].Total)
	assert.Equal(t, map[string]int{"downloaded": 2, "no_vector": 1}, runs[1].Counts)
	assert.True(t, runs[1].StartedAt.Equal(base))
	assert.True(t, runs[1].FinishedAt.Equal(base.Add(2*time.Second)))
}

func TestJournal_ListRunsRespectsLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestJournal(t)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, repo.RecordFetch(ctx, storage.FetchRecord{
			RunID:      id,
			Result:     "downloaded",
			RecordedAt: time.Unix(int64(1000+i), 0),
		}))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].RunID)
	assert.Equal(t, "r2", runs[1].RunID)
}

func TestJournal_GetRunKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestJournal(t)

	require.NoError(t, repo.RecordFetch(ctx, storage.FetchRecord{RunID: "x", TeamSlug: "b", Result: "failed", Detail: "Failed PNG B: boom"}))
	require.NoError(t, repo.RecordFetch(ctx, storage.FetchRecord{RunID: "x", TeamSlug: "a", Result: "downloaded"}))
	require.NoError(t, repo.RecordFetch(ctx, storage.FetchRecord{RunID: "y", TeamSlug: "c", Result: "downloaded"}))

	recs, err := repo.GetRun(ctx, "x")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].TeamSlug)
	assert.Equal(t, "Failed PNG B: boom", recs[0].Detail)
	assert.Equal(t, "a", recs[1].TeamSlug)
	assert.False(t, recs[1].RecordedAt.IsZero())
}

func TestJournal_EmptyDatabase(t *testing.T) {
	repo := newTestJournal(t)

	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
