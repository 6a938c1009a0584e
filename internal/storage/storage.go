// Package storage defines the optional run journal. The journal is a record
// of what happened; it is never consulted when deciding whether to download.
package storage

import (
	"context"
	"time"
)

// FetchRecord is one journaled fetch outcome.
type FetchRecord struct {
	RunID       string
	CountrySlug string
	TeamSlug    string
	Variant     string
	Result      string
	Path        string
	Detail      string
	RecordedAt  time.Time
}

// RunSummary aggregates the records of a single run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Counts     map[string]int // keyed by result
}

type JournalWriteRepository interface {
	RecordFetch(ctx context.Context, rec FetchRecord) error
}

type JournalReadRepository interface {
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	GetRun(ctx context.Context, runID string) ([]FetchRecord, error)
}

// NoopJournal is used when journaling is disabled.
type NoopJournal struct{}

func (NoopJournal) RecordFetch(context.Context, FetchRecord) error { return nil }
