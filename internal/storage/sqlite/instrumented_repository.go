package sqlite

import (
	"context"
	"database/sql"

	"github.com/italolelis/football_logos/internal/storage"
	"github.com/italolelis/football_logos/internal/telemetry"
)

// InstrumentedJournalRepository wraps the journal repositories with telemetry.
type InstrumentedJournalRepository struct {
	write     *JournalWriteRepository
	read      *JournalReadRepository
	telemetry *telemetry.Telemetry
}

// NewInstrumentedJournalRepository creates a new instrumented journal repository.
func NewInstrumentedJournalRepository(dbConn *sql.DB, tel *telemetry.Telemetry) *InstrumentedJournalRepository {
	return &InstrumentedJournalRepository{
		write:     NewJournalWriteRepository(dbConn),
		read:      NewJournalReadRepository(dbConn),
		telemetry: tel,
	}
}

// RecordFetch stores a fetch outcome with telemetry.
func (r *InstrumentedJournalRepository) RecordFetch(ctx context.Context, rec storage.FetchRecord) error {
	return r.telemetry.InstrumentDBOperation(ctx, "record_fetch", func(ctx context.Context) error {
		return r.write.RecordFetch(ctx, rec)
	})
}

// ListRuns lists recent runs with telemetry.
func (r *InstrumentedJournalRepository) ListRuns(ctx context.Context, limit int) ([]storage.RunSummary, error) {
	var result []storage.RunSummary

	err := r.telemetry.InstrumentDBOperation(ctx, "list_runs", func(ctx context.Context) error {
		var err error

		result, err = r.read.ListRuns(ctx, limit)

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetRun loads one run's records with telemetry.
func (r *InstrumentedJournalRepository) GetRun(ctx context.Context, runID string) ([]storage.FetchRecord, error) {
	var result []storage.FetchRecord

	err := r.telemetry.InstrumentDBOperation(ctx, "get_run", func(ctx context.Context) error {
		var err error

		result, err = r.read.GetRun(ctx, runID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
