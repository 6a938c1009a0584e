package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/italolelis/football_logos/internal/storage"
)

// JournalWriteRepository implements storage.JournalWriteRepository
// and stores fetch outcomes in SQLite.
type JournalWriteRepository struct {
	db *sql.DB
}

func NewJournalWriteRepository(db *sql.DB) *JournalWriteRepository {
	return &JournalWriteRepository{db: db}
}

func (r *JournalWriteRepository) RecordFetch(ctx context.Context, rec storage.FetchRecord) error {
	at := rec.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fetches (run_id, country_slug, team_slug, variant, result, path, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.CountrySlug, rec.TeamSlug, rec.Variant, rec.Result, rec.Path, rec.Detail,
		at.UTC().Format(timeLayout),
	)

	return err
}
