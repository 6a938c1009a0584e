package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/italolelis/football_logos/internal/storage"
)

type JournalReadRepository struct {
	db *sql.DB
}

func NewJournalReadRepository(dbConn *sql.DB) *JournalReadRepository {
	return &JournalReadRepository{db: dbConn}
}

// ListRuns returns the most recent runs first, up to limit.
func (r *JournalReadRepository) ListRuns(ctx context.Context, limit int) ([]storage.RunSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			run_id,
			MIN(recorded_at),
			MAX(recorded_at),
			COUNT(*)
		FROM fetches
		GROUP BY run_id
		ORDER BY MIN(recorded_at) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []storage.RunSummary

	for rows.Next() {
		var (
			run             storage.RunSummary
			started, finish string
		)

		if err := rows.Scan(&run.RunID, &started, &finish, &run.Total); err != nil {
			return nil, err
		}

		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}

		if run.FinishedAt, err = parseTime(finish); err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		counts, err := r.countResults(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}

		runs[i].Counts = counts
	}

	return runs, nil
}

// GetRun returns every record of a run in insertion order.
func (r *JournalReadRepository) GetRun(ctx context.Context, runID string) ([]storage.FetchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, country_slug, team_slug, variant, result, path, detail, recorded_at
		FROM fetches
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []storage.FetchRecord

	for rows.Next() {
		var (
			rec storage.FetchRecord
			at  string
		)

		if err := rows.Scan(&rec.RunID, &rec.CountrySlug, &rec.TeamSlug, &rec.Variant,
			&rec.Result, &rec.Path, &rec.Detail, &at); err != nil {
			return nil, err
		}

		if rec.RecordedAt, err = parseTime(at); err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *JournalReadRepository) countResults(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT result, COUNT(*) FROM fetches WHERE run_id = ? GROUP BY result`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {
		var (
			result string
			n      int
		)

		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}

		counts[result] = n
	}

	return counts, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid journal timestamp %q: %w", s, err)
	}

	return t, nil
}
