package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import the SQLite driver.
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout has a fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// InitDB opens the journal at path and creates the fetches table if it doesn't exist.
func InitDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// one writer; the dispatcher is the only goroutine that records
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		country_slug TEXT,
		team_slug TEXT,
		variant TEXT,
		result TEXT,
		path TEXT,
		detail TEXT,
		recorded_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()

		return nil, err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches (run_id)`); err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}
