// Package store is the durable persistence surface for jobs and users.
// It holds no business logic: callers own every state transition, the
// store only executes atomic single-row reads and writes.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at path and applies the schema. The
// returned handle is injected into the stores and closed by the caller
// at shutdown; nothing in this package keeps ambient state.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			document_name TEXT NOT NULL,
			document_path TEXT NOT NULL,
			paper_type TEXT NOT NULL,
			print_quality INTEGER NOT NULL,
			color_mode TEXT NOT NULL,
			paper_size TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			device_token TEXT NOT NULL DEFAULT '',
			submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		);

		CREATE INDEX IF NOT EXISTS idx_jobs_user_id ON jobs(user_id);
		CREATE INDEX IF NOT EXISTS idx_jobs_submitted_at ON jobs(submitted_at);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
