// Package store is the SQLite persistence boundary of the scheduling
// engine. The engine itself is pure computation; every consistency
// guarantee that must survive concurrent writers lives here, as a
// conditional write inside a transaction.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownResource is returned when an operation references a
	// resource that does not exist or is inactive.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrStaleWrite is the optimistic-concurrency rejection: the snapshot
	// the caller validated against changed before the write landed. The UI
	// should refresh the grid and retry.
	ErrStaleWrite = errors.New("stale write, retry with a fresh snapshot")
)

// dateLayout is the canonical storage format for appointment dates.
const dateLayout = "2006-01-02"

// Store wraps sql.DB for the scheduling engine.
type Store struct {
	*sql.DB
}

// New opens the database at path and runs migrations. Use ":memory:" for
// tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Store{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS weekly_schedules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_id INTEGER NOT NULL,
			day_of_week INTEGER NOT NULL,
			is_working BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(resource_id, day_of_week),
			FOREIGN KEY (resource_id) REFERENCES resources(id)
		)`,

		`CREATE TABLE IF NOT EXISTS schedule_shifts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_id INTEGER NOT NULL,
			day_of_week INTEGER NOT NULL,
			start_min INTEGER NOT NULL,
			end_min INTEGER NOT NULL,
			FOREIGN KEY (resource_id) REFERENCES resources(id)
		)`,

		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT UNIQUE NOT NULL,
			resource_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			start_min INTEGER NOT NULL,
			duration_min INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			customer_id INTEGER NOT NULL DEFAULT 0,
			customer_name TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (resource_id) REFERENCES resources(id)
		)`,

		`CREATE TABLE IF NOT EXISTS blockages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT UNIQUE NOT NULL,
			resource_id INTEGER,
			date TEXT NOT NULL,
			start_min INTEGER NOT NULL,
			end_min INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (resource_id) REFERENCES resources(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_shifts_resource_day ON schedule_shifts(resource_id, day_of_week)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_resource_date ON appointments(resource_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_blockages_date ON blockages(date)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// dateKey normalizes a date to its storage form, dropping the time of day.
func dateKey(date time.Time) string {
	return date.Format(dateLayout)
}

func parseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
