package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB is the local SQLite store: cached event lists, the persisted session
// cookie and announcement notifications.
type DB struct {
	db *sql.DB
}

// Open creates or opens the database at path and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS event_lists (
			list_type TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS monitored_events (
			event_id TEXT PRIMARY KEY,
			known_ids TEXT NOT NULL DEFAULT '[]',
			last_checked INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			announcement_id TEXT NOT NULL UNIQUE,
			event_id TEXT NOT NULL,
			event_title TEXT,
			posted_by TEXT,
			preview TEXT,
			created_at INTEGER NOT NULL,
			read INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
