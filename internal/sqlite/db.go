package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies the schema directly (used by tests; production runs
// the embedded migrations from cmd/server).
func (db *DB) RunMigrations() error {
	migration := `
-- Sessions table: one row per session, open or closed
CREATE TABLE sessions (
    id TEXT PRIMARY KEY,
    scope_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    capacity INTEGER NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('open', 'closed')),
    created_at TIMESTAMP NOT NULL,
    last_touched_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_scope_sessions ON sessions(scope_id);
CREATE UNIQUE INDEX idx_scope_open_session ON sessions(scope_id) WHERE status = 'open';

-- Claimed slots of a session
CREATE TABLE roster_slots (
    session_id TEXT NOT NULL,
    slot_index INTEGER NOT NULL,
    member_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    availability TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (session_id, slot_index),
    UNIQUE (session_id, member_id),
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

-- Session event log
CREATE TABLE activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scope_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    member_id TEXT,
    activity_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_scope_activity ON activity_log(scope_id);
CREATE INDEX idx_activity_created_at ON activity_log(created_at);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
