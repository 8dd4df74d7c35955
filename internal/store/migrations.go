package store

import (
	"fmt"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "contacts",
		SQL: `
CREATE TABLE contacts (
	id                TEXT PRIMARY KEY,
	full_name         TEXT NOT NULL,
	relationship      TEXT NOT NULL CHECK (relationship IN ('friend', 'family', 'business', 'other')),
	phone_number      TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	frequency_days    INTEGER NOT NULL CHECK (frequency_days > 0),
	priority          INTEGER NOT NULL CHECK (priority BETWEEN 1 AND 5),
	last_contacted_at INTEGER,
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);

CREATE INDEX idx_contacts_name ON contacts(full_name COLLATE NOCASE);
`,
	},
	{
		Version:     2,
		Description: "interactions: append-only outreach ledger",
		// No foreign key: deleting a contact leaves its interactions as history.
		SQL: `
CREATE TABLE interactions (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	contact_id      TEXT NOT NULL,
	type            TEXT NOT NULL CHECK (type IN ('call', 'text')),
	message_preview TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL
);

CREATE INDEX idx_interactions_contact ON interactions(contact_id, created_at DESC);
CREATE INDEX idx_interactions_created ON interactions(created_at DESC);

CREATE TRIGGER interactions_no_update BEFORE UPDATE ON interactions
BEGIN
	SELECT RAISE(ABORT, 'interactions are immutable');
END;

CREATE TRIGGER interactions_no_delete BEFORE DELETE ON interactions
BEGIN
	SELECT RAISE(ABORT, 'interactions are immutable');
END;
`,
	},
	{
		Version:     3,
		Description: "settings: single row",
		SQL: `
CREATE TABLE settings (
	id                  INTEGER PRIMARY KEY CHECK (id = 1),
	mode                TEXT NOT NULL CHECK (mode IN ('daily', 'weekly')),
	count_daily         INTEGER NOT NULL CHECK (count_daily > 0),
	count_weekly        INTEGER NOT NULL CHECK (count_weekly > 0),
	default_frequencies TEXT NOT NULL DEFAULT '[]',
	updated_at          INTEGER NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, time.Now().UnixMilli()); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
