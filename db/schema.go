// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	"github.com/skovacs/surveyd/models"
)

// Dialect selects the DDL variant for the backing database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// CreateSchema creates all tables and indexes needed for the application and
// seeds the single study_config row with default values.
// Safe to call multiple times - uses IF NOT EXISTS and ON CONFLICT DO NOTHING.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	var ddl string
	switch dialect {
	case DialectSQLite:
		ddl = schemaSQLite
	case DialectPostgres:
		ddl = schemaPostgres
	default:
		return fmt.Errorf("unknown database dialect: %q", dialect)
	}

	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Seed default config. A concurrent seed or an existing row is fine.
	_, err := db.Exec(`
		INSERT INTO study_config (id, target_participants, study_active)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, models.DefaultTargetParticipants, models.DefaultStudyActive)
	if err != nil {
		return fmt.Errorf("failed to seed study config: %w", err)
	}

	return nil
}

const schemaSQLite = `
-- Participants
CREATE TABLE IF NOT EXISTS participants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    condition TEXT NOT NULL,
    age INTEGER,
    profession TEXT,
    assigned_at TIMESTAMP NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_participants_condition ON participants(condition);
CREATE INDEX IF NOT EXISTS idx_participants_completed ON participants(completed);
CREATE INDEX IF NOT EXISTS idx_participants_assigned_at ON participants(assigned_at);

-- Responses (append-only; there is deliberately no update path)
CREATE TABLE IF NOT EXISTS responses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    participant_id INTEGER NOT NULL REFERENCES participants(id),
    case_id TEXT NOT NULL,
    response_number INTEGER NOT NULL,
    condition TEXT NOT NULL,
    agree_rating TEXT NOT NULL,
    trust_rating BOOLEAN NOT NULL,
    comment TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_participant_id ON responses(participant_id);
CREATE INDEX IF NOT EXISTS idx_responses_condition ON responses(condition);
CREATE INDEX IF NOT EXISTS idx_responses_submitted_at ON responses(submitted_at);

-- Study configuration (single typed row, id is always 1)
CREATE TABLE IF NOT EXISTS study_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    target_participants INTEGER NOT NULL,
    study_active BOOLEAN NOT NULL
);
`

const schemaPostgres = `
-- Participants
CREATE TABLE IF NOT EXISTS participants (
    id BIGSERIAL PRIMARY KEY,
    condition TEXT NOT NULL,
    age INTEGER,
    profession TEXT,
    assigned_at TIMESTAMP NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_participants_condition ON participants(condition);
CREATE INDEX IF NOT EXISTS idx_participants_completed ON participants(completed);
CREATE INDEX IF NOT EXISTS idx_participants_assigned_at ON participants(assigned_at);

-- Responses (append-only; there is deliberately no update path)
CREATE TABLE IF NOT EXISTS responses (
    id BIGSERIAL PRIMARY KEY,
    participant_id BIGINT NOT NULL REFERENCES participants(id),
    case_id TEXT NOT NULL,
    response_number INTEGER NOT NULL,
    condition TEXT NOT NULL,
    agree_rating TEXT NOT NULL,
    trust_rating BOOLEAN NOT NULL,
    comment TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_participant_id ON responses(participant_id);
CREATE INDEX IF NOT EXISTS idx_responses_condition ON responses(condition);
CREATE INDEX IF NOT EXISTS idx_responses_submitted_at ON responses(submitted_at);

-- Study configuration (single typed row, id is always 1)
CREATE TABLE IF NOT EXISTS study_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    target_participants INTEGER NOT NULL,
    study_active BOOLEAN NOT NULL
);
`

// DropAll removes every table. Used by the store's reset path; destructive
// and unguarded here, callers are responsible for confirmation.
func DropAll(db *sql.DB) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS responses`,
		`DROP TABLE IF EXISTS participants`,
		`DROP TABLE IF EXISTS study_config`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
