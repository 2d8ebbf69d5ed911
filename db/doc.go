// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Opening a Connection

Open selects the driver by dialect:

	conn, err := db.Open(db.DialectSQLite, "survey_data.db")
	conn, err := db.Open(db.DialectPostgres, "postgres://...")

For sqlite the WAL journal, a busy timeout, and foreign keys are enabled
unless the path already carries its own options.

# Schema Creation

CreateSchema initializes all required tables and seeds the study config:

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for tables and indexes and
ON CONFLICT DO NOTHING for the config seed.

# Tables

The schema includes:

  - participants: One row per assigned participant (condition, demographics,
    completion flag)
  - responses: Append-only vignette ratings, condition denormalized per row
  - study_config: Single typed row (id = 1) holding the capacity target and
    active flag

# SQL Portability

All query text in this module uses $N placeholders in strictly increasing
first-occurrence order and INSERT ... RETURNING id, both of which work
unchanged under lib/pq and modernc.org/sqlite. The DDL is the only
per-dialect text.

# Reset

DropAll removes every table. It is destructive and unguarded here; the
admin reset endpoint requires an explicit confirmation phrase before
calling it.
*/
package db
