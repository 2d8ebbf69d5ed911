// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open opens a database handle for the given dialect. For sqlite the WAL
// journal, a busy timeout, and foreign keys are enabled unless the URL
// already carries its own options.
func Open(dialect Dialect, url string) (*sql.DB, error) {
	switch dialect {
	case DialectSQLite:
		dsn := url
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)"
		}
		return sql.Open("sqlite", dsn)
	case DialectPostgres:
		return sql.Open("postgres", url)
	default:
		return nil, fmt.Errorf("unknown database dialect: %q", dialect)
	}
}
