// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3410)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: Connection string, or sqlite file path (default: survey_data.db)
  - VignettesFile: Case set JSON path (default: cases.json)
  - MaxResponses: Vignettes rated per participant (default: 3)
  - AdminKeySalt: Secret for admin key HMAC (required)

# CLI Flags

	-p          Server port
	-t          Database type
	-d          Database URL or sqlite file path
	-vignettes  Vignettes JSON file
	-responses  Responses per participant
	-admin-salt Admin key salt

# Environment Variables

Flags fall back to environment variables:

	PORT                      → -p
	DATABASE_TYPE             → -t
	DATABASE_URL              → -d
	VIGNETTES_FILE            → -vignettes
	RESPONSES_PER_PARTICIPANT → -responses
	ADMIN_KEY_SALT            → -admin-salt

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - ADMIN_KEY_SALT must be provided
  - DATABASE_URL must be provided when the type is postgres
  - RESPONSES_PER_PARTICIPANT must be at least 1
*/
package cliparse
