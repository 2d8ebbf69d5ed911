// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the surveyd API server.

Surveyd administers a two-arm study of trust in AI-generated medical
advice. Participants are assigned to a Control or Treatment condition by a
balanced allocator, walk through a consent → demographics → rate-vignettes
wizard, and their ratings are collected for export.

# Starting the Server

The server runs on sqlite by default and needs only the admin salt:

	ADMIN_KEY_SALT=secret go run main.go

Or with flags and PostgreSQL:

	go run main.go -p 3410 -t postgres -d "postgres://..." -admin-salt secret

A .env file in the working directory is loaded if present; real environment
variables take precedence.

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3410)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string or sqlite file path
  - VIGNETTES_FILE (-vignettes): Case set JSON (default: cases.json)
  - RESPONSES_PER_PARTICIPANT (-responses): Wizard length (default: 3)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - store: Condition allocator, participants, responses, study config
  - session: In-memory wizard state machine per participant
  - vignettes: Case set loading and listing
  - handlers: HTTP request handlers (survey flow, admin surface)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: Admin key generation and validation

# Condition Assignment

Every sign-up passes through the store's allocator, which holds the
balance invariant |control − treatment| ≤ 1 at all times, including under
concurrent sign-ups. The capacity target and active flag are mutable at
runtime via the admin surface.
*/
package main
