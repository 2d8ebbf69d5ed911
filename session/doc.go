// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session tracks each participant's position in the survey wizard.

# States

A session moves strictly forward through:

	consent → demographics → selecting → rating → ... → completed

The selecting/rating pair repeats once per response until the configured
per-participant quota is reached. There is no backward transition and no
edit path for a submitted rating.

# Manager

The Manager holds all live sessions in memory, keyed by an opaque UUID
token. Sessions are ephemeral on purpose: the store keeps the durable
participant record, so a server restart loses only wizard position, never
data. Partial sessions are simply abandoned; their participant rows remain
with completed = false.

	sessions := session.NewManager(3)
	sess := sessions.Start(participantID, condition)

All transitions happen under the manager's lock, and Get returns a copy,
so handlers never see a session mid-mutation.

# Case Reuse

SelectCase refuses a vignette already used in the same session with
ErrCaseUsed. AvailableCases filters the listing accordingly.
*/
package session
