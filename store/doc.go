// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store owns participants, responses, and study configuration.

# Condition Assignment

AssignCondition is the heart of the module. It gates on capacity, counts
both arms, decides the condition, and inserts the participant inside one
transaction under the store mutex:

	condition, participantID, err := st.AssignCondition()

The decision rule, in priority order:

 1. Control if it is below its sub-target and Treatment has met its own
    sub-target or Control is not ahead.
 2. Treatment if it is below its sub-target.
 3. Otherwise alternate on total-count parity.

Control's sub-target is ceil(target/2), so on odd targets Control absorbs
the extra slot. Sequential assignment from an empty study always produces
Control, Treatment, Control, Treatment, ... and at every point
|control − treatment| ≤ 1.

# Capacity Gate

Assignment fails with ErrStudyClosed when the study is paused or the
target is reached. Both the target and the active flag are runtime-mutable:

	err := st.SetTargetParticipants(40)
	err := st.SetStudyActive(false)

Changes take effect on the next assignment and are never retroactive;
shrinking the target below the current total does not reject anyone.

# Snapshots

CanAccept, GetStats, and GetProgress each read their state in a single SQL
statement, so the counts, target, and active flag always come from one
consistent snapshot.

# Responses

RecordResponse appends an immutable row with the participant's condition
denormalized onto it. There is no update or delete path for responses
short of ResetAll.

# Reset

ResetAll drops and recreates the schema, restoring default configuration.
It performs no confirmation of its own.
*/
package store
