// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skovacs/surveyd/db"
	"github.com/skovacs/surveyd/models"
)

var (
	// ErrStudyClosed is returned when assignment is attempted while the
	// capacity gate is false (study paused or target reached).
	ErrStudyClosed = errors.New("study is not accepting new participants")

	// ErrNotFound is returned for operations referencing a nonexistent
	// participant id.
	ErrNotFound = errors.New("participant not found")

	// ErrInvalidTarget is returned when the capacity target is not positive.
	ErrInvalidTarget = errors.New("target participants must be positive")
)

// Store owns participants, responses, and study configuration. The mutex
// serializes every read-decide-write sequence against other writers; it is
// held only for the duration of the database work, never across a
// user-facing wait.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
	mu      sync.Mutex
}

// New wraps an open database connection. CreateSchema must have run.
func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect}
}

// CanAccept reports whether the study is active and below its capacity
// target. Computed from a single statement so the active flag, target, and
// count come from one consistent snapshot.
func (s *Store) CanAccept() (bool, error) {
	var active bool
	var target, current int
	err := s.db.QueryRow(`
		SELECT
			(SELECT study_active FROM study_config WHERE id = 1),
			(SELECT target_participants FROM study_config WHERE id = 1),
			(SELECT COUNT(*) FROM participants)
	`).Scan(&active, &target, &current)
	if err != nil {
		return false, fmt.Errorf("failed to read capacity snapshot: %w", err)
	}
	return active && current < target, nil
}

// AssignCondition assigns the next participant to an experimental arm and
// creates their record. The capacity gate, the per-condition counts, the
// decision, and the insert all happen inside one transaction under the
// store lock, so concurrent sign-ups can never both take the last slot or
// skew the balance.
//
// The decision rule, in priority order:
//  1. Control if it is below its sub-target and Treatment has met its own
//     sub-target or Control is not ahead.
//  2. Treatment if it is below its sub-target.
//  3. Otherwise alternate on total-count parity (race or shrunk-target
//     fallback).
//
// Control's sub-target is ceil(target/2): it absorbs the remainder on odd
// targets and therefore fills first under sequential assignment.
func (s *Store) AssignCondition() (models.Condition, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", 0, fmt.Errorf("failed to begin assignment: %w", err)
	}
	defer tx.Rollback()

	var active bool
	var target, control, treatment int
	err = tx.QueryRow(`
		SELECT
			(SELECT study_active FROM study_config WHERE id = 1),
			(SELECT target_participants FROM study_config WHERE id = 1),
			(SELECT COUNT(*) FROM participants WHERE condition = $1),
			(SELECT COUNT(*) FROM participants WHERE condition = $2)
	`, models.ConditionControl, models.ConditionTreatment).Scan(&active, &target, &control, &treatment)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read assignment snapshot: %w", err)
	}

	total := control + treatment
	if !active || total >= target {
		return "", 0, ErrStudyClosed
	}

	condition := decideCondition(target, control, treatment)

	var participantID int64
	err = tx.QueryRow(`
		INSERT INTO participants (condition, assigned_at, completed)
		VALUES ($1, $2, FALSE)
		RETURNING id
	`, condition, time.Now()).Scan(&participantID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to insert participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("failed to commit assignment: %w", err)
	}

	return condition, participantID, nil
}

// decideCondition applies the ordered decision rule. It is deliberately not
// "whichever is smaller": Control must reach its (possibly larger) sub-target
// first so sequential assignment traces stay reproducible.
func decideCondition(target, control, treatment int) models.Condition {
	controlTarget := target/2 + target%2
	treatmentTarget := target / 2

	switch {
	case control < controlTarget && (treatment >= treatmentTarget || control <= treatment):
		return models.ConditionControl
	case treatment < treatmentTarget:
		return models.ConditionTreatment
	default:
		// Both sub-targets met (a race let a slot through, or the target
		// shrank below the current total). Alternate by parity.
		conditions := models.Conditions()
		return conditions[(control+treatment)%2]
	}
}

// UpdateDemographics attaches age and profession to a participant. Called
// once after assignment, before any responses.
func (s *Store) UpdateDemographics(participantID int64, age int, profession string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE participants SET age = $1, profession = $2 WHERE id = $3
	`, age, profession, participantID)
	if err != nil {
		return fmt.Errorf("failed to update demographics: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check demographics update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordResponse appends an immutable response row for a participant. The
// store performs no rating-domain validation; mandatory-field enforcement is
// the session controller's job. If input.Condition is empty the participant's
// current condition is denormalized onto the row.
func (s *Store) RecordResponse(participantID int64, input models.ResponseInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var condition models.Condition
	err := s.db.QueryRow(`
		SELECT condition FROM participants WHERE id = $1
	`, participantID).Scan(&condition)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up participant: %w", err)
	}
	if input.Condition != "" {
		condition = input.Condition
	}

	_, err = s.db.Exec(`
		INSERT INTO responses (
			participant_id, case_id, response_number, condition,
			agree_rating, trust_rating, comment, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, participantID, input.CaseID, input.ResponseNumber, condition,
		input.AgreeRating, input.Trust, input.Comment, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}
	return nil
}

// MarkCompleted flips the participant's completion flag. Idempotent: calling
// it twice leaves completed=true with no error.
func (s *Store) MarkCompleted(participantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE participants SET completed = TRUE WHERE id = $1
	`, participantID)
	if err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check completion update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats returns a single consistent snapshot of allocation state.
func (s *Store) GetStats() (models.StudyStats, error) {
	var stats models.StudyStats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN condition = $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN condition = $2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN condition = $1 AND completed THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN condition = $2 AND completed THEN 1 ELSE 0 END), 0),
			(SELECT target_participants FROM study_config WHERE id = 1),
			(SELECT study_active FROM study_config WHERE id = 1)
		FROM participants
	`, models.ConditionControl, models.ConditionTreatment).Scan(
		&stats.TotalParticipants,
		&stats.ControlCount,
		&stats.TreatmentCount,
		&stats.ControlCompleted,
		&stats.TreatmentCompleted,
		&stats.TargetParticipants,
		&stats.StudyActive,
	)
	if err != nil {
		return models.StudyStats{}, fmt.Errorf("failed to read stats snapshot: %w", err)
	}

	stats.BalanceDifference = stats.ControlCount - stats.TreatmentCount
	if stats.BalanceDifference < 0 {
		stats.BalanceDifference = -stats.BalanceDifference
	}
	return stats, nil
}

// GetProgress derives progress toward the configured capacity target.
func (s *Store) GetProgress() (models.Progress, error) {
	stats, err := s.GetStats()
	if err != nil {
		return models.Progress{}, err
	}
	return models.ProgressFrom(stats, stats.TargetParticipants), nil
}

// SetTargetParticipants overwrites the capacity target. Takes effect on the
// next assignment, never retroactively; shrinking below the current total
// does not reject existing participants.
func (s *Store) SetTargetParticipants(target int) error {
	if target <= 0 {
		return ErrInvalidTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO study_config (id, target_participants, study_active)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET target_participants = excluded.target_participants
	`, target, models.DefaultStudyActive)
	if err != nil {
		return fmt.Errorf("failed to set target participants: %w", err)
	}
	return nil
}

// SetStudyActive toggles whether new participants are accepted. Last writer
// wins; no effect on already-assigned participants.
func (s *Store) SetStudyActive(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO study_config (id, target_participants, study_active)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET study_active = excluded.study_active
	`, models.DefaultTargetParticipants, active)
	if err != nil {
		return fmt.Errorf("failed to set study active: %w", err)
	}
	return nil
}

// ResetAll wipes all participants, responses, and configuration, then
// re-initializes the schema with default config. Irreversible and unguarded
// at this level: callers must require explicit confirmation first.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := db.DropAll(s.db); err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	if err := db.CreateSchema(s.db, s.dialect); err != nil {
		return fmt.Errorf("failed to re-initialize schema: %w", err)
	}
	return nil
}
