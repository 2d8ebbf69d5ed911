// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skovacs/surveyd/models"
)

// ExportAll returns every participant and every response for reporting,
// ordered by id and by (participant, response number).
func (s *Store) ExportAll() ([]models.Participant, []models.Response, error) {
	participants, err := s.queryParticipants(`
		SELECT id, condition, age, profession, assigned_at, completed
		FROM participants
		ORDER BY id
	`)
	if err != nil {
		return nil, nil, err
	}

	responses, err := s.queryResponses(`
		SELECT id, participant_id, case_id, response_number, condition,
		       agree_rating, trust_rating, comment, submitted_at
		FROM responses
		ORDER BY participant_id, response_number
	`)
	if err != nil {
		return nil, nil, err
	}

	return participants, responses, nil
}

// ParticipantResponses returns one participant's responses in submission
// order. ErrNotFound if the participant does not exist.
func (s *Store) ParticipantResponses(participantID int64) ([]models.Response, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM participants WHERE id = $1)
	`, participantID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	return s.queryResponses(`
		SELECT id, participant_id, case_id, response_number, condition,
		       agree_rating, trust_rating, comment, submitted_at
		FROM responses
		WHERE participant_id = $1
		ORDER BY response_number
	`, participantID)
}

// RecentActivity lists the most recent participant joins within the window,
// newest first.
func (s *Store) RecentActivity(window time.Duration, limit int) ([]models.ActivityEvent, error) {
	rows, err := s.db.Query(`
		SELECT condition, assigned_at
		FROM participants
		WHERE assigned_at > $1
		ORDER BY assigned_at DESC
		LIMIT $2
	`, time.Now().Add(-window), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	events := []models.ActivityEvent{}
	for rows.Next() {
		var ev models.ActivityEvent
		if err := rows.Scan(&ev.Condition, &ev.At); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		ev.Event = "participant_joined"
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) queryParticipants(query string, args ...any) ([]models.Participant, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		var age sql.NullInt64
		var profession sql.NullString
		if err := rows.Scan(&p.ID, &p.Condition, &age, &profession, &p.AssignedAt, &p.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if age.Valid {
			a := int(age.Int64)
			p.Age = &a
		}
		if profession.Valid {
			prof := profession.String
			p.Profession = &prof
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Store) queryResponses(query string, args ...any) ([]models.Response, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.CaseID, &r.ResponseNumber,
			&r.Condition, &r.AgreeRating, &r.Trust, &r.Comment, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
