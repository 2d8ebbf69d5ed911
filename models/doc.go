// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - DemographicsRequest: age, profession
  - SelectVignetteRequest: case_id
  - SubmitResponseRequest: agree_rating, trust, comment
  - SetTargetRequest: target_participants
  - SetActiveRequest: study_active
  - ResetRequest: confirm

# Response Types

Types for JSON responses:

  - StartSessionResponse: session_token, participant_id, condition, max_responses
  - SubmitResponseResponse: response_number, remaining, completed
  - ConfigUpdateResponse: target_participants, study_active
  - AdminStatsResponse: stats, progress, recent_activity
  - ResetResponse: message
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Participant: assignment record with demographics and completion flag
  - Response: immutable rating row, condition denormalized
  - StudyStats: single consistent snapshot of allocation state
  - Progress: derived progress toward the capacity target
  - ActivityEvent: one row of the admin recent-activity feed

# Constants

Experimental arms:

	ConditionControl   = "Control"
	ConditionTreatment = "Treatment"

Agreement scale (fixed 5-point labels):

	"1 Strongly Disagree" ... "5 Strongly Agree"

Defaults:

	DefaultTargetParticipants = 10
	DefaultStudyActive        = true

The admin reset confirmation phrase:

	ResetConfirmation = "DELETE EVERYTHING"
*/
package models
