// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Condition is an experimental arm a participant is permanently assigned to.
type Condition string

const (
	ConditionControl   Condition = "Control"
	ConditionTreatment Condition = "Treatment"
)

// Conditions returns the ordered set of experimental arms. The first entry
// absorbs the remainder when the capacity target is odd.
func Conditions() [2]Condition {
	return [2]Condition{ConditionControl, ConditionTreatment}
}

// Agreement rating labels (fixed 5-point scale)
const (
	AgreeStronglyDisagree = "1 Strongly Disagree"
	AgreeDisagree         = "2 Disagree"
	AgreeNeutral          = "3 Neutral"
	AgreeAgree            = "4 Agree"
	AgreeStronglyAgree    = "5 Strongly Agree"
)

// AgreeRatings returns the ordered label set for the agreement scale.
func AgreeRatings() []string {
	return []string{
		AgreeStronglyDisagree,
		AgreeDisagree,
		AgreeNeutral,
		AgreeAgree,
		AgreeStronglyAgree,
	}
}

// ValidAgreeRating reports whether label is one of the five fixed labels.
func ValidAgreeRating(label string) bool {
	for _, l := range AgreeRatings() {
		if l == label {
			return true
		}
	}
	return false
}

// Default study configuration values
const (
	DefaultTargetParticipants = 10
	DefaultStudyActive        = true
)

// ResetConfirmation is the literal phrase the admin must send to wipe the
// study. The store itself does not gate ResetAll.
const ResetConfirmation = "DELETE EVERYTHING"

// Request types

type DemographicsRequest struct {
	Age        int    `json:"age"`
	Profession string `json:"profession"`
}

type SelectVignetteRequest struct {
	CaseID string `json:"case_id"`
}

// Trust is a pointer so a missing field can be told apart from false.
type SubmitResponseRequest struct {
	AgreeRating string `json:"agree_rating"`
	Trust       *bool  `json:"trust"`
	Comment     string `json:"comment"`
}

type SetTargetRequest struct {
	TargetParticipants int `json:"target_participants"`
}

type SetActiveRequest struct {
	StudyActive *bool `json:"study_active"`
}

type ResetRequest struct {
	Confirm string `json:"confirm"`
}

// Response types

type StartSessionResponse struct {
	SessionToken  string    `json:"session_token"`
	ParticipantID int64     `json:"participant_id"`
	Condition     Condition `json:"condition"`
	MaxResponses  int       `json:"max_responses"`
}

type SubmitResponseResponse struct {
	ResponseNumber int  `json:"response_number"`
	Remaining      int  `json:"remaining"`
	Completed      bool `json:"completed"`
}

type ConfigUpdateResponse struct {
	TargetParticipants int  `json:"target_participants"`
	StudyActive        bool `json:"study_active"`
}

type ResetResponse struct {
	Message string `json:"message"`
}

// Domain types

type Participant struct {
	ID         int64     `json:"id"`
	Condition  Condition `json:"condition"`
	Age        *int      `json:"age,omitempty"`
	Profession *string   `json:"profession,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
	Completed  bool      `json:"completed"`
}

// Response is immutable once written. Condition is denormalized on purpose:
// analysis must not depend on later participant mutation.
type Response struct {
	ID             int64     `json:"id"`
	ParticipantID  int64     `json:"participant_id"`
	CaseID         string    `json:"case_id"`
	ResponseNumber int       `json:"response_number"`
	Condition      Condition `json:"condition"`
	AgreeRating    string    `json:"agree_rating"`
	Trust          bool      `json:"trust"`
	Comment        string    `json:"comment"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// ResponseInput carries the caller-supplied fields of a new response.
type ResponseInput struct {
	CaseID         string
	ResponseNumber int
	Condition      Condition
	AgreeRating    string
	Trust          bool
	Comment        string
}

// StudyStats is a single consistent snapshot of allocation state.
type StudyStats struct {
	TotalParticipants  int  `json:"total_participants"`
	ControlCount       int  `json:"control_count"`
	TreatmentCount     int  `json:"treatment_count"`
	ControlCompleted   int  `json:"control_completed"`
	TreatmentCompleted int  `json:"treatment_completed"`
	BalanceDifference  int  `json:"balance_difference"`
	TargetParticipants int  `json:"target_participants"`
	StudyActive        bool `json:"study_active"`
}

type Progress struct {
	Current         int     `json:"current"`
	Target          int     `json:"target"`
	Percentage      float64 `json:"percentage"`
	Remaining       int     `json:"remaining"`
	ControlNeeded   int     `json:"control_needed"`
	TreatmentNeeded int     `json:"treatment_needed"`
	IsComplete      bool    `json:"is_complete"`
	StudyActive     bool    `json:"study_active"`
}

// ProgressFrom derives progress toward target from a stats snapshot.
// A target of zero reports 0% rather than dividing by zero; remaining and
// per-condition needed counts never go negative.
func ProgressFrom(stats StudyStats, target int) Progress {
	p := Progress{
		Current:     stats.TotalParticipants,
		Target:      target,
		StudyActive: stats.StudyActive,
	}
	if target > 0 {
		p.Percentage = float64(stats.TotalParticipants) / float64(target) * 100
	}
	controlTarget := target/2 + target%2
	treatmentTarget := target / 2
	p.Remaining = max(0, target-stats.TotalParticipants)
	p.ControlNeeded = max(0, controlTarget-stats.ControlCount)
	p.TreatmentNeeded = max(0, treatmentTarget-stats.TreatmentCount)
	p.IsComplete = stats.TotalParticipants >= target
	return p
}

// ActivityEvent is one row of the admin recent-activity feed.
type ActivityEvent struct {
	Event     string    `json:"event"`
	Condition Condition `json:"condition"`
	At        time.Time `json:"at"`
	AtHuman   string    `json:"at_human,omitempty"`
}

type AdminStatsResponse struct {
	Stats          StudyStats      `json:"stats"`
	Progress       Progress        `json:"progress"`
	RecentActivity []ActivityEvent `json:"recent_activity"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
