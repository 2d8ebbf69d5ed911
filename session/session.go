// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/skovacs/surveyd/models"
	"github.com/skovacs/surveyd/vignettes"
)

var (
	ErrUnknownSession = errors.New("unknown session token")
	ErrWrongState     = errors.New("action not allowed in current session state")
	ErrCaseUsed       = errors.New("vignette already used in this session")
)

// State is a participant's position in the survey wizard. Transitions are
// strictly linear; the selecting/rating pair repeats once per response.
type State int

const (
	StateConsent State = iota
	StateDemographics
	StateSelecting
	StateRating
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateConsent:
		return "consent"
	case StateDemographics:
		return "demographics"
	case StateSelecting:
		return "selecting"
	case StateRating:
		return "rating"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one participant's in-flight survey run. It owns no persisted
// state: the store holds the participant record, the session only tracks
// wizard position. Copies handed out by Get are read-only snapshots.
type Session struct {
	Token         string
	ParticipantID int64
	Condition     models.Condition
	State         State
	CurrentCase   string
	Submitted     int
	MaxResponses  int

	used map[string]bool
}

// Manager holds all live sessions. Transitions happen under its lock.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	maxResponses int
}

func NewManager(maxResponses int) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		maxResponses: maxResponses,
	}
}

// Start registers a new session for a freshly assigned participant and
// returns its snapshot. The token is the participant's only credential.
func (m *Manager) Start(participantID int64, condition models.Condition) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		Token:         uuid.NewString(),
		ParticipantID: participantID,
		Condition:     condition,
		State:         StateConsent,
		MaxResponses:  m.maxResponses,
		used:          make(map[string]bool),
	}
	m.sessions[s.Token] = s
	return *s
}

// Get returns a snapshot of the session for the token.
func (m *Manager) Get(token string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrUnknownSession
	}
	return *s, nil
}

// GiveConsent records consent and moves to demographics collection.
func (m *Manager) GiveConsent(token string) error {
	return m.transition(token, StateConsent, func(s *Session) {
		s.State = StateDemographics
	})
}

// CompleteDemographics moves to vignette selection. The caller persists the
// demographics to the store before advancing.
func (m *Manager) CompleteDemographics(token string) error {
	return m.transition(token, StateDemographics, func(s *Session) {
		s.State = StateSelecting
	})
}

// SelectCase locks in a vignette for the next rating. Each case may be
// chosen at most once per session.
func (m *Manager) SelectCase(token, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return ErrUnknownSession
	}
	if s.State != StateSelecting {
		return fmt.Errorf("%w: in %s", ErrWrongState, s.State)
	}
	if s.used[caseID] {
		return ErrCaseUsed
	}

	s.used[caseID] = true
	s.CurrentCase = caseID
	s.State = StateRating
	return nil
}

// FinishRating advances past a submitted rating. No edit path exists: once
// called, the previous response is out of reach. Returns the number of the
// response just recorded and whether the session is now complete.
func (m *Manager) FinishRating(token string) (responseNumber int, completed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return 0, false, ErrUnknownSession
	}
	if s.State != StateRating {
		return 0, false, fmt.Errorf("%w: in %s", ErrWrongState, s.State)
	}

	s.Submitted++
	s.CurrentCase = ""
	if s.Submitted >= s.MaxResponses {
		s.State = StateCompleted
	} else {
		s.State = StateSelecting
	}
	return s.Submitted, s.State == StateCompleted, nil
}

// AvailableCases filters the case set down to those not yet used by this
// session.
func (m *Manager) AvailableCases(token string, cases []vignettes.Case) ([]vignettes.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrUnknownSession
	}

	available := make([]vignettes.Case, 0, len(cases))
	for _, c := range cases {
		if !s.used[c.ID] {
			available = append(available, c)
		}
	}
	return available, nil
}

func (m *Manager) transition(token string, from State, apply func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return ErrUnknownSession
	}
	if s.State != from {
		return fmt.Errorf("%w: in %s", ErrWrongState, s.State)
	}
	apply(s)
	return nil
}

// MissingRatingFields returns the names of mandatory rating fields that are
// absent or out of domain. All three must pass before a response may be
// recorded.
func MissingRatingFields(req models.SubmitResponseRequest) []string {
	var missing []string
	if !models.ValidAgreeRating(req.AgreeRating) {
		missing = append(missing, "agree_rating")
	}
	if req.Trust == nil {
		missing = append(missing, "trust")
	}
	if strings.TrimSpace(req.Comment) == "" {
		missing = append(missing, "comment")
	}
	return missing
}
