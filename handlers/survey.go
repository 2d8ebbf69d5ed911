// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/skovacs/surveyd/cliparse"
	"github.com/skovacs/surveyd/middleware"
	"github.com/skovacs/surveyd/models"
	"github.com/skovacs/surveyd/session"
	"github.com/skovacs/surveyd/store"
	"github.com/skovacs/surveyd/vignettes"
)

// previewLen truncates vignette prompts in the selection listing.
const previewLen = 80

type SurveyHandler struct {
	store    *store.Store
	sessions *session.Manager
	cases    []vignettes.Case
	cfg      cliparse.Config
}

func NewSurveyHandler(st *store.Store, sessions *session.Manager, cases []vignettes.Case, cfg cliparse.Config) *SurveyHandler {
	return &SurveyHandler{store: st, sessions: sessions, cases: cases, cfg: cfg}
}

// StartSession handles POST /survey/sessions
// Assigns a condition and opens a new survey session. When the study is
// paused or full this is a terminal state for the caller: there is nothing
// to retry within the session.
func (h *SurveyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	condition, participantID, err := h.store.AssignCondition()
	if errors.Is(err, store.ErrStudyClosed) {
		middleware.ErrorResponse(w, http.StatusConflict, "Study is not currently accepting new participants")
		return
	}
	if err != nil {
		slog.Error("failed to assign condition", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	sess := h.sessions.Start(participantID, condition)

	slog.Info("participant assigned", "participant_id", participantID, "condition", condition)

	middleware.JSONResponse(w, http.StatusCreated, models.StartSessionResponse{
		SessionToken:  sess.Token,
		ParticipantID: participantID,
		Condition:     condition,
		MaxResponses:  sess.MaxResponses,
	})
}

// GiveConsent handles POST /survey/consent
func (h *SurveyHandler) GiveConsent(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}

	if err := h.sessions.GiveConsent(token); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"next": session.StateDemographics.String()})
}

// SubmitDemographics handles POST /survey/demographics
func (h *SurveyHandler) SubmitDemographics(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}

	var req models.DemographicsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Age < 10 || req.Age > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "age must be between 10 and 100")
		return
	}
	if strings.TrimSpace(req.Profession) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "profession is required")
		return
	}

	sess, err := h.sessions.Get(token)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if sess.State != session.StateDemographics {
		middleware.ErrorResponse(w, http.StatusConflict, "Demographics already collected or consent missing")
		return
	}

	if err := h.store.UpdateDemographics(sess.ParticipantID, req.Age, req.Profession); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
			return
		}
		slog.Error("failed to update demographics", "error", err, "participant_id", sess.ParticipantID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save demographics")
		return
	}

	if err := h.sessions.CompleteDemographics(token); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"next": session.StateSelecting.String()})
}

// ListVignettes handles GET /survey/vignettes
// Returns the vignettes still available to this session, previews only.
func (h *SurveyHandler) ListVignettes(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}

	available, err := h.sessions.AvailableCases(token, h.cases)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, vignettes.Summarize(available, previewLen))
}

// SelectVignette handles POST /survey/vignettes/select
// Locks in a case for rating and reveals its full prompt and AI response.
func (h *SurveyHandler) SelectVignette(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}

	var req models.SelectVignetteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, found := vignettes.Find(h.cases, req.CaseID)
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown vignette")
		return
	}

	if err := h.sessions.SelectCase(token, c.ID); err != nil {
		if errors.Is(err, session.ErrCaseUsed) {
			middleware.ErrorResponse(w, http.StatusConflict, "Vignette already used in this session")
			return
		}
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// SubmitResponse handles POST /survey/responses
// All three rating fields are mandatory; once recorded the response is
// immutable and the session moves on.
func (h *SurveyHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}

	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sess, err := h.sessions.Get(token)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if sess.State != session.StateRating {
		middleware.ErrorResponse(w, http.StatusConflict, "No vignette selected")
		return
	}

	if missing := session.MissingRatingFields(req); len(missing) > 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "missing or invalid fields: "+strings.Join(missing, ", "))
		return
	}

	input := models.ResponseInput{
		CaseID:         sess.CurrentCase,
		ResponseNumber: sess.Submitted + 1,
		Condition:      sess.Condition,
		AgreeRating:    req.AgreeRating,
		Trust:          *req.Trust,
		Comment:        req.Comment,
	}
	if err := h.store.RecordResponse(sess.ParticipantID, input); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
			return
		}
		slog.Error("failed to record response", "error", err, "participant_id", sess.ParticipantID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save response")
		return
	}

	num, completed, err := h.sessions.FinishRating(token)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	if completed {
		if err := h.store.MarkCompleted(sess.ParticipantID); err != nil {
			slog.Error("failed to mark participant completed", "error", err, "participant_id", sess.ParticipantID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to complete session")
			return
		}
		slog.Info("participant completed", "participant_id", sess.ParticipantID)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponseResponse{
		ResponseNumber: num,
		Remaining:      sess.MaxResponses - num,
		Completed:      completed,
	})
}

func sessionToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Session-Token header required")
		return "", false
	}
	return token, true
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownSession):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
	case errors.Is(err, session.ErrWrongState):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("session error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Session error")
	}
}
