// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skovacs/surveyd/db"
	"github.com/skovacs/surveyd/models"
	"github.com/skovacs/surveyd/session"
	"github.com/skovacs/surveyd/store"
	"github.com/skovacs/surveyd/testutil"
	"github.com/skovacs/surveyd/vignettes"
)

var testCases = []vignettes.Case{
	{ID: "case_a", Prompt: "Prompt A", LLMResponse: "Response A"},
	{ID: "case_b", Prompt: "Prompt B", LLMResponse: "Response B"},
	{ID: "case_c", Prompt: "Prompt C", LLMResponse: "Response C"},
	{ID: "case_d", Prompt: "Prompt D", LLMResponse: "Response D"},
}

func newSurveyTestEnv(t *testing.T) (*SurveyHandler, *store.Store, *session.Manager) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	st := store.New(conn, db.DialectSQLite)
	cfg := testutil.GetTestConfig()
	sessions := session.NewManager(cfg.MaxResponses)
	return NewSurveyHandler(st, sessions, testCases, cfg), st, sessions
}

// startTestSession runs StartSession through the handler and returns the
// response body.
func startTestSession(t *testing.T, h *SurveyHandler) models.StartSessionResponse {
	t.Helper()

	w := httptest.NewRecorder()
	h.StartSession(w, testutil.MakeRequest("POST", "/survey/sessions", nil, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.StartSessionResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

// advanceToSelecting moves a fresh session past consent and demographics.
func advanceToSelecting(t *testing.T, h *SurveyHandler, token string) {
	t.Helper()

	headers := map[string]string{"X-Session-Token": token}

	w := httptest.NewRecorder()
	h.GiveConsent(w, testutil.MakeRequest("POST", "/survey/consent", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	h.SubmitDemographics(w, testutil.MakeRequest("POST", "/survey/demographics",
		models.DemographicsRequest{Age: 35, Profession: "Physician"}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestStartSession(t *testing.T) {
	h, _, _ := newSurveyTestEnv(t)

	resp := startTestSession(t, h)
	if resp.SessionToken == "" {
		t.Error("empty session token")
	}
	if resp.Condition != models.ConditionControl {
		t.Errorf("first condition = %s, want Control", resp.Condition)
	}
	if resp.MaxResponses != 3 {
		t.Errorf("max responses = %d, want 3", resp.MaxResponses)
	}

	resp2 := startTestSession(t, h)
	if resp2.Condition != models.ConditionTreatment {
		t.Errorf("second condition = %s, want Treatment", resp2.Condition)
	}
	if resp2.ParticipantID == resp.ParticipantID {
		t.Error("duplicate participant id across sessions")
	}
}

func TestStartSessionStudyClosed(t *testing.T) {
	h, st, _ := newSurveyTestEnv(t)

	if err := st.SetStudyActive(false); err != nil {
		t.Fatalf("SetStudyActive() error = %v", err)
	}

	w := httptest.NewRecorder()
	h.StartSession(w, testutil.MakeRequest("POST", "/survey/sessions", nil, nil))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Nothing persisted
	stats, err := st.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalParticipants != 0 {
		t.Errorf("participants after rejection = %d, want 0", stats.TotalParticipants)
	}
}

func TestSessionTokenRequired(t *testing.T) {
	h, _, _ := newSurveyTestEnv(t)

	endpoints := []func(http.ResponseWriter, *http.Request){
		h.GiveConsent, h.SubmitDemographics, h.ListVignettes, h.SelectVignette, h.SubmitResponse,
	}

	for i, endpoint := range endpoints {
		// No header at all
		w := httptest.NewRecorder()
		endpoint(w, testutil.MakeRequest("POST", "/survey/x", nil, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("endpoint %d without token: status = %d, want 401", i, w.Code)
		}
	}

	// Unknown token
	w := httptest.NewRecorder()
	h.GiveConsent(w, testutil.MakeRequest("POST", "/survey/consent", nil,
		map[string]string{"X-Session-Token": "bogus"}))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestSubmitDemographicsValidation(t *testing.T) {
	h, _, _ := newSurveyTestEnv(t)
	resp := startTestSession(t, h)
	headers := map[string]string{"X-Session-Token": resp.SessionToken}

	w := httptest.NewRecorder()
	h.GiveConsent(w, testutil.MakeRequest("POST", "/survey/consent", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	tests := []struct {
		name string
		req  models.DemographicsRequest
	}{
		{"age too low", models.DemographicsRequest{Age: 9, Profession: "Nurse"}},
		{"age too high", models.DemographicsRequest{Age: 101, Profession: "Nurse"}},
		{"blank profession", models.DemographicsRequest{Age: 30, Profession: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.SubmitDemographics(w, testutil.MakeRequest("POST", "/survey/demographics", tt.req, headers))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	// Valid submission succeeds once
	w = httptest.NewRecorder()
	h.SubmitDemographics(w, testutil.MakeRequest("POST", "/survey/demographics",
		models.DemographicsRequest{Age: 30, Profession: "Nurse"}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Second submission is out of order
	w = httptest.NewRecorder()
	h.SubmitDemographics(w, testutil.MakeRequest("POST", "/survey/demographics",
		models.DemographicsRequest{Age: 31, Profession: "Nurse"}, headers))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSubmitDemographicsBeforeConsent(t *testing.T) {
	h, _, _ := newSurveyTestEnv(t)
	resp := startTestSession(t, h)

	w := httptest.NewRecorder()
	h.SubmitDemographics(w, testutil.MakeRequest("POST", "/survey/demographics",
		models.DemographicsRequest{Age: 30, Profession: "Nurse"},
		map[string]string{"X-Session-Token": resp.SessionToken}))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestListVignettes(t *testing.T) {
	h, _, _ := newSurveyTestEnv(t)
	resp := startTestSession(t, h)
	advanceToSelecting(t, h, resp.SessionToken)
	headers := map[string]string{"X-Session-Token": resp.SessionToken}

	w := httptest.NewRecorder()
	h.ListVignettes(w, testutil.MakeRequest("GET", "/survey/vignettes", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var summaries []vignettes.Summary
	testutil.AssertJSON(t, w, &summaries)
	if len(summaries) != len(testCases) {
		t.Errorf("summary count = %d, want %d", len(summaries), len(testCases))
	}
	for _, s := range summaries {
		if s.Preview == "" {
			t.Errorf("summary %s has empty preview", s.ID)
		}
	}
}

func TestSelectVignette(t *testing.T) {
	h, _, _ := newSurveyTestEnv(t)
	resp := startTestSession(t, h)
	advanceToSelecting(t, h, resp.SessionToken)
	headers := map[string]string{"X-Session-Token": resp.SessionToken}

	// Unknown case
	w := httptest.NewRecorder()
	h.SelectVignette(w, testutil.MakeRequest("POST", "/survey/vignettes/select",
		models.SelectVignetteRequest{CaseID: "case_z"}, headers))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Valid selection reveals the full case
	w = httptest.NewRecorder()
	h.SelectVignette(w, testutil.MakeRequest("POST", "/survey/vignettes/select",
		models.SelectVignetteRequest{CaseID: "case_b"}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var c vignettes.Case
	testutil.AssertJSON(t, w, &c)
	if c.ID != "case_b" || c.LLMResponse != "Response B" {
		t.Errorf("selected case = %+v", c)
	}

	// Selecting again mid-rating is out of order
	w = httptest.NewRecorder()
	h.SelectVignette(w, testutil.MakeRequest("POST", "/survey/vignettes/select",
		models.SelectVignetteRequest{CaseID: "case_c"}, headers))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSubmitResponse(t *testing.T) {
	h, st, _ := newSurveyTestEnv(t)
	resp := startTestSession(t, h)
	advanceToSelecting(t, h, resp.SessionToken)
	headers := map[string]string{"X-Session-Token": resp.SessionToken}
	trust := true

	// No vignette selected yet
	w := httptest.NewRecorder()
	h.SubmitResponse(w, testutil.MakeRequest("POST", "/survey/responses",
		models.SubmitResponseRequest{AgreeRating: models.AgreeAgree, Trust: &trust, Comment: "ok"}, headers))
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = httptest.NewRecorder()
	h.SelectVignette(w, testutil.MakeRequest("POST", "/survey/vignettes/select",
		models.SelectVignetteRequest{CaseID: "case_a"}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Missing fields
	w = httptest.NewRecorder()
	h.SubmitResponse(w, testutil.MakeRequest("POST", "/survey/responses",
		models.SubmitResponseRequest{AgreeRating: "bogus"}, headers))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Valid submission
	w = httptest.NewRecorder()
	h.SubmitResponse(w, testutil.MakeRequest("POST", "/survey/responses",
		models.SubmitResponseRequest{AgreeRating: models.AgreeAgree, Trust: &trust, Comment: "plausible"}, headers))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var submitted models.SubmitResponseResponse
	testutil.AssertJSON(t, w, &submitted)
	if submitted.ResponseNumber != 1 || submitted.Completed {
		t.Errorf("response = %+v, want number 1, not completed", submitted)
	}
	if submitted.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", submitted.Remaining)
	}

	// Persisted with the participant's condition
	responses, err := st.ParticipantResponses(resp.ParticipantID)
	if err != nil {
		t.Fatalf("ParticipantResponses() error = %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("stored responses = %d, want 1", len(responses))
	}
	if responses[0].Condition != resp.Condition {
		t.Errorf("stored condition = %s, want %s", responses[0].Condition, resp.Condition)
	}
}

func TestSubmitResponseCompletesSession(t *testing.T) {
	h, st, _ := newSurveyTestEnv(t)
	resp := startTestSession(t, h)
	advanceToSelecting(t, h, resp.SessionToken)
	headers := map[string]string{"X-Session-Token": resp.SessionToken}
	trust := false

	caseIDs := []string{"case_a", "case_b", "case_c"}
	for i, caseID := range caseIDs {
		w := httptest.NewRecorder()
		h.SelectVignette(w, testutil.MakeRequest("POST", "/survey/vignettes/select",
			models.SelectVignetteRequest{CaseID: caseID}, headers))
		testutil.AssertStatus(t, w, http.StatusOK)

		w = httptest.NewRecorder()
		h.SubmitResponse(w, testutil.MakeRequest("POST", "/survey/responses",
			models.SubmitResponseRequest{AgreeRating: models.AgreeDisagree, Trust: &trust, Comment: "hm"}, headers))
		testutil.AssertStatus(t, w, http.StatusCreated)

		var submitted models.SubmitResponseResponse
		testutil.AssertJSON(t, w, &submitted)
		wantCompleted := i == len(caseIDs)-1
		if submitted.Completed != wantCompleted {
			t.Errorf("response #%d completed = %v, want %v", i+1, submitted.Completed, wantCompleted)
		}
	}

	// Participant marked completed in the store
	participants, _, err := st.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if !participants[0].Completed {
		t.Error("participant not marked completed after final response")
	}

	// Wizard is over: no further selection
	w := httptest.NewRecorder()
	h.SelectVignette(w, testutil.MakeRequest("POST", "/survey/vignettes/select",
		models.SelectVignetteRequest{CaseID: "case_d"}, headers))
	testutil.AssertStatus(t, w, http.StatusConflict)
}
