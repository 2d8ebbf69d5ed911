// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/skovacs/surveyd/auth"
	"github.com/skovacs/surveyd/db"
	"github.com/skovacs/surveyd/models"
	"github.com/skovacs/surveyd/store"
	"github.com/skovacs/surveyd/testutil"
)

func newAdminTestEnv(t *testing.T) (*AdminHandler, *store.Store, map[string]string) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	st := store.New(conn, db.DialectSQLite)
	cfg := testutil.GetTestConfig()
	headers := map[string]string{"X-Admin-Key": auth.GenerateAdminKey(cfg.AdminKeySalt)}
	return NewAdminHandler(st, cfg), st, headers
}

func TestAdminKeyRequired(t *testing.T) {
	h, _, _ := newAdminTestEnv(t)

	endpoints := []func(http.ResponseWriter, *http.Request){
		h.GetStats, h.GetProgress, h.SetTarget, h.SetActive,
		h.ExportParticipants, h.ExportResponses, h.GetParticipantResponses, h.Reset,
	}

	for i, endpoint := range endpoints {
		// Missing key
		w := httptest.NewRecorder()
		endpoint(w, testutil.MakeRequest("GET", "/admin/x", nil, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("endpoint %d without key: status = %d, want 401", i, w.Code)
		}

		// Wrong key
		w = httptest.NewRecorder()
		endpoint(w, testutil.MakeRequest("GET", "/admin/x", nil,
			map[string]string{"X-Admin-Key": "wrong"}))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("endpoint %d with bad key: status = %d, want 401", i, w.Code)
		}
	}
}

func TestGetStats(t *testing.T) {
	h, st, headers := newAdminTestEnv(t)

	for i := 0; i < 3; i++ {
		if _, _, err := st.AssignCondition(); err != nil {
			t.Fatalf("AssignCondition() error = %v", err)
		}
	}

	w := httptest.NewRecorder()
	h.GetStats(w, testutil.MakeRequest("GET", "/admin/stats", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AdminStatsResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Stats.TotalParticipants != 3 {
		t.Errorf("total = %d, want 3", resp.Stats.TotalParticipants)
	}
	if resp.Progress.Current != 3 || resp.Progress.Target != models.DefaultTargetParticipants {
		t.Errorf("progress = %d/%d", resp.Progress.Current, resp.Progress.Target)
	}
	if len(resp.RecentActivity) != 3 {
		t.Errorf("activity events = %d, want 3", len(resp.RecentActivity))
	}
	for _, ev := range resp.RecentActivity {
		if ev.AtHuman == "" {
			t.Error("activity event missing humanized timestamp")
		}
	}
}

func TestSetTarget(t *testing.T) {
	h, st, headers := newAdminTestEnv(t)

	w := httptest.NewRecorder()
	h.SetTarget(w, testutil.MakeRequest("PUT", "/admin/config/target",
		models.SetTargetRequest{TargetParticipants: 40}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ConfigUpdateResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.TargetParticipants != 40 {
		t.Errorf("target = %d, want 40", resp.TargetParticipants)
	}

	stats, err := st.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TargetParticipants != 40 {
		t.Errorf("persisted target = %d, want 40", stats.TargetParticipants)
	}

	// Non-positive target rejected
	w = httptest.NewRecorder()
	h.SetTarget(w, testutil.MakeRequest("PUT", "/admin/config/target",
		models.SetTargetRequest{TargetParticipants: 0}, headers))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestSetActive(t *testing.T) {
	h, st, headers := newAdminTestEnv(t)

	inactive := false
	w := httptest.NewRecorder()
	h.SetActive(w, testutil.MakeRequest("PUT", "/admin/config/active",
		models.SetActiveRequest{StudyActive: &inactive}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	ok, err := st.CanAccept()
	if err != nil {
		t.Fatalf("CanAccept() error = %v", err)
	}
	if ok {
		t.Error("study still accepting after pause")
	}

	// Missing field rejected, not treated as false
	w = httptest.NewRecorder()
	h.SetActive(w, testutil.MakeRequest("PUT", "/admin/config/active",
		models.SetActiveRequest{}, headers))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestExportCSV(t *testing.T) {
	h, st, headers := newAdminTestEnv(t)

	_, id, err := st.AssignCondition()
	if err != nil {
		t.Fatalf("AssignCondition() error = %v", err)
	}
	if err := st.UpdateDemographics(id, 29, "Midwife"); err != nil {
		t.Fatalf("UpdateDemographics() error = %v", err)
	}
	if err := st.RecordResponse(id, models.ResponseInput{
		CaseID: "case_a", ResponseNumber: 1,
		AgreeRating: models.AgreeStronglyAgree, Trust: true, Comment: "convincing",
	}); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	// Participants CSV
	w := httptest.NewRecorder()
	h.ExportParticipants(w, testutil.MakeRequest("GET", "/admin/export/participants.csv", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "participants_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse participants CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("participant rows = %d, want header + 1", len(records))
	}
	if records[0][0] != "id" || records[1][1] != string(models.ConditionControl) {
		t.Errorf("unexpected CSV contents: %v", records)
	}
	if records[1][2] != "29" || records[1][3] != "Midwife" {
		t.Errorf("demographics row = %v", records[1])
	}

	// Responses CSV
	w = httptest.NewRecorder()
	h.ExportResponses(w, testutil.MakeRequest("GET", "/admin/export/responses.csv", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	records, err = csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse responses CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("response rows = %d, want header + 1", len(records))
	}
	row := records[1]
	if row[2] != "case_a" || row[5] != models.AgreeStronglyAgree || row[6] != "true" {
		t.Errorf("response row = %v", row)
	}
}

func TestGetParticipantResponses(t *testing.T) {
	h, st, headers := newAdminTestEnv(t)

	_, id, err := st.AssignCondition()
	if err != nil {
		t.Fatalf("AssignCondition() error = %v", err)
	}
	if err := st.RecordResponse(id, models.ResponseInput{
		CaseID: "case_a", ResponseNumber: 1,
		AgreeRating: models.AgreeNeutral, Trust: false, Comment: "unsure",
	}); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	req := testutil.MakeRequest("GET", "/admin/participants/"+strconv.FormatInt(id, 10)+"/responses", nil, headers)
	req.SetPathValue("id", strconv.FormatInt(id, 10))
	w := httptest.NewRecorder()
	h.GetParticipantResponses(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var responses []models.Response
	testutil.AssertJSON(t, w, &responses)
	if len(responses) != 1 || responses[0].CaseID != "case_a" {
		t.Errorf("responses = %+v", responses)
	}

	// Unknown participant
	req = testutil.MakeRequest("GET", "/admin/participants/999/responses", nil, headers)
	req.SetPathValue("id", "999")
	w = httptest.NewRecorder()
	h.GetParticipantResponses(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Bad id
	req = testutil.MakeRequest("GET", "/admin/participants/abc/responses", nil, headers)
	req.SetPathValue("id", "abc")
	w = httptest.NewRecorder()
	h.GetParticipantResponses(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestReset(t *testing.T) {
	h, st, headers := newAdminTestEnv(t)

	if _, _, err := st.AssignCondition(); err != nil {
		t.Fatalf("AssignCondition() error = %v", err)
	}
	if err := st.SetTargetParticipants(77); err != nil {
		t.Fatalf("SetTargetParticipants() error = %v", err)
	}

	// Wrong confirmation phrase leaves everything intact
	w := httptest.NewRecorder()
	h.Reset(w, testutil.MakeRequest("POST", "/admin/reset",
		models.ResetRequest{Confirm: "delete everything"}, headers))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	stats, err := st.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalParticipants != 1 || stats.TargetParticipants != 77 {
		t.Errorf("data changed after rejected reset: %+v", stats)
	}

	// Exact phrase wipes and restores defaults
	w = httptest.NewRecorder()
	h.Reset(w, testutil.MakeRequest("POST", "/admin/reset",
		models.ResetRequest{Confirm: models.ResetConfirmation}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	stats, err = st.GetStats()
	if err != nil {
		t.Fatalf("GetStats() after reset error = %v", err)
	}
	if stats.TotalParticipants != 0 {
		t.Errorf("participants after reset = %d, want 0", stats.TotalParticipants)
	}
	if stats.TargetParticipants != models.DefaultTargetParticipants || !stats.StudyActive {
		t.Errorf("config after reset = %+v, want defaults", stats)
	}
}
