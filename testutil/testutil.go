// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skovacs/surveyd/cliparse"
	"github.com/skovacs/surveyd/db"
	"github.com/skovacs/surveyd/models"
)

// SetupTestDB creates a fresh file-backed sqlite database in a per-test temp
// directory with the full schema and seeded default config. The file is
// removed with the temp dir when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "surveyd_test.db")
	conn, err := db.Open(db.DialectSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3410,
		DatabaseURL:   "test.db",
		DatabaseType:  "sqlite",
		AdminKeySalt:  "test-admin-salt",
		VignettesFile: "cases.json",
		MaxResponses:  3,
	}
}

// CreateTestParticipant inserts a participant directly and returns its ID,
// bypassing the assignment rule so tests can pin arbitrary allocations.
func CreateTestParticipant(t *testing.T, conn *sql.DB, condition models.Condition, completed bool) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO participants (condition, assigned_at, completed)
		VALUES ($1, $2, $3)
		RETURNING id
	`, condition, time.Now(), completed).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return id
}

// AddTestResponse inserts a response row directly for a participant.
func AddTestResponse(t *testing.T, conn *sql.DB, participantID int64, caseID string, responseNumber int, condition models.Condition) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO responses (
			participant_id, case_id, response_number, condition,
			agree_rating, trust_rating, comment, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, participantID, caseID, responseNumber, condition,
		models.AgreeAgree, true, "test comment", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
}

// WriteTestVignettes writes a small case set to a temp file and returns the
// loaded cases' file path.
func WriteTestVignettes(t *testing.T) string {
	t.Helper()

	cases := []map[string]string{
		{"id": "case_a", "prompt": "A 45-year-old presents with chest pain radiating to the left arm.", "llm_response": "The presentation is consistent with acute coronary syndrome; obtain an ECG and troponin immediately."},
		{"id": "case_b", "prompt": "A 7-year-old has a fever of 39C and a barking cough.", "llm_response": "The barking cough suggests croup; assess airway severity and consider dexamethasone."},
		{"id": "case_c", "prompt": "A 62-year-old reports progressive shortness of breath over two weeks.", "llm_response": "Consider heart failure or pulmonary causes; order a chest X-ray, BNP, and spirometry."},
		{"id": "case_d", "prompt": "A 30-year-old has a painless thyroid nodule found on routine exam.", "llm_response": "Order a TSH and thyroid ultrasound; biopsy depends on sonographic features."},
	}

	data, err := json.Marshal(cases)
	if err != nil {
		t.Fatalf("Failed to marshal test vignettes: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cases.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write test vignettes: %v", err)
	}

	return path
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
