// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/skovacs/surveyd/auth"
	"github.com/skovacs/surveyd/cliparse"
	"github.com/skovacs/surveyd/middleware"
	"github.com/skovacs/surveyd/models"
	"github.com/skovacs/surveyd/store"
)

// recentActivityWindow bounds the admin dashboard activity feed.
const (
	recentActivityWindow = 24 * time.Hour
	recentActivityLimit  = 5
)

type AdminHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewAdminHandler(st *store.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: st, cfg: cfg}
}

// GetStats handles GET /admin/stats
// One snapshot of allocation state plus progress and a recent-activity feed.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	stats, err := h.store.GetStats()
	if err != nil {
		slog.Error("failed to get stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	activity, err := h.store.RecentActivity(recentActivityWindow, recentActivityLimit)
	if err != nil {
		slog.Error("failed to get recent activity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	for i := range activity {
		activity[i].AtHuman = humanize.Time(activity[i].At)
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdminStatsResponse{
		Stats:          stats,
		Progress:       models.ProgressFrom(stats, stats.TargetParticipants),
		RecentActivity: activity,
	})
}

// GetProgress handles GET /admin/progress
func (h *AdminHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	progress, err := h.store.GetProgress()
	if err != nil {
		slog.Error("failed to get progress", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, progress)
}

// SetTarget handles PUT /admin/config/target
// Takes effect on future assignments only; existing participants are never
// rejected retroactively.
func (h *AdminHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.SetTargetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.store.SetTargetParticipants(req.TargetParticipants); err != nil {
		if errors.Is(err, store.ErrInvalidTarget) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "target_participants must be positive")
			return
		}
		slog.Error("failed to set target", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update target")
		return
	}

	slog.Info("target participants updated", "target", req.TargetParticipants)
	h.writeConfig(w)
}

// SetActive handles PUT /admin/config/active
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.SetActiveRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudyActive == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "study_active is required")
		return
	}

	if err := h.store.SetStudyActive(*req.StudyActive); err != nil {
		slog.Error("failed to set study active", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	slog.Info("study active updated", "active", *req.StudyActive)
	h.writeConfig(w)
}

// ExportParticipants handles GET /admin/export/participants.csv
func (h *AdminHandler) ExportParticipants(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	participants, _, err := h.store.ExportAll()
	if err != nil {
		slog.Error("failed to export participants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Export failed")
		return
	}

	writeCSVHeader(w, "participants")
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "condition", "age", "profession", "assigned_at", "completed"})
	for _, p := range participants {
		age := ""
		if p.Age != nil {
			age = strconv.Itoa(*p.Age)
		}
		profession := ""
		if p.Profession != nil {
			profession = *p.Profession
		}
		cw.Write([]string{
			strconv.FormatInt(p.ID, 10),
			string(p.Condition),
			age,
			profession,
			p.AssignedAt.Format(time.RFC3339),
			strconv.FormatBool(p.Completed),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write participants csv", "error", err)
	}
}

// ExportResponses handles GET /admin/export/responses.csv
func (h *AdminHandler) ExportResponses(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	_, responses, err := h.store.ExportAll()
	if err != nil {
		slog.Error("failed to export responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Export failed")
		return
	}

	writeCSVHeader(w, "responses")
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "participant_id", "case_id", "response_number", "condition", "agree_rating", "trust_rating", "comment", "submitted_at"})
	for _, resp := range responses {
		cw.Write([]string{
			strconv.FormatInt(resp.ID, 10),
			strconv.FormatInt(resp.ParticipantID, 10),
			resp.CaseID,
			strconv.Itoa(resp.ResponseNumber),
			string(resp.Condition),
			resp.AgreeRating,
			strconv.FormatBool(resp.Trust),
			resp.Comment,
			resp.SubmittedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write responses csv", "error", err)
	}
}

// GetParticipantResponses handles GET /admin/participants/{id}/responses
func (h *AdminHandler) GetParticipantResponses(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	responses, err := h.store.ParticipantResponses(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
			return
		}
		slog.Error("failed to get participant responses", "error", err, "participant_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, responses)
}

// Reset handles POST /admin/reset
// Wipes everything. The store does not gate this, so the confirmation phrase
// is enforced here and nowhere lower.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.ResetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Confirm != models.ResetConfirmation {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("confirmation required: send {\"confirm\": %q}", models.ResetConfirmation))
		return
	}

	if err := h.store.ResetAll(); err != nil {
		slog.Error("failed to reset study", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Reset failed")
		return
	}

	slog.Warn("study reset: all data wiped")
	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		Message: "All participants, responses, and configuration wiped",
	})
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

func (h *AdminHandler) writeConfig(w http.ResponseWriter) {
	stats, err := h.store.GetStats()
	if err != nil {
		slog.Error("failed to read config after update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ConfigUpdateResponse{
		TargetParticipants: stats.TargetParticipants,
		StudyActive:        stats.StudyActive,
	})
}

func writeCSVHeader(w http.ResponseWriter, name string) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
}
