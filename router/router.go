// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/skovacs/surveyd/cliparse"
	"github.com/skovacs/surveyd/handlers"
	"github.com/skovacs/surveyd/middleware"
	"github.com/skovacs/surveyd/session"
	"github.com/skovacs/surveyd/store"
	"github.com/skovacs/surveyd/vignettes"
)

func NewRouter(st *store.Store, sessions *session.Manager, cases []vignettes.Case, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	surveyHandler := handlers.NewSurveyHandler(st, sessions, cases, cfg)
	adminHandler := handlers.NewAdminHandler(st, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Participant flow (public)
	mux.HandleFunc("POST /survey/sessions", middleware.WithLogging(surveyHandler.StartSession))
	mux.HandleFunc("POST /survey/consent", middleware.WithLogging(surveyHandler.GiveConsent))
	mux.HandleFunc("POST /survey/demographics", middleware.WithLogging(surveyHandler.SubmitDemographics))
	mux.HandleFunc("GET /survey/vignettes", middleware.WithLogging(surveyHandler.ListVignettes))
	mux.HandleFunc("POST /survey/vignettes/select", middleware.WithLogging(surveyHandler.SelectVignette))
	mux.HandleFunc("POST /survey/responses", middleware.WithLogging(surveyHandler.SubmitResponse))

	// Admin surface (requires X-Admin-Key)
	mux.HandleFunc("GET /admin/stats", middleware.WithLogging(adminHandler.GetStats))
	mux.HandleFunc("GET /admin/progress", middleware.WithLogging(adminHandler.GetProgress))
	mux.HandleFunc("PUT /admin/config/target", middleware.WithLogging(adminHandler.SetTarget))
	mux.HandleFunc("PUT /admin/config/active", middleware.WithLogging(adminHandler.SetActive))
	mux.HandleFunc("GET /admin/export/participants.csv", middleware.WithLogging(adminHandler.ExportParticipants))
	mux.HandleFunc("GET /admin/export/responses.csv", middleware.WithLogging(adminHandler.ExportResponses))
	mux.HandleFunc("GET /admin/participants/{id}/responses", middleware.WithLogging(adminHandler.GetParticipantResponses))
	mux.HandleFunc("POST /admin/reset", middleware.WithLogging(adminHandler.Reset))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("surveyd API v1"))
	})

	return mux
}
