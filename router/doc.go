// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the surveyd API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, sessions, cases, cfg)

# Endpoints

Health:

	GET /health

Survey flow (public, uses X-Session-Token after session start):

	POST /survey/sessions         - Start session, assign condition
	POST /survey/consent          - Record consent
	POST /survey/demographics     - Submit age and profession
	GET  /survey/vignettes        - List available vignette previews
	POST /survey/vignettes/select - Lock in a vignette for rating
	POST /survey/responses        - Submit a rating

Admin (requires X-Admin-Key):

	GET  /admin/stats                       - Allocation snapshot
	GET  /admin/progress                    - Progress toward target
	PUT  /admin/config/target               - Set capacity target
	PUT  /admin/config/active               - Pause/resume the study
	GET  /admin/export/participants.csv     - Export participants
	GET  /admin/export/responses.csv        - Export responses
	GET  /admin/participants/{id}/responses - One participant's ratings
	POST /admin/reset                       - Wipe all data

# Handler Initialization

The router creates handler instances with dependency injection:

	surveyHandler := handlers.NewSurveyHandler(st, sessions, cases, cfg)
	adminHandler := handlers.NewAdminHandler(st, cfg)

All routes are wrapped with request logging.
*/
package router
