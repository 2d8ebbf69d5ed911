// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the surveyd API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - SurveyHandler: Participant flow (session, consent, demographics,
    vignette selection, rating submission)
  - AdminHandler: Dashboard stats, config mutation, CSV export, reset

Handlers are created via constructor functions:

	surveyHandler := handlers.NewSurveyHandler(st, sessions, cases, cfg)
	adminHandler := handlers.NewAdminHandler(st, cfg)

# Survey Flow

Participants progress through the wizard:

	POST /survey/sessions         → StartSession (assigns condition, returns token)
	POST /survey/consent          → GiveConsent
	POST /survey/demographics     → SubmitDemographics
	GET  /survey/vignettes        → ListVignettes (previews of unused cases)
	POST /survey/vignettes/select → SelectVignette (reveals full case)
	POST /survey/responses        → SubmitResponse (repeats until quota)

All post-session calls require the X-Session-Token header. Out-of-order
calls return 409; unknown tokens return 401. When the study is paused or
full, StartSession returns 409 and nothing is created.

# Admin Surface

Admin operations require the X-Admin-Key header:

	GET  /admin/stats                        → allocation snapshot + activity
	GET  /admin/progress                     → progress toward target
	PUT  /admin/config/target                → set capacity target
	PUT  /admin/config/active                → pause/resume sign-ups
	GET  /admin/export/participants.csv      → participant CSV
	GET  /admin/export/responses.csv         → response CSV
	GET  /admin/participants/{id}/responses  → one participant's ratings
	POST /admin/reset                        → wipe (requires confirmation phrase)

# Error Shape

All errors are JSON ErrorResponse bodies with the HTTP status text and a
human-readable message.
*/
package handlers
