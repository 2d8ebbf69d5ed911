// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vignettes loads and serves the clinical case set.

Cases come from a JSON file configured at startup:

	[
	  {"id": "case_a", "prompt": "...", "llm_response": "..."}
	]

Load rejects an empty set, empty ids, and duplicate ids. The set is
immutable for the lifetime of the process.

Participants see Summaries (id plus a truncated prompt preview) until they
select a case; only then is the full prompt and AI response revealed.
*/
package vignettes
