// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vignettes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Case is one clinical vignette shown to a participant, paired with the AI
// response they rate.
type Case struct {
	ID          string `json:"id"`
	Prompt      string `json:"prompt"`
	LLMResponse string `json:"llm_response"`
}

// Summary is the listing form sent to participants: the response text is
// withheld until a case is selected.
type Summary struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

// Load reads the case set from a JSON file.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vignettes file: %w", err)
	}

	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse vignettes file: %w", err)
	}
	if len(cases) == 0 {
		return nil, errors.New("vignettes file contains no cases")
	}

	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		if c.ID == "" {
			return nil, errors.New("vignette with empty id")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate vignette id: %s", c.ID)
		}
		seen[c.ID] = true
	}

	return cases, nil
}

// Find returns the case with the given id.
func Find(cases []Case, id string) (Case, bool) {
	for _, c := range cases {
		if c.ID == id {
			return c, true
		}
	}
	return Case{}, false
}

// Summarize builds the participant-facing listing, truncating prompts for
// dropdown display.
func Summarize(cases []Case, maxPreview int) []Summary {
	summaries := make([]Summary, 0, len(cases))
	for _, c := range cases {
		preview := c.Prompt
		if len(preview) > maxPreview {
			preview = preview[:maxPreview] + "..."
		}
		summaries = append(summaries, Summary{ID: c.ID, Preview: preview})
	}
	return summaries
}
