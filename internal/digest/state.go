// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"github.com/google/uuid"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Status is the critic's decision as recorded by the retry controller.
type Status string

const (
	StatusUnset        Status = ""
	StatusNeedsRewrite Status = "needs_rewrite"
	StatusApproved     Status = "approved"
)

// State is the record threaded through every step of a run. Steps receive
// it by value and return an updated copy, so a run's state has exactly one
// owner at a time. Slices are assigned once and never modified in place.
type State struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Query string `json:"query" yaml:"query"`

	ResultsA []types.PaperRecord `json:"results_a" yaml:"results_a"`
	ResultsB []types.PaperRecord `json:"results_b" yaml:"results_b"`
	Merged   []types.PaperRecord `json:"merged" yaml:"merged"`

	Summary      string `json:"summary" yaml:"summary"`
	Critique     string `json:"critique" yaml:"critique"`
	Verification string `json:"verification" yaml:"verification"`
	FinalOutput  string `json:"final_output" yaml:"final_output"`

	Status       Status `json:"status" yaml:"status"`
	RewriteCount int    `json:"rewrite_count" yaml:"rewrite_count"`

	// SummaryAttempts counts Summarize executions: one plus the rewrites.
	SummaryAttempts int `json:"summary_attempts" yaml:"summary_attempts"`
}

// NewState returns the initial state for query with a fresh run ID.
func NewState(query string) State {
	return State{
		RunID: uuid.NewString(),
		Query: query,
	}
}
