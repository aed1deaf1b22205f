// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"
	"strings"

	"github.com/pdiddy/research-digest/internal/generate"
)

// DefaultMaxRewrites is how many times the critic may send a summary back
// before its verdict is overridden.
const DefaultMaxRewrites = 2

// rewriteKeywords trigger a rewrite when any appears in the critique,
// ignoring case. This is a substring match, so "errors" and "improvement"
// count too.
var rewriteKeywords = []string{"missing", "improve", "bias", "error"}

// Critic reviews a summary and judges whether it needs a rewrite.
type Critic struct {
	Generator generate.Generator
}

// Critique asks the generator to review summary and derives the verdict
// from the review text.
func (c *Critic) Critique(ctx context.Context, summary string) (string, Status, error) {
	prompt, err := renderPrompt(critiquePromptTmpl, summaryPromptData{Summary: summary})
	if err != nil {
		return "", StatusUnset, err
	}
	text, err := c.Generator.Complete(ctx, prompt)
	if err != nil {
		return "", StatusUnset, err
	}
	return text, Verdict(text), nil
}

// Verdict returns StatusNeedsRewrite if critique mentions any rewrite
// keyword and StatusApproved otherwise.
func Verdict(critique string) Status {
	lower := strings.ToLower(critique)
	for _, k := range rewriteKeywords {
		if strings.Contains(lower, k) {
			return StatusNeedsRewrite
		}
	}
	return StatusApproved
}

// applyCritique records a critic result and decides the next edge. Once
// maxRewrites rewrites have happened the summary is approved whatever the
// verdict. RewriteCount only grows on the needs-rewrite branch, which is
// reachable only while RewriteCount < maxRewrites.
func applyCritique(s State, critique string, verdict Status, maxRewrites int) State {
	s.Critique = critique
	if s.RewriteCount >= maxRewrites {
		s.Status = StatusApproved
	} else {
		s.Status = verdict
	}
	if s.Status == StatusNeedsRewrite {
		s.RewriteCount++
	}
	return s
}
