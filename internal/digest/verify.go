// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"

	"github.com/pdiddy/research-digest/internal/generate"
)

// Verifier fact-checks an approved summary.
type Verifier struct {
	Generator generate.Generator
}

// Verify returns the generator's fact-check annotation for summary.
func (v *Verifier) Verify(ctx context.Context, summary string) (string, error) {
	prompt, err := renderPrompt(verifyPromptTmpl, summaryPromptData{Summary: summary})
	if err != nil {
		return "", err
	}
	return v.Generator.Complete(ctx, prompt)
}
