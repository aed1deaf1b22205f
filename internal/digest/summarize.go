// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"

	"github.com/pdiddy/research-digest/internal/generate"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Summarizer turns the merged paper list into one natural-language summary.
type Summarizer struct {
	Generator generate.Generator
}

// Summarize builds a prompt from every paper's title and summary and returns
// the generator's answer verbatim. An empty list still produces a call.
// feedback is the critique of the previous draft on a rewrite and empty on
// the first attempt. Generator errors are returned unchanged.
func (s *Summarizer) Summarize(ctx context.Context, papers []types.PaperRecord, feedback string) (string, error) {
	prompt, err := renderPrompt(summarizePromptTmpl, summarizePromptData{
		Content:  formatPapers(papers),
		Feedback: feedback,
	})
	if err != nil {
		return "", err
	}
	return s.Generator.Complete(ctx, prompt)
}
