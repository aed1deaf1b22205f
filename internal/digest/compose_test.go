// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func TestCompose(t *testing.T) {
	papers := records("arxiv", "Graph Attention Networks", "GraphSAGE")
	got := Compose("The summary.", papers)

	want := "The summary.\n\nSummarized Research Papers:\n- Graph Attention Networks\n- GraphSAGE"
	assert.Equal(t, want, got)
}

func TestCompose_EveryTitleOnceInOrder(t *testing.T) {
	papers := records("mixed", "Alpha", "Beta", "Gamma", "No Title")
	got := Compose("Summary text mentions nothing listed.", papers)

	require.True(t, strings.HasPrefix(got, "Summary text mentions nothing listed."))
	idx := strings.Index(got, PapersHeader)
	require.Greater(t, idx, 0)
	list := got[idx+len(PapersHeader):]

	last := -1
	for _, p := range papers {
		line := "- " + p.Title
		assert.Equal(t, 1, strings.Count(list, line), "title %q", p.Title)
		pos := strings.Index(list, line)
		assert.Greater(t, pos, last, "title %q out of order", p.Title)
		last = pos
	}
}

func TestCompose_Empty(t *testing.T) {
	got := Compose("Nothing found.", nil)
	assert.Equal(t, "Nothing found.\n\nSummarized Research Papers:\n", got)
}

func TestSummarizer_PromptContent(t *testing.T) {
	gen := &scriptedGenerator{}
	s := &Summarizer{Generator: gen}

	papers := []types.PaperRecord{
		{Title: "Paper One", Summary: "First abstract."},
		{Title: "Paper Two", Summary: "Second abstract."},
	}
	out, err := s.Summarize(context.Background(), papers, "")
	require.NoError(t, err)
	assert.Equal(t, "summary v1", out)

	prompt := gen.Prompts()[0]
	assert.Contains(t, prompt, "Title: Paper One\nSummary: First abstract.\n\nTitle: Paper Two\nSummary: Second abstract.")
	assert.NotContains(t, prompt, "reviewer found problems")
}

func TestSummarizer_FeedbackIncluded(t *testing.T) {
	gen := &scriptedGenerator{}
	s := &Summarizer{Generator: gen}

	_, err := s.Summarize(context.Background(), nil, "The limitations section is missing.")
	require.NoError(t, err)

	prompt := gen.Prompts()[0]
	assert.Contains(t, prompt, "reviewer found problems")
	assert.Contains(t, prompt, "The limitations section is missing.")
}

func TestVerifier_Verify(t *testing.T) {
	gen := &scriptedGenerator{verification: "All claims check out."}
	v := &Verifier{Generator: gen}

	out, err := v.Verify(context.Background(), "approved summary")
	require.NoError(t, err)
	assert.Equal(t, "All claims check out.", out)
	assert.Contains(t, gen.Prompts()[0], "approved summary")
}

func TestFormatPapers(t *testing.T) {
	assert.Equal(t, "", formatPapers(nil))
	assert.Equal(t, "Title: T\nSummary: S", formatPapers([]types.PaperRecord{{Title: "T", Summary: "S"}}))
}
