// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/research-digest/pkg/types"
)

// fakeCollector returns canned records and counts calls.
type fakeCollector struct {
	name    string
	results []types.PaperRecord
	err     error

	mu    sync.Mutex
	calls int
}

func (c *fakeCollector) Name() string { return c.name }

func (c *fakeCollector) Collect(_ context.Context, _ string, _ int) ([]types.PaperRecord, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.results, c.err
}

func (c *fakeCollector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// scriptedGenerator answers by prompt role. Summaries are numbered by
// attempt, critiques are taken from the script in order (the last entry
// repeats), and every prompt is recorded.
type scriptedGenerator struct {
	critiques    []string
	verification string

	summarizeErr error
	critiqueErr  error
	verifyErr    error

	mu      sync.Mutex
	prompts []string
	counts  map[string]int
}

func (g *scriptedGenerator) Complete(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counts == nil {
		g.counts = make(map[string]int)
	}
	g.prompts = append(g.prompts, prompt)

	switch {
	case strings.HasPrefix(prompt, summarizeRole):
		g.counts["summarize"]++
		if g.summarizeErr != nil {
			return "", g.summarizeErr
		}
		return fmt.Sprintf("summary v%d", g.counts["summarize"]), nil
	case strings.HasPrefix(prompt, critiqueRole):
		g.counts["critique"]++
		if g.critiqueErr != nil {
			return "", g.critiqueErr
		}
		if len(g.critiques) == 0 {
			return "Looks complete, no issues.", nil
		}
		i := g.counts["critique"] - 1
		if i >= len(g.critiques) {
			i = len(g.critiques) - 1
		}
		return g.critiques[i], nil
	case strings.HasPrefix(prompt, verifyRole):
		g.counts["verify"]++
		if g.verifyErr != nil {
			return "", g.verifyErr
		}
		if g.verification == "" {
			return "No factual inaccuracies found.", nil
		}
		return g.verification, nil
	}
	return "", fmt.Errorf("unexpected prompt: %.40q", prompt)
}

func (g *scriptedGenerator) Count(role string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[role]
}

func (g *scriptedGenerator) Total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *scriptedGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

func records(source string, titles ...string) []types.PaperRecord {
	out := make([]types.PaperRecord, len(titles))
	for i, t := range titles {
		out[i] = types.PaperRecord{
			Title:   t,
			Summary: "Abstract of " + t,
			Link:    "https://example.org/" + strings.ReplaceAll(t, " ", "-"),
			Source:  source,
		}
	}
	return out
}
