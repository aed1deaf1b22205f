// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Client *http.Client
	Config types.HTTPConfig
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return types.SourceArxiv }

// Collect queries arXiv and maps each Atom entry to a PaperRecord in feed
// order. An empty feed yields an empty, non-nil slice.
func (b *ArxivBackend) Collect(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error) {
	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d",
		arxivAPIBase, buildArxivQuery(query), resolveMaxResults(maxResults))

	body, err := httputil.Get(ctx, b.Client, reqURL, b.Config.UserAgent, b.Config.Timeout)
	if err != nil {
		return nil, collectorError(b.Name(), fmt.Errorf("arXiv API request: %w", err))
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, collectorError(b.Name(), fmt.Errorf("parsing arXiv response: %w", err))
	}

	results := make([]types.PaperRecord, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		results = append(results, types.PaperRecord{
			Title:   orPlaceholder(entry.Title, NoTitle),
			Summary: orPlaceholder(entry.Summary, NoSummary),
			Link:    entry.link(),
			Source:  types.SourceArxiv,
		})
	}
	return results, nil
}

// buildArxivQuery turns free text into the search_query parameter,
// searching all fields for every term.
func buildArxivQuery(q string) string {
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return "all:"
	}
	for i, t := range terms {
		terms[i] = url.QueryEscape(t)
	}
	return "all:" + strings.Join(terms, "+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Summary string      `xml:"summary"`
	Links   []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// link returns the abstract page URL: the alternate link when present,
// then the entry id, then the placeholder.
func (e arxivEntry) link() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && strings.TrimSpace(l.Href) != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	return NoLink
}
