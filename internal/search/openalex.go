// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexMaxPerPage is the largest page size OpenAlex accepts.
const openAlexMaxPerPage = 200

// OpenAlexBackend queries the OpenAlex Works API.
type OpenAlexBackend struct {
	Client *http.Client
	Config types.HTTPConfig
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return types.SourceOpenAlex }

// Collect queries OpenAlex and normalizes each work into a PaperRecord:
// display_name becomes the title, the abstract inverted index is rebuilt
// into plain text, and the OpenAlex ID is the link.
func (b *OpenAlexBackend) Collect(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error) {
	perPage := resolveMaxResults(maxResults)
	if perPage > openAlexMaxPerPage {
		perPage = openAlexMaxPerPage
	}

	params := url.Values{
		"search":   {strings.TrimSpace(query)},
		"per-page": {strconv.Itoa(perPage)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}
	reqURL := openAlexSearchBase + "?" + params.Encode()

	body, err := httputil.Get(ctx, b.Client, reqURL, b.Config.UserAgent, b.Config.Timeout)
	if err != nil {
		return nil, collectorError(b.Name(), fmt.Errorf("OpenAlex API request: %w", err))
	}

	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return nil, collectorError(b.Name(), fmt.Errorf("parsing OpenAlex response: %w", err))
	}

	results := make([]types.PaperRecord, 0, len(oar.Results))
	for _, work := range oar.Results {
		title := work.DisplayName
		if strings.TrimSpace(title) == "" {
			title = work.Title
		}
		results = append(results, types.PaperRecord{
			Title:   orPlaceholder(stripMarkup(title), NoTitle),
			Summary: orPlaceholder(reconstructAbstract(work.AbstractInvertedIndex), NoSummary),
			Link:    linkOrPlaceholder(work.ID),
			Source:  types.SourceOpenAlex,
		})
	}
	return results, nil
}

func linkOrPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return NoLink
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string           `json:"id"`
	DisplayName           string           `json:"display_name"`
	Title                 string           `json:"title"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}
