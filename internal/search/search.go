// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search collects candidate papers from literature indexes and
// merges them into one ordered list.
package search

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultMaxResults is the number of papers requested from each index when
// the caller does not say otherwise.
const DefaultMaxResults = 3

// Placeholders for fields an index left empty.
const (
	NoTitle   = "No Title"
	NoSummary = "No Summary"
	NoLink    = "No Link"
)

// Collector queries a single literature index. Each index (arXiv, OpenAlex)
// implements this interface per the Strategy pattern.
type Collector interface {
	Name() string
	Collect(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error)
}

// CollectorError reports that an index was unreachable, answered with a
// non-200 status, timed out, or returned a body that could not be parsed.
type CollectorError struct {
	Source  string
	Timeout bool
	Err     error
}

func (e *CollectorError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *CollectorError) Unwrap() error { return e.Err }

// collectorError wraps err for source, flagging deadline failures.
func collectorError(source string, err error) *CollectorError {
	return &CollectorError{Source: source, Timeout: httputil.IsTimeout(err), Err: err}
}

// Merge returns all of a in order followed by all of b in order. It does not
// filter or deduplicate, and the result never shares a backing array with
// either input.
func Merge(a, b []types.PaperRecord) []types.PaperRecord {
	merged := make([]types.PaperRecord, 0, len(a)+len(b))
	merged = append(merged, a...)
	return append(merged, b...)
}

func resolveMaxResults(n int) int {
	if n <= 0 {
		return DefaultMaxResults
	}
	return n
}

// markupPolicy strips every HTML element. OpenAlex display names carry
// inline <i>, <sub>, and <sup> tags. It must not see arXiv text: the Atom
// decoder has already produced plain text there, and inline math such as
// $n<k$ would be read as a tag and dropped.
var markupPolicy = bluemonday.StrictPolicy()

// stripMarkup removes HTML elements and entities, then collapses whitespace.
func stripMarkup(s string) string {
	return collapseSpace(html.UnescapeString(markupPolicy.Sanitize(s)))
}

// collapseSpace joins runs of whitespace into single spaces (arXiv wraps
// titles and abstracts across lines).
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// orPlaceholder returns s with whitespace collapsed, or placeholder if
// nothing is left.
func orPlaceholder(s, placeholder string) string {
	if c := collapseSpace(s); c != "" {
		return c
	}
	return placeholder
}
