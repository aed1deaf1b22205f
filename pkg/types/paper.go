// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-digest pipeline.
package types

// Source names for the two literature indexes.
const (
	SourceArxiv    = "arxiv"
	SourceOpenAlex = "openalex"
)

// PaperRecord is the normalized form of one paper returned by a literature
// index. Collectors fill absent upstream fields with placeholders rather than
// leaving them empty, so every record is printable as-is.
type PaperRecord struct {
	// Title is the paper title with markup and redundant whitespace removed.
	Title string `json:"title" yaml:"title"`

	// Summary is the abstract as readable text.
	Summary string `json:"summary" yaml:"summary"`

	// Link is the canonical URL of the paper at its index.
	Link string `json:"link" yaml:"link"`

	// Source identifies which index produced the record (e.g. "arxiv", "openalex").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}
