// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"strings"

	"github.com/pdiddy/research-digest/pkg/types"
)

// PapersHeader introduces the paper list in the final output.
const PapersHeader = "Summarized Research Papers:"

// Compose appends the paper titles, one per line and in order, to summary.
func Compose(summary string, papers []types.PaperRecord) string {
	lines := make([]string, len(papers))
	for i, p := range papers {
		lines[i] = "- " + p.Title
	}
	return summary + "\n\n" + PapersHeader + "\n" + strings.Join(lines, "\n")
}
