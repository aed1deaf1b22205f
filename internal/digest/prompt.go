// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Opening lines of each prompt. Kept separate so the roles stay distinct.
const (
	summarizeRole = "You are a professional research assistant tasked with analyzing and summarizing academic research papers."
	critiqueRole  = "You are a critical reviewer of academic research summaries."
	verifyRole    = "Fact-check the following summary. Highlight factual inaccuracies."
)

var summarizePromptTmpl = template.Must(template.New("summarize").Parse(summarizeRole + `

Review the research papers below and write one general summary that covers:
- the most significant opportunities, advances, or contributions across the papers
- the key challenges, limitations, or open concerns they raise
- the most relevant real-world applications or practical implications

Write clear, concise, professional prose for a research audience. Organize the
summary by topic in flowing paragraphs, not paper by paper. Do not list the
papers separately and do not add information that is not in the content.
{{if .Feedback}}
A reviewer found problems with a previous draft. Address this feedback:

{{.Feedback}}
{{end}}
Research papers:

{{.Content}}
`))

var critiquePromptTmpl = template.Must(template.New("critique").Parse(critiqueRole + `

Review the research summary below. Give feedback on completeness, accuracy,
clarity, and missing details. If the summary lacks information, suggest
improvements.

Summary:

{{.Summary}}
`))

var verifyPromptTmpl = template.Must(template.New("verify").Parse(verifyRole + `

{{.Summary}}
`))

type summarizePromptData struct {
	Content  string
	Feedback string
}

type summaryPromptData struct {
	Summary string
}

// formatPapers renders each paper as a Title/Summary pair separated by a
// blank line. An empty list renders as the empty string.
func formatPapers(papers []types.PaperRecord) string {
	blocks := make([]string, len(papers))
	for i, p := range papers {
		blocks[i] = fmt.Sprintf("Title: %s\nSummary: %s", p.Title, p.Summary)
	}
	return strings.Join(blocks, "\n\n")
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
