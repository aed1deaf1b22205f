// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes a finished digest in the formats the CLI offers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-digest/internal/digest"
)

// Format selects how a digest is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml, or html)", s)
	}
}

// Write renders s to w. Text and HTML carry only the final output; JSON and
// YAML carry the whole terminal state, including the critique and the
// fact-check annotation.
func Write(w io.Writer, s digest.State, f Format) error {
	switch f {
	case FormatText, "":
		_, err := fmt.Fprintln(w, s.FinalOutput)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatHTML:
		_, err := w.Write(RenderHTML(s.FinalOutput))
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// RenderHTML converts Markdown text to an HTML fragment. Raw HTML in the
// input is escaped rather than passed through.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.ToHTML([]byte(md), p, r)
}
