// Package parser extracts typed sections from the free-text model response.
// Every extraction is an isolated best-effort scan over the full response;
// a missing section yields an empty field, never an error.
package parser

import (
	"regexp"
	"strings"
)

// ParsedSections holds the sections extracted from one model response.
// An empty field means the corresponding marker or fence was not found.
type ParsedSections struct {
	Summary          string `json:"summary,omitempty"`
	DiagramSource    string `json:"diagram_source,omitempty"`
	SQLSource        string `json:"sql_source,omitempty"`
	RelationshipText string `json:"relationship_text,omitempty"`
	ExplanationText  string `json:"explanation_text,omitempty"`
}

var (
	mermaidFenceRe = regexp.MustCompile("(?is)```mermaid[ \t]*\n(.*?)```")
	sqlFenceRe     = regexp.MustCompile("(?is)```sql[ \t]*\n(.*?)```")

	relationshipsRe = regexp.MustCompile(`(?is)Relationships and Join Logic\s*\n+(.*?)(?:\n###|\z)`)
	explanationRe   = regexp.MustCompile(`(?is)###\s*\d*\.*\s*Brief Explanation\s*\n+(.*?)(?:\n###|\z)`)
)

// Parse splits a model response into its typed sections
func Parse(response string) ParsedSections {
	sections := ParsedSections{
		Summary:          extractSummary(response),
		RelationshipText: extractHeadingSection(relationshipsRe, response),
		ExplanationText:  extractHeadingSection(explanationRe, response),
	}

	if diagram, ok := ExtractDiagram(response); ok {
		sections.DiagramSource = diagram
	}
	if sqlCode, ok := extractFence(sqlFenceRe, response); ok {
		sections.SQLSource = sqlCode
	}

	return sections
}

// ExtractDiagram returns the contents of the first mermaid-tagged fenced
// block. Shared with the diagram validation flow, which classifies the
// repair response with the same rule used here.
func ExtractDiagram(text string) (string, bool) {
	return extractFence(mermaidFenceRe, text)
}

// extractSummary returns the text before the first fenced code block with
// the redundant diagram heading phrase removed
func extractSummary(response string) string {
	summary := strings.SplitN(response, "```", 2)[0]
	summary = strings.ReplaceAll(summary, "ERD Diagram", "")
	summary = strings.ReplaceAll(summary, "ER Diagram", "")
	return strings.TrimSpace(summary)
}

func extractFence(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// extractHeadingSection returns the text following a heading line up to the
// next top-level heading or end of text
func extractHeadingSection(re *regexp.Regexp, text string) string {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
