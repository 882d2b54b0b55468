package openai

import (
	"fmt"
	"strings"
)

// SchemaKind is the modeling style flag sent to the generation model
type SchemaKind string

const (
	SchemaDimensional SchemaKind = "Dimensional"
	SchemaNormalized  SchemaKind = "Normalized"
)

// ParseSchemaKind converts user input into a SchemaKind
func ParseSchemaKind(s string) (SchemaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dimensional":
		return SchemaDimensional, nil
	case "normalized":
		return SchemaNormalized, nil
	default:
		return "", fmt.Errorf("unknown schema kind: %q (expected Dimensional or Normalized)", s)
	}
}

// The prompts below and the extraction rules in internal/parser form one
// contract: the section headings and fence tags requested here are exactly
// what the parser searches for. Change them together or not at all.

func buildGenerationPrompt(metadataJSON string, kind SchemaKind) string {
	return fmt.Sprintf(`You are an expert PostgreSQL data modeler. Given this table metadata (in JSON format), generate a consistent response with the following exact structure:

### Output Structure:
1. **Data Model Summary** (Markdown)
2. **Fact and Dimension Table List** (Markdown)
3. **ERD Diagram** - Mermaid `+"`erDiagram`"+` inside a code block
4. **PostgreSQL DDL** - SQL code to create tables (inside `+"```sql"+` block)
5. **Relationships and Join Logic** (SQL or Markdown)
6. **Brief Explanation** - of design decisions

### Requirements:
- Format everything in **Markdown**, with appropriate code blocks.
- Ensure Mermaid is valid and begins with `+"`erDiagram`"+`.
- Keep the structure consistent.

### Metadata:
`+"```json\n%s\n```"+`

Generate a **%s** schema.`, metadataJSON, kind)
}

func buildValidationPrompt(diagramSource string) string {
	return fmt.Sprintf(`You are a Mermaid.js expert.

1. Validate the following Mermaid ER diagram.
2. If it is invalid, fix the syntax and return the corrected version.
3. If it is valid, return it as-is.

Only return the corrected Mermaid code inside a single `+"```mermaid"+` code block.
(strictly enforce v11-compatible ERD syntax)

Here is the code:
`+"```mermaid\n%s\n```", diagramSource)
}

func buildQuestionPrompt(question, metadataJSON string) string {
	return fmt.Sprintf(`You are a PostgreSQL metadata expert. Use the following table metadata to answer this question:

### Metadata:
`+"```json\n%s\n```"+`

### Question:
%s

Be accurate and concise.`, metadataJSON, question)
}
