package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schema-modeler/cache"
	"schema-modeler/config"
	"schema-modeler/internal/database"
	"schema-modeler/internal/openai"
	"schema-modeler/internal/parser"
)

// TextGenerator is the model call surface the pipeline depends on
type TextGenerator interface {
	GenerateDataModel(ctx context.Context, metadata database.TableMetadata, kind openai.SchemaKind) (string, error)
	RepairDiagram(ctx context.Context, diagramSource string) (string, error)
	AnswerSchemaQuestion(ctx context.Context, question string, metadata database.TableMetadata) (string, error)
}

// MetadataSource is the bulk metadata query surface the pipeline depends on
type MetadataSource interface {
	FetchAllColumns(ctx context.Context) ([]database.ColumnRow, error)
	Schema() string
}

// Generator orchestrates one generation interaction: metadata fetch, model
// call, section extraction, and the single diagram validation attempt
type Generator struct {
	config *config.Config
	store  MetadataSource
	cache  *cache.Cache
	model  TextGenerator
}

// ValidationResult is the classified outcome of the diagram validation call
type ValidationResult struct {
	IsValid        bool   `json:"is_valid"`
	RepairedSource string `json:"repaired_source,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// ModelResult contains the complete outcome of one generation request
type ModelResult struct {
	ID            string                `json:"id"`
	Tables        []string              `json:"tables"`
	SchemaKind    openai.SchemaKind     `json:"schema_kind"`
	RawResponse   string                `json:"raw_response"`
	Sections      parser.ParsedSections `json:"sections"`
	Validation    *ValidationResult     `json:"validation,omitempty"`
	DiagramSource string                `json:"diagram_source,omitempty"`
	DiagramHTML   string                `json:"diagram_html,omitempty"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// NewGenerator creates a new generator
func NewGenerator(cfg *config.Config, store MetadataSource, metadataCache *cache.Cache, model TextGenerator) *Generator {
	return &Generator{
		config: cfg,
		store:  store,
		cache:  metadataCache,
		model:  model,
	}
}

// fetchRows returns the bulk metadata rows, served from cache inside the TTL
func (g *Generator) fetchRows(ctx context.Context) ([]database.ColumnRow, error) {
	schema := g.store.Schema()

	if rows, ok := g.cache.GetColumns(schema); ok {
		return rows, nil
	}

	rows, err := g.store.FetchAllColumns(ctx)
	if err != nil {
		return nil, err
	}

	g.cache.SetColumns(schema, rows)
	return rows, nil
}

// ListTables returns the sorted table names of the active schema
func (g *Generator) ListTables(ctx context.Context) ([]string, error) {
	rows, err := g.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	return database.TableNames(rows), nil
}

// FetchMetadata builds the per-request metadata for the selected tables
func (g *Generator) FetchMetadata(ctx context.Context, tables []string) (database.TableMetadata, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("at least one table must be selected")
	}

	rows, err := g.fetchRows(ctx)
	if err != nil {
		return nil, err
	}

	metadata := database.GroupByTable(rows, tables)
	for _, table := range tables {
		if len(metadata[table]) == 0 {
			return nil, fmt.Errorf("unknown table: %s", table)
		}
	}

	return metadata, nil
}

// GenerateDataModel runs the full generation chain for the selected tables
func (g *Generator) GenerateDataModel(ctx context.Context, tables []string, kind openai.SchemaKind) (*ModelResult, error) {
	metadata, err := g.FetchMetadata(ctx, tables)
	if err != nil {
		return nil, err
	}

	response, err := g.model.GenerateDataModel(ctx, metadata, kind)
	if err != nil {
		return nil, fmt.Errorf("model generation failed: %v", err)
	}

	sections := parser.Parse(response)

	result := &ModelResult{
		ID:          uuid.New().String(),
		Tables:      tables,
		SchemaKind:  kind,
		RawResponse: response,
		Sections:    sections,
		GeneratedAt: time.Now(),
	}

	if sections.DiagramSource != "" {
		validation := g.ValidateDiagram(ctx, sections.DiagramSource)
		result.Validation = &validation

		// The raw source stays available for manual inspection even when
		// the validation attempt fails outright.
		result.DiagramSource = sections.DiagramSource
		if validation.RepairedSource != "" {
			result.DiagramSource = validation.RepairedSource
		}
		result.DiagramHTML = renderStandaloneHTML(result.DiagramSource)
	}

	return result, nil
}

// ValidateDiagram submits the diagram source for confirmation or repair and
// classifies the response. Validation happens at most once per generation;
// a repaired source is not re-validated.
func (g *Generator) ValidateDiagram(ctx context.Context, diagramSource string) ValidationResult {
	response, err := g.model.RepairDiagram(ctx, diagramSource)
	if err != nil {
		return ValidationResult{IsValid: false, ErrorMessage: err.Error()}
	}

	// A returned mermaid fence counts as a correction even when the model
	// sent the input back unchanged. "Already valid" and "was corrected"
	// are deliberately not distinguished here.
	if repaired, ok := parser.ExtractDiagram(response); ok {
		return ValidationResult{IsValid: true, RepairedSource: repaired}
	}

	if containsValidToken(response) {
		return ValidationResult{IsValid: true, RepairedSource: diagramSource}
	}

	return ValidationResult{IsValid: false, ErrorMessage: "could not extract valid Mermaid code"}
}

// AskSchemaQuestion answers a free-form question about the selected tables
func (g *Generator) AskSchemaQuestion(ctx context.Context, question string, tables []string) (string, error) {
	metadata, err := g.FetchMetadata(ctx, tables)
	if err != nil {
		return "", err
	}

	answer, err := g.model.AnswerSchemaQuestion(ctx, question, metadata)
	if err != nil {
		return "", fmt.Errorf("model question failed: %v", err)
	}

	return answer, nil
}
