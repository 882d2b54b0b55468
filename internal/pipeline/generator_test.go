package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-modeler/cache"
	"schema-modeler/config"
	"schema-modeler/internal/database"
	"schema-modeler/internal/openai"
)

type stubModel struct {
	generateResponse string
	generateErr      error
	repairResponse   string
	repairErr        error
	answer           string
	answerErr        error

	generateCalls   int
	repairCalls     int
	lastRepairInput string
}

func (m *stubModel) GenerateDataModel(_ context.Context, _ database.TableMetadata, _ openai.SchemaKind) (string, error) {
	m.generateCalls++
	return m.generateResponse, m.generateErr
}

func (m *stubModel) RepairDiagram(_ context.Context, diagramSource string) (string, error) {
	m.repairCalls++
	m.lastRepairInput = diagramSource
	return m.repairResponse, m.repairErr
}

func (m *stubModel) AnswerSchemaQuestion(_ context.Context, _ string, _ database.TableMetadata) (string, error) {
	return m.answer, m.answerErr
}

type stubSource struct {
	rows  []database.ColumnRow
	err   error
	calls int
}

func (s *stubSource) FetchAllColumns(_ context.Context) ([]database.ColumnRow, error) {
	s.calls++
	return s.rows, s.err
}

func (s *stubSource) Schema() string {
	return "public"
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{Enabled: true, TTLMinutes: 5},
	}
}

func testRows() []database.ColumnRow {
	return []database.ColumnRow{
		{Table: "customers", Column: "id", DataType: "integer", Position: 1},
		{Table: "customers", Column: "name", DataType: "text", Position: 2},
		{Table: "orders", Column: "id", DataType: "integer", Position: 1},
		{Table: "orders", Column: "customer_id", DataType: "integer", Position: 2},
		{Table: "orders", Column: "total", DataType: "numeric", Position: 3},
	}
}

func newTestGenerator(source *stubSource, model *stubModel) *Generator {
	cfg := testConfig()
	return NewGenerator(cfg, source, cache.NewCache(cfg), model)
}

func TestListTables(t *testing.T) {
	g := newTestGenerator(&stubSource{rows: testRows()}, &stubModel{})

	tables, err := g.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)
}

func TestListTables_ServedFromCacheWithinTTL(t *testing.T) {
	source := &stubSource{rows: testRows()}
	g := newTestGenerator(source, &stubModel{})

	_, err := g.ListTables(context.Background())
	require.NoError(t, err)
	_, err = g.ListTables(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
}

func TestFetchMetadata(t *testing.T) {
	g := newTestGenerator(&stubSource{rows: testRows()}, &stubModel{})

	metadata, err := g.FetchMetadata(context.Background(), []string{"orders"})
	require.NoError(t, err)

	require.Len(t, metadata, 1)
	assert.Equal(t, []database.Column{
		{Name: "id", Type: "integer"},
		{Name: "customer_id", Type: "integer"},
		{Name: "total", Type: "numeric"},
	}, metadata["orders"])
}

func TestFetchMetadata_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source *stubSource
		tables []string
		errMsg string
	}{
		{
			name:   "empty selection",
			source: &stubSource{rows: testRows()},
			tables: nil,
			errMsg: "at least one table",
		},
		{
			name:   "unknown table",
			source: &stubSource{rows: testRows()},
			tables: []string{"orders", "missing"},
			errMsg: "unknown table: missing",
		},
		{
			name:   "connectivity failure",
			source: &stubSource{err: &database.ConnectivityError{Err: fmt.Errorf("dial refused")}},
			tables: []string{"orders"},
			errMsg: "metadata source unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(tt.source, &stubModel{})

			_, err := g.FetchMetadata(context.Background(), tt.tables)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateDiagram_Classification(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected ValidationResult
	}{
		{
			name:     "fenced block counts as a correction",
			response: "```mermaid\nerDiagram\n```",
			expected: ValidationResult{IsValid: true, RepairedSource: "erDiagram"},
		},
		{
			name:     "valid token keeps the original source",
			response: "This is valid.",
			expected: ValidationResult{IsValid: true, RepairedSource: "erDiagram\n    A ||--o{ B : has"},
		},
		{
			name:     "neither fence nor token",
			response: "I cannot parse this.",
			expected: ValidationResult{IsValid: false, ErrorMessage: "could not extract valid Mermaid code"},
		},
		{
			name:     "transport failure is converted, not propagated",
			err:      fmt.Errorf("OpenAI API error: timeout"),
			expected: ValidationResult{IsValid: false, ErrorMessage: "OpenAI API error: timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &stubModel{repairResponse: tt.response, repairErr: tt.err}
			g := newTestGenerator(&stubSource{rows: testRows()}, model)

			result := g.ValidateDiagram(context.Background(), "erDiagram\n    A ||--o{ B : has")
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateDiagram_Deterministic(t *testing.T) {
	model := &stubModel{repairResponse: "```mermaid\nerDiagram\n```"}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	first := g.ValidateDiagram(context.Background(), "erDiagram")
	second := g.ValidateDiagram(context.Background(), "erDiagram")
	assert.Equal(t, first, second)
}

const generationResponse = "A compact dimensional model. ERD Diagram\n\n" +
	"```mermaid\nerDiagram\n    CUSTOMERS ||--o{ ORDERS : places\n```\n\n" +
	"```sql\nCREATE TABLE dim_customers (id INT);\n```\n\n" +
	"### 5. Relationships and Join Logic\njoin on customer_id\n\n" +
	"### 6. Brief Explanation\none fact, one dimension\n"

func TestGenerateDataModel(t *testing.T) {
	model := &stubModel{
		generateResponse: generationResponse,
		repairResponse:   "The diagram is valid.",
	}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	result, err := g.GenerateDataModel(context.Background(), []string{"orders", "customers"}, openai.SchemaDimensional)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, generationResponse, result.RawResponse)
	assert.Equal(t, "A compact dimensional model.", result.Sections.Summary)
	assert.Equal(t, "CREATE TABLE dim_customers (id INT);", result.Sections.SQLSource)
	assert.Equal(t, "join on customer_id", result.Sections.RelationshipText)
	assert.Equal(t, "one fact, one dimension", result.Sections.ExplanationText)

	diagram := "erDiagram\n    CUSTOMERS ||--o{ ORDERS : places"
	assert.Equal(t, diagram, result.Sections.DiagramSource)
	assert.Equal(t, diagram, result.DiagramSource)
	assert.Contains(t, result.DiagramHTML, diagram)
	assert.Contains(t, result.DiagramHTML, "mermaid.initialize")

	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.IsValid)

	// validation is attempted exactly once per generation
	assert.Equal(t, 1, model.repairCalls)
	assert.Equal(t, diagram, model.lastRepairInput)
}

func TestGenerateDataModel_RepairedSourceReplacesOriginal(t *testing.T) {
	model := &stubModel{
		generateResponse: generationResponse,
		repairResponse:   "```mermaid\nerDiagram\n    CUSTOMERS ||--o{ ORDERS : \"places\"\n```",
	}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	result, err := g.GenerateDataModel(context.Background(), []string{"orders"}, openai.SchemaDimensional)
	require.NoError(t, err)

	assert.Equal(t, "erDiagram\n    CUSTOMERS ||--o{ ORDERS : \"places\"", result.DiagramSource)
	// the raw extraction is preserved alongside the repaired source
	assert.Equal(t, "erDiagram\n    CUSTOMERS ||--o{ ORDERS : places", result.Sections.DiagramSource)
	assert.Equal(t, 1, model.repairCalls)
}

func TestGenerateDataModel_ValidationFailureKeepsRawSource(t *testing.T) {
	model := &stubModel{
		generateResponse: generationResponse,
		repairErr:        fmt.Errorf("OpenAI API error: auth"),
	}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	result, err := g.GenerateDataModel(context.Background(), []string{"orders"}, openai.SchemaDimensional)
	require.NoError(t, err)

	require.NotNil(t, result.Validation)
	assert.False(t, result.Validation.IsValid)
	assert.Contains(t, result.Validation.ErrorMessage, "OpenAI API error")
	assert.Equal(t, "erDiagram\n    CUSTOMERS ||--o{ ORDERS : places", result.DiagramSource)
}

func TestGenerateDataModel_NoDiagramSkipsValidation(t *testing.T) {
	model := &stubModel{generateResponse: "Only a summary paragraph."}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	result, err := g.GenerateDataModel(context.Background(), []string{"orders"}, openai.SchemaNormalized)
	require.NoError(t, err)

	assert.Nil(t, result.Validation)
	assert.Empty(t, result.DiagramSource)
	assert.Empty(t, result.DiagramHTML)
	assert.Equal(t, 0, model.repairCalls)
}

func TestGenerateDataModel_ModelFailure(t *testing.T) {
	model := &stubModel{generateErr: fmt.Errorf("OpenAI API error: quota")}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	_, err := g.GenerateDataModel(context.Background(), []string{"orders"}, openai.SchemaDimensional)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model generation failed")
}

func TestAskSchemaQuestion(t *testing.T) {
	model := &stubModel{answer: "orders.customer_id references customers.id"}
	g := newTestGenerator(&stubSource{rows: testRows()}, model)

	answer, err := g.AskSchemaQuestion(context.Background(), "How do orders relate to customers?", []string{"orders", "customers"})
	require.NoError(t, err)
	assert.Equal(t, "orders.customer_id references customers.id", answer)
}

func TestContainsValidToken(t *testing.T) {
	assert.True(t, containsValidToken("The code is VALID."))
	assert.True(t, containsValidToken("invalid")) // fence check runs first, so this is tolerated
	assert.False(t, containsValidToken("cannot say"))
}
