package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"schema-modeler/config"
	"schema-modeler/internal/database"
)

// Client wraps the OpenAI client with rate limiting and error handling
type Client struct {
	client      *openai.Client
	config      *config.Config
	rateLimiter *RateLimiter
}

// NewClient creates a new OpenAI client with configuration
func NewClient(cfg *config.Config) *Client {
	client := openai.NewClient(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		config := openai.DefaultConfig(cfg.OpenAI.APIKey)
		config.BaseURL = cfg.OpenAI.BaseURL
		client = openai.NewClientWithConfig(config)
	}

	rateLimiter := NewRateLimiter(
		cfg.RateLimiting.RequestsPerMinute,
		cfg.RateLimiting.RequestsPerDay,
	)

	return &Client{
		client:      client,
		config:      cfg,
		rateLimiter: rateLimiter,
	}
}

// GenerateDataModel asks the model for a full data model response following
// the six-section output contract
func (c *Client) GenerateDataModel(ctx context.Context, metadata database.TableMetadata, kind SchemaKind) (string, error) {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %v", err)
	}

	prompt := buildGenerationPrompt(string(metadataJSON), kind)

	return c.generate(ctx,
		"You are an expert PostgreSQL data modeler. Follow the requested output structure exactly.",
		prompt,
	)
}

// RepairDiagram asks the model to confirm the diagram source is valid or
// return a corrected version. The raw response text is returned for the
// caller to classify.
func (c *Client) RepairDiagram(ctx context.Context, diagramSource string) (string, error) {
	prompt := buildValidationPrompt(diagramSource)

	return c.generate(ctx,
		"You are a Mermaid.js expert. Return only what is asked for.",
		prompt,
	)
}

// AnswerSchemaQuestion answers a free-form question about the selected tables
func (c *Client) AnswerSchemaQuestion(ctx context.Context, question string, metadata database.TableMetadata) (string, error) {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %v", err)
	}

	prompt := buildQuestionPrompt(question, string(metadataJSON))

	return c.generate(ctx,
		"You are a PostgreSQL metadata expert. Be accurate and concise.",
		prompt,
	)
}

// generate sends one chat completion request and returns the response text
func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %v", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.OpenAI.Model,
		Temperature: c.config.OpenAI.Temperature,
		MaxTokens:   c.config.OpenAI.MaxTokensPerRequest,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	})

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %v", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
