package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"noelserdna/cyber-cv-analyzer/internal/config"
)

// GeminiService is the SDK-backed transport. It doubles as the embedding
// provider for the profile index.
type GeminiService interface {
	AgentClient
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	embedModel  string
	maxTokens   int32
	temperature float32
}

func NewGeminiService(cfg config.AgentConfig) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   cfg.Model,
		embedModel:  cfg.EmbedModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Analyze implements AgentClient.
func (g *geminiService) Analyze(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		return "", g.classify(ctx, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrAPIFailure)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrAPIFailure)
	}

	return text, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// classify folds SDK failures into the shared upstream error kinds so the
// retry policy treats both transports the same way.
func (g *geminiService) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("generate content: %w", ctx.Err())
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyUpstreamStatus(apiErr.Code, apiErr.Message)
	}

	return fmt.Errorf("%w: %v", ErrAPIFailure, err)
}
