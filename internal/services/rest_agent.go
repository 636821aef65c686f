package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"noelserdna/cyber-cv-analyzer/internal/config"
)

const generativeLanguageBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// restAgentService talks to the generativelanguage API directly, without the
// SDK. Same AgentClient contract and error kinds as the SDK transport.
type restAgentService struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int32
	temperature float32
	httpClient  *http.Client
}

func NewRESTAgentService(cfg config.AgentConfig) AgentClient {
	return newRESTAgentService(cfg, generativeLanguageBaseURL)
}

func newRESTAgentService(cfg config.AgentConfig, baseURL string) *restAgentService {
	return &restAgentService{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		// No client timeout: the per-request deadline comes in via ctx.
		httpClient: &http.Client{Timeout: 0},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type generateContentRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze implements AgentClient.
func (r *restAgentService) Analyze(ctx context.Context, prompt string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     r.temperature,
			MaxOutputTokens: r.maxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, r.model, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("generate content: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrAPIFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyUpstreamStatus(resp.StatusCode, truncateForLog(string(body), 200))
	}

	var result generateContentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrAPIFailure, err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrAPIFailure)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate text", ErrAPIFailure)
	}

	return text, nil
}

// truncateForLog keeps upstream bodies short enough for log lines.
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
