package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"StoryBuilder/internal/backend"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// Anthropic calls the messages API.
type Anthropic struct {
	instruments
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	params     Params
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	return a.observe(ctx, func(ctx context.Context) (string, error) {
		if a.apiKey == "" {
			return "", ErrMissingCredential
		}

		reqBody := backend.AnthropicRequest{
			Model:       a.model,
			MaxTokens:   a.params.MaxTokens,
			Temperature: a.params.Temperature,
			TopP:        a.params.TopP,
			Messages:    []backend.AnthropicMessage{{Role: "user", Content: prompt}},
		}
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("x-api-key", a.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
		req.Header.Set("content-type", "application/json")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return "", newUpstreamError(resp.StatusCode, string(body))
		}

		var apiResp backend.AnthropicResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}

		text := apiResp.Text()
		if text == "" {
			return "", ErrMalformedResponse
		}
		return text, nil
	})
}
