package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"StoryBuilder/internal/backend"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls the generateContent endpoint.
type Gemini struct {
	instruments
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	params     Params
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.observe(ctx, func(ctx context.Context) (string, error) {
		if g.apiKey == "" {
			return "", ErrMissingCredential
		}

		reqBody := backend.NewGeminiRequest(prompt, backend.GeminiGenerationConfig{
			Temperature:     g.params.Temperature,
			TopP:            g.params.TopP,
			MaxOutputTokens: g.params.MaxTokens,
		})
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("content-type", "application/json")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", newUpstreamError(resp.StatusCode, string(body))
		}

		var apiResp backend.GeminiResponse
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
