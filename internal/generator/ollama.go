package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const ollamaBaseURL = "http://localhost:11434"

// Ollama calls a local Ollama server. It needs no credential.
type Ollama struct {
	instruments
	client *api.Client
	model  string
	params Params
}

// NewOllama creates a client for baseURL; a trailing /v1 is dropped.
func NewOllama(inst instruments, httpClient *http.Client, baseURL, model string, params Params) (*Ollama, error) {
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama url %q: %w", baseURL, err)
	}
	return &Ollama{
		instruments: inst,
		client:      api.NewClient(u, httpClient),
		model:       model,
		params:      params,
	}, nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	return o.observe(ctx, func(ctx context.Context) (string, error) {
		stream := false
		req := &api.GenerateRequest{
			Model:  o.model,
			Prompt: prompt,
			Stream: &stream,
			Options: map[string]any{
				"temperature": o.params.Temperature,
				"top_p":       o.params.TopP,
				"num_predict": o.params.MaxTokens,
			},
		}

		var sb strings.Builder
		err := o.client.Generate(ctx, req, func(r api.GenerateResponse) error {
			sb.WriteString(r.Response)
			return nil
		})
		if err != nil {
			var statusErr api.StatusError
			if errors.As(err, &statusErr) {
				return "", newUpstreamError(statusErr.StatusCode, statusErr.ErrorMessage)
			}
			return "", fmt.Errorf("failed to send request (is Ollama running?): %w", err)
		}

		if sb.Len() == 0 {
			return "", ErrMalformedResponse
		}
		return sb.String(), nil
	})
}
