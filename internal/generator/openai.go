package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openaigo "github.com/sashabaranov/go-openai"
)

const grokBaseURL = "https://api.x.ai/v1"

// OpenAI calls an OpenAI-compatible chat completions API.
type OpenAI struct {
	instruments
	client *openaigo.Client
	model  string
	apiKey string
	params Params
}

// NewOpenAI creates a client; an empty baseURL targets api.openai.com.
func NewOpenAI(inst instruments, httpClient *http.Client, baseURL, model, apiKey string, params Params) *OpenAI {
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient
	return &OpenAI{
		instruments: inst,
		client:      openaigo.NewClientWithConfig(cfg),
		model:       model,
		apiKey:      apiKey,
		params:      params,
	}
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	return o.observe(ctx, func(ctx context.Context) (string, error) {
		if o.apiKey == "" {
			return "", ErrMissingCredential
		}

		resp, err := o.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
			Model: o.model,
			Messages: []openaigo.ChatCompletionMessage{
				{Role: openaigo.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: float32(o.params.Temperature),
			TopP:        float32(o.params.TopP),
			MaxTokens:   o.params.MaxTokens,
		})
		if err != nil {
			return "", openAIError(err)
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return "", ErrMalformedResponse
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// openAIError maps status-carrying client errors onto UpstreamError.
func openAIError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return newUpstreamError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return newUpstreamError(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
