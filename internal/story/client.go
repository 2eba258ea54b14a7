package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Teller turns a prompt into story text.
type Teller interface {
	Tell(ctx context.Context, prompt string) (string, error)
}

// TellerFunc adapts a function to Teller.
type TellerFunc func(ctx context.Context, prompt string) (string, error)

func (f TellerFunc) Tell(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

// GenerateRequest is the body posted to the generation endpoint.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the endpoint's success body. Error is set on failures.
type GenerateResponse struct {
	Story   string `json:"story,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrEmptyStory is returned when the endpoint answers 2xx without a story.
var ErrEmptyStory = errors.New("invalid response structure from API")

// Client calls the story generation endpoint over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	tracer     trace.Tracer
	duration   metric.Float64Histogram
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTelemetry records a span and a duration sample per request.
func WithTelemetry(tracer trace.Tracer, meter metric.Meter) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
		if meter == nil {
			return
		}
		h, err := meter.Float64Histogram(
			"http.client.request.duration",
			metric.WithDescription("HTTP request duration in milliseconds"),
		)
		if err == nil {
			c.duration = h
		}
	}
}

// NewClient creates a client for the endpoint URL, e.g. http://localhost:8080/api/generate-story.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tell posts the prompt and returns the trimmed story.
func (c *Client) Tell(ctx context.Context, prompt string) (string, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "story_endpoint_call")
		defer span.End()
	}
	start := time.Now()

	jsonData, err := json.Marshal(GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if c.duration != nil {
		c.duration.Record(ctx, float64(time.Since(start).Milliseconds()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	var apiResp GenerateResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	text := strings.TrimSpace(apiResp.Story)
	if text == "" {
		return "", ErrEmptyStory
	}
	return text, nil
}
