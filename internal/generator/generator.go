// Package generator talks to the upstream text-generation services.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"StoryBuilder/internal/config"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Params are the sampling parameters sent with every request.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

var (
	ErrMissingCredential = errors.New("generation credential not configured")
	ErrMalformedResponse = errors.New("response carries no generated text")
)

// UpstreamError is a non-success status returned by the generation service.
type UpstreamError struct {
	StatusCode int
	Status     string // "404 Not Found"
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API error: %s", e.Status)
}

func newUpstreamError(code int, body string) *UpstreamError {
	return &UpstreamError{StatusCode: code, Status: fmt.Sprintf("%d %s", code, http.StatusText(code)), Body: body}
}

// Option configures a Generator.
type Option func(*options)

type options struct {
	httpClient *http.Client
	tracer     trace.Tracer
	meter      metric.Meter
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTelemetry sets the tracer and meter used for every call.
func WithTelemetry(tracer trace.Tracer, meter metric.Meter) Option {
	return func(o *options) {
		o.tracer = tracer
		o.meter = meter
	}
}

// New builds the Generator selected by cfg.Backend.
func New(cfg *config.ServerConfig, opts ...Option) (Generator, error) {
	o := options{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tracer:     otel.Tracer("storybuilder"),
		meter:      otel.Meter("storybuilder"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	params := Params{Temperature: config.Temperature, TopP: config.TopP, MaxTokens: config.MaxOutputTokens}
	inst := newInstruments(cfg.Backend, o.tracer, o.meter)

	switch cfg.Backend {
	case config.BackendGemini:
		return &Gemini{
			instruments: inst,
			httpClient:  o.httpClient,
			baseURL:     orDefault(cfg.BaseURL, geminiBaseURL),
			model:       cfg.Model,
			apiKey:      cfg.Credential,
			params:      params,
		}, nil
	case config.BackendAnthropic:
		return &Anthropic{
			instruments: inst,
			httpClient:  o.httpClient,
			baseURL:     orDefault(cfg.BaseURL, anthropicBaseURL),
			model:       cfg.Model,
			apiKey:      cfg.Credential,
			params:      params,
		}, nil
	case config.BackendOpenAI:
		return NewOpenAI(inst, o.httpClient, cfg.BaseURL, cfg.Model, cfg.Credential, params), nil
	case config.BackendGrok:
		return NewOpenAI(inst, o.httpClient, orDefault(cfg.BaseURL, grokBaseURL), cfg.Model, cfg.Credential, params), nil
	case config.BackendOllama:
		return NewOllama(inst, o.httpClient, orDefault(cfg.BaseURL, ollamaBaseURL), cfg.Model, params)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// instruments wraps each upstream call in a span and records its duration.
type instruments struct {
	backend  string
	tracer   trace.Tracer
	duration metric.Float64Histogram
}

func newInstruments(backend string, tracer trace.Tracer, meter metric.Meter) instruments {
	in := instruments{backend: backend, tracer: tracer}
	histogram, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		in.duration = histogram
	}
	return in
}

// observe runs call inside a span named "<backend>_api_call".
func (in instruments) observe(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	ctx, span := in.tracer.Start(ctx, in.backend+"_api_call")
	defer span.End()

	start := time.Now()
	text, err := call(ctx)
	if in.duration != nil {
		in.duration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(attribute.String("backend", in.backend)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	return text, nil
}
