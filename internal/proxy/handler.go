// Package proxy serves the story generation endpoint in front of an upstream
// text-generation service.
package proxy

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"StoryBuilder/internal/generator"
	"StoryBuilder/internal/story"
)

const maxBodyBytes = 1 << 20

// Outcome labels of storybuilder_generate_requests_total.
const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeConfig     = "config_error"
	outcomeUpstream   = "upstream_error"
	outcomeInvalid    = "invalid_response"
	outcomeFailed     = "failed"
)

// Handler answers POST {"prompt"} with {"story"} or {"error"}.
type Handler struct {
	gen     generator.Generator
	backend string
	logger  *slog.Logger
	metrics *Metrics
}

// NewHandler creates the generation handler. metrics may be nil.
func NewHandler(gen generator.Generator, backend string, logger *slog.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{gen: gen, backend: backend, logger: logger, metrics: metrics}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.count(outcomeBadRequest)
		writeJSON(w, http.StatusMethodNotAllowed, story.GenerateResponse{Error: "Method not allowed"})
		return
	}

	var req story.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Prompt == "" {
		h.count(outcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, story.GenerateResponse{Error: "Prompt is required"})
		return
	}

	start := time.Now()
	text, err := h.gen.Generate(r.Context(), req.Prompt)
	if h.metrics != nil {
		h.metrics.duration.WithLabelValues(h.backend).Observe(time.Since(start).Seconds())
	}

	var upErr *generator.UpstreamError
	switch {
	case err == nil:
		h.count(outcomeOK)
		writeJSON(w, http.StatusOK, story.GenerateResponse{Story: strings.TrimSpace(text)})
	case errors.Is(err, generator.ErrMissingCredential):
		h.logger.Error("generation credential is not set", "backend", h.backend)
		h.count(outcomeConfig)
		writeJSON(w, http.StatusInternalServerError, story.GenerateResponse{Error: "Server configuration error"})
	case errors.As(err, &upErr):
		h.logger.Error("upstream API error", "backend", h.backend, "status", upErr.StatusCode, "body", upErr.Body)
		h.count(outcomeUpstream)
		writeJSON(w, upErr.StatusCode, story.GenerateResponse{Error: upErr.Error()})
	case errors.Is(err, generator.ErrMalformedResponse):
		h.logger.Error("invalid response structure from upstream", "backend", h.backend)
		h.count(outcomeInvalid)
		writeJSON(w, http.StatusInternalServerError, story.GenerateResponse{Error: "Invalid response from AI service"})
	default:
		h.logger.Error("story generation error", "backend", h.backend, "error", err)
		h.count(outcomeFailed)
		writeJSON(w, http.StatusInternalServerError, story.GenerateResponse{Error: "Failed to generate story", Details: err.Error()})
	}
}

func (h *Handler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.requests.WithLabelValues(h.backend, outcome).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
