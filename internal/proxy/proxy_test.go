package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"StoryBuilder/internal/generator"
	"StoryBuilder/internal/story"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		text       string
		err        error
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "success is trimmed",
			method:     http.MethodPost,
			body:       `{"prompt":"tell"}`,
			text:       "\n A **cat** naps. \n",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"story": "A **cat** naps."},
		},
		{
			name:       "missing credential",
			method:     http.MethodPost,
			body:       `{"prompt":"tell"}`,
			err:        generator.ErrMissingCredential,
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"error": "Server configuration error"},
		},
		{
			name:       "upstream status mirrored",
			method:     http.MethodPost,
			body:       `{"prompt":"tell"}`,
			err:        &generator.UpstreamError{StatusCode: http.StatusTooManyRequests, Status: "429 Too Many Requests"},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   map[string]string{"error": "API error: 429 Too Many Requests"},
		},
		{
			name:       "malformed upstream",
			method:     http.MethodPost,
			body:       `{"prompt":"tell"}`,
			err:        generator.ErrMalformedResponse,
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"error": "Invalid response from AI service"},
		},
		{
			name:       "other failure",
			method:     http.MethodPost,
			body:       `{"prompt":"tell"}`,
			err:        errors.New("dial tcp: refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"error": "Failed to generate story", "details": "dial tcp: refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			gen.On("Generate", mock.Anything, "tell").Return(tt.text, tt.err).Once()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/api/generate-story", strings.NewReader(tt.body))
			NewHandler(gen, "gemini", quiet(), nil).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decode(t, rec))
			gen.AssertExpectations(t)
		})
	}
}

func TestHandlerRejectsBeforeGenerating(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantError  string
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, "Method not allowed"},
		{"missing prompt", http.MethodPost, `{}`, http.StatusBadRequest, "Prompt is required"},
		{"empty prompt", http.MethodPost, `{"prompt":""}`, http.StatusBadRequest, "Prompt is required"},
		{"undecodable body", http.MethodPost, `{"prompt":`, http.StatusBadRequest, "Prompt is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/api/generate-story", strings.NewReader(tt.body))
			NewHandler(gen, "gemini", quiet(), nil).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, map[string]string{"error": tt.wantError}, decode(t, rec))
			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandlerCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, "tell").Return("story", nil).Twice()
	h := NewHandler(gen, "gemini", quiet(), metrics)

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"tell"}`)))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("gemini", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("gemini", outcomeBadRequest)))
}

func TestServerRoutes(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, "tell").Return("A story.", nil)

	reg := prometheus.NewRegistry()
	srv := NewServer(ServerOptions{
		Generate: NewHandler(gen, "gemini", quiet(), NewMetrics(reg)),
		Registry: reg,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// The terminal client talks to the proxy through story.Client.
	got, err := story.NewClient(ts.URL + "/api/generate-story").Tell(context.Background(), "tell")
	require.NoError(t, err)
	assert.Equal(t, "A story.", got)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "storybuilder_generate_requests_total")
}

func TestServerHealthDuringShutdown(t *testing.T) {
	srv := NewServer(ServerOptions{Generate: http.NotFoundHandler()})
	require.NoError(t, srv.Shutdown(context.Background()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
