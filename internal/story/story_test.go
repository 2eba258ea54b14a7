package story

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testWords = []string{"cat", "fluffy", "classroom", "jumps", "ball", "round", "rolls", "friend", "happy"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildPrompt(t *testing.T) {
	got, err := BuildPrompt(testWords, "Here is the list of words: {words}\n\nGo.")
	require.NoError(t, err)
	assert.Equal(t, "Here is the list of words: cat, fluffy, classroom, jumps, ball, round, rolls, friend, happy\n\nGo.", got)

	again, err := BuildPrompt(testWords, "Here is the list of words: {words}\n\nGo.")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestBuildPromptNeedsNineWords(t *testing.T) {
	_, err := BuildPrompt(testWords[:8], "{words}")
	assert.ErrorIs(t, err, ErrIncompleteWords)
}

func TestPlaceholder(t *testing.T) {
	got := Placeholder(testWords)
	want := "A **fluffy** **cat** in the **classroom** **jumps** over a **round** **ball**. It **rolls** toward a **friend**. Everyone is **happy**.\n\n(The words you chose are now in our story!)"
	assert.Equal(t, want, got)

	for _, w := range testWords {
		assert.Equal(t, 1, strings.Count(got, "**"+w+"**"), w)
	}
	assert.True(t, strings.HasSuffix(got, "\n"+ConfirmationLine))
}

func TestPlaceholderToleratesShortInput(t *testing.T) {
	got := Placeholder(testWords[:2])
	assert.Contains(t, got, "A **fluffy** **cat** in the ****")
	assert.True(t, strings.HasSuffix(got, ConfirmationLine))
}

func TestClientTell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("content-type"))
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tell me", req.Prompt)
		_ = json.NewEncoder(w).Encode(GenerateResponse{Story: "  A **fluffy** **cat** naps.\n"})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Tell(context.Background(), "tell me")
	require.NoError(t, err)
	assert.Equal(t, "A **fluffy** **cat** naps.", got)
}

func TestClientTellFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Server configuration error"}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"story":`))
			},
		},
		{
			name: "missing story",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"text":"hello"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewClient(srv.URL).Tell(context.Background(), "p")
			assert.Error(t, err)
		})
	}
}

func TestClientTellNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Tell(context.Background(), "p")
	assert.Error(t, err)
}

type mockTeller struct {
	mock.Mock
}

func (m *mockTeller) Tell(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestPipelineUsesTeller(t *testing.T) {
	teller := &mockTeller{}
	teller.On("Tell", mock.Anything, "words: cat, fluffy, classroom, jumps, ball, round, rolls, friend, happy").
		Return("A **fluffy** **cat** ...", nil).Once()

	res, err := NewPipeline(teller, quietLogger()).Compose(context.Background(), testWords, "words: {words}")
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, "A **fluffy** **cat** ...", res.Text)
	teller.AssertExpectations(t)
}

func TestPipelineFallsBack(t *testing.T) {
	teller := &mockTeller{}
	teller.On("Tell", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()

	res, err := NewPipeline(teller, quietLogger()).Compose(context.Background(), testWords, "{words}")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, Placeholder(testWords), res.Text)
	teller.AssertExpectations(t)
}

func TestPipelineRejectsIncompleteWords(t *testing.T) {
	teller := &mockTeller{}
	_, err := NewPipeline(teller, quietLogger()).Compose(context.Background(), testWords[:3], "{words}")
	assert.ErrorIs(t, err, ErrIncompleteWords)
	teller.AssertNotCalled(t, "Tell", mock.Anything, mock.Anything)
}

func TestPipelineWithoutTeller(t *testing.T) {
	res, err := NewPipeline(nil, quietLogger()).Compose(context.Background(), testWords, "{words}")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, Placeholder(testWords), res.Text)
}
