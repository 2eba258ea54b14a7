package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("GENERATIVE_API_KEY", "secret")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendGemini, cfg.Backend)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.Model)
	assert.Equal(t, "secret", cfg.Credential)
	assert.Equal(t, 10, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("STORY_BACKEND", "Anthropic")
	t.Setenv("STORY_ADDR", ":9999")
	t.Setenv("STORY_MODEL", "claude-x")
	t.Setenv("STORY_ALLOWED_ORIGINS", "http://classroom.example,https://school.example")
	t.Setenv("ANTHROPIC_API_KEY", "k")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://classroom.example", "https://school.example"}, cfg.AllowedOrigins)
	assert.Equal(t, BackendAnthropic, cfg.Backend)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "claude-x", cfg.Model)
	assert.Equal(t, "k", cfg.Credential)
}

func TestLoadServerMissingCredentialIsDeferred(t *testing.T) {
	t.Setenv("STORY_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Empty(t, cfg.Credential)
}

func TestLoadServerRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORY_BACKEND", "parrot")
	_, err := LoadServer()
	assert.Error(t, err)
}

func TestLoadServerRejectsBadNumber(t *testing.T) {
	t.Setenv("STORY_SHUTDOWN_TIMEOUT_SECONDS", "lots")
	_, err := LoadServer()
	assert.Error(t, err)
}

func TestOllamaNeedsNoCredential(t *testing.T) {
	assert.Empty(t, CredentialEnv(BackendOllama))
	t.Setenv("STORY_BACKEND", "ollama")
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "llama3:latest", cfg.Model)
}
