package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendGemini    = "gemini"
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendGrok      = "grok"
	BackendOllama    = "ollama"
)

// Fixed sampling parameters sent with every generation request. They are not
// configurable.
const (
	Temperature     = 0.8
	TopP            = 1.0
	MaxOutputTokens = 150
)

// GeneratePath is the route of the generation proxy.
const GeneratePath = "/api/generate-story"

// Config holds the terminal client configuration
type Config struct {
	Endpoint   string // Generation proxy URL; empty uses the placeholder story only
	ScriptPath string // Optional YAML script replacing the built-in one
	Theme      string
	LogDir     string
	Debug      bool
	Offline    bool // Skip the proxy and always use the placeholder story
	Plain      bool // Line-oriented chat instead of the full-screen UI
}

// ServerConfig holds the story server configuration, read from STORY_* variables
type ServerConfig struct {
	Addr            string   `envconfig:"ADDR" default:":8080"`
	Backend         string   `envconfig:"BACKEND" default:"gemini"`
	Model           string   `envconfig:"MODEL"`
	BaseURL         string   `envconfig:"BASE_URL"`
	ScriptPath      string   `envconfig:"SCRIPT"`
	LogDir          string   `envconfig:"LOG_DIR" default:"logs"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS"` // Extra browser origins for /ws; same-host is always allowed

	// Credential is read from the backend's own variable, never from STORY_*.
	Credential string `ignored:"true"`
}

// credentialEnv maps each backend to the variable holding its key.
var credentialEnv = map[string]string{
	BackendGemini:    "GENERATIVE_API_KEY",
	BackendAnthropic: "ANTHROPIC_API_KEY",
	BackendOpenAI:    "OPENAI_API_KEY",
	BackendGrok:      "GROK_API_KEY",
}

// CredentialEnv returns the variable name holding backend's key, or "" when
// the backend needs none.
func CredentialEnv(backend string) string { return credentialEnv[backend] }

// DefaultModel returns the model used when STORY_MODEL is empty.
func DefaultModel(backend string) string {
	switch backend {
	case BackendGemini:
		return "gemini-1.5-flash-latest"
	case BackendAnthropic:
		return "claude-sonnet-4-20250514"
	case BackendOpenAI:
		return "gpt-4o-mini"
	case BackendGrok:
		return "grok-2-latest"
	case BackendOllama:
		return "llama3:latest"
	default:
		return ""
	}
}

// LoadServer reads the server configuration from the environment.
// A missing credential is not an error here: the proxy reports it per request.
func LoadServer() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("story", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	cfg.Backend = strings.ToLower(cfg.Backend)
	if _, ok := credentialEnv[cfg.Backend]; !ok && cfg.Backend != BackendOllama {
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Backend)
	}
	if name := CredentialEnv(cfg.Backend); name != "" {
		cfg.Credential = os.Getenv(name)
	}
	return &cfg, nil
}
