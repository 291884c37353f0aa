package oracle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/lexnav/internal/model"
)

// Provider is the LLM oracle capability: a prompt plus a response schema in,
// a JSON value out. Only the OpenAI provider has the schema enforced (by the
// API's strict response format); the Anthropic and Ollama providers check
// only that the response is valid JSON, and the stub does not check its
// Handler's output. The engine never depends on a specific vendor.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a prompt and returns the schema-constrained JSON value
	Complete(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Schema names and describes the JSON value the oracle must return.
type Schema struct {
	Name       string
	Definition json.RawMessage
}

// Request carries one oracle invocation.
type Request struct {
	// System primes the oracle's role (optional)
	System string

	// Prompt is the full task text
	Prompt string

	// Schema constrains the response (required for engine calls)
	Schema *Schema

	// Model overrides the configured model (optional)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the oracle's schema-constrained output.
type Response struct {
	// JSON is the raw response value; it is guaranteed to parse
	JSON json.RawMessage

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds oracle provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "stub", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout per API request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		MaxTokens: 4000,
	}
}

// ConfigFromModel converts model.OracleConfig to oracle.Config.
func ConfigFromModel(mc model.OracleConfig) Config {
	cfg := Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  mc.HTTPProxy,
		HTTPSProxy: mc.HTTPSProxy,
		NoProxy:    mc.NoProxy,
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	return cfg
}
