package oracle

import (
	"fmt"
	"strings"
)

// NewProvider creates a new oracle provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	if config.APIKey == "" {
		config.APIKey = APIKeyFromEnv(provider)
	}

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "stub":
		return NewStubProvider(), nil

	case "":
		// No provider configured - return nil (oracle disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, anthropic, ollama, stub)", config.Provider)
	}
}
