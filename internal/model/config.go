package model

import (
	"os"
	"path/filepath"
	"time"
)

// OracleConfig holds LLM oracle settings.
type OracleConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "stub", ""
	Provider string `yaml:"provider" json:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" json:"model"`

	// APIKey for OpenAI/Anthropic
	APIKey string `yaml:"api_key" json:"-"`

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Timeout per oracle call
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Proxy settings
	HTTPProxy  string `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" json:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" json:"no_proxy"`
}

// TraversalConfig holds the scheduler settings.
type TraversalConfig struct {
	// MaxDepth bounds the BFS; no node deeper than MaxDepth-1 is evaluated.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// RelevanceThreshold T: a node is included when its score is strictly
	// greater than T. 0.3 explores permissively, 0.65 includes strictly.
	RelevanceThreshold float64 `yaml:"relevance_threshold" json:"relevance_threshold"`

	// MaxBatchSize caps the number of nodes per oracle call.
	MaxBatchSize int `yaml:"max_batch_size" json:"max_batch_size"`

	// ChunkInterval is the mandatory pause between oracle chunks.
	ChunkInterval time.Duration `yaml:"chunk_interval" json:"chunk_interval"`
}

// StoreConfig holds the single-slot result store settings.
type StoreConfig struct {
	// Dir is where the latest result document is persisted.
	Dir string `yaml:"dir" json:"dir"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Config aggregates all lexnav settings.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle" json:"oracle"`
	Traversal TraversalConfig `yaml:"traversal" json:"traversal"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Verbose   bool            `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:  "",
			Timeout:   60 * time.Second,
			MaxTokens: 4000,
		},
		Traversal: TraversalConfig{
			MaxDepth:           8,
			RelevanceThreshold: 0.3,
			MaxBatchSize:       5,
			ChunkInterval:      time.Second,
		},
		Store: StoreConfig{
			Dir: defaultStoreDir(),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "lexnav")
	}
	return filepath.Join(home, ".lexnav", "results")
}
