package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
	"github.com/ppiankov/lexnav/internal/pipeline"
	"github.com/ppiankov/lexnav/internal/store"
)

// oracle flags shared by traverse and serve
var (
	oracleProvider string
	oracleModel    string
	oracleBaseURL  string
	oracleTimeout  time.Duration
	storeDir       string
)

// loadConfig merges defaults, the config file/env (via viper) and flags.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("oracle.provider"); v != "" {
		cfg.Oracle.Provider = v
	}
	if v := viper.GetString("oracle.model"); v != "" {
		cfg.Oracle.Model = v
	}
	if v := viper.GetString("oracle.base_url"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := viper.GetDuration("oracle.timeout"); v > 0 {
		cfg.Oracle.Timeout = v
	}
	if v := viper.GetString("oracle.api_key"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := viper.GetInt("oracle.max_tokens"); v > 0 {
		cfg.Oracle.MaxTokens = v
	}
	cfg.Oracle.HTTPProxy = viper.GetString("oracle.http_proxy")
	cfg.Oracle.HTTPSProxy = viper.GetString("oracle.https_proxy")
	cfg.Oracle.NoProxy = viper.GetString("oracle.no_proxy")
	if v := viper.GetInt("traversal.max_batch_size"); v > 0 {
		cfg.Traversal.MaxBatchSize = v
	}
	if v := viper.GetDuration("traversal.chunk_interval"); v > 0 {
		cfg.Traversal.ChunkInterval = v
	}
	if v := viper.GetInt("traversal.max_depth"); v > 0 {
		cfg.Traversal.MaxDepth = v
	}
	if v := viper.GetFloat64("traversal.relevance_threshold"); v > 0 {
		cfg.Traversal.RelevanceThreshold = v
	}
	if v := viper.GetString("store.dir"); v != "" {
		cfg.Store.Dir = v
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	cfg.Verbose = verbose

	// Flags win over file and environment.
	if oracleProvider != "" {
		cfg.Oracle.Provider = oracleProvider
	}
	if oracleModel != "" {
		cfg.Oracle.Model = oracleModel
	}
	if oracleBaseURL != "" {
		cfg.Oracle.BaseURL = oracleBaseURL
	}
	if oracleTimeout > 0 {
		cfg.Oracle.Timeout = oracleTimeout
	}
	if storeDir != "" {
		cfg.Store.Dir = storeDir
	}
	return cfg
}

// buildPipeline assembles the engine for one document file.
func buildPipeline(cfg *model.Config, documentPath string, log *zap.Logger) (*pipeline.Pipeline, error) {
	// API keys may live in a .env file in the working directory.
	_ = godotenv.Load()

	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = oracle.APIKeyFromEnv(cfg.Oracle.Provider)
	}

	provider, err := oracle.NewProvider(oracle.ConfigFromModel(cfg.Oracle))
	if err != nil {
		return nil, fmt.Errorf("initialize oracle provider: %w", err)
	}
	if provider == nil {
		fmt.Fprintln(os.Stderr, "Warning: no oracle provider configured; every node will fall back to score 0")
	}

	tree, err := pipeline.LoadDocument(documentPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded document: %d nodes, %d roots\n", tree.Size(), len(tree.RootNodes))
	}

	return pipeline.New(cfg, tree, provider, store.NewLayeredStore(cfg.Store.Dir), log), nil
}
