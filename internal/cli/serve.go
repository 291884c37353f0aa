package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lexnav/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the traversal engine over HTTP JSON",
	Long: `Serve loads the legal document once and exposes the engine:

  POST   /api/traversals      run a traversal for a case
  GET    /api/results/latest  fetch the most recent result
  DELETE /api/results/latest  clear the most recent result
  GET    /api/document        the normalised document tree
  GET    /healthz             liveness and oracle availability

Example:
  lexnav serve --document statute.json --addr :8080 --oracle openai`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config: :8080)")
	serveCmd.Flags().StringVar(&documentPath, "document", "", "path to the raw legal document JSON (required)")

	serveCmd.Flags().StringVar(&oracleProvider, "oracle", "", "oracle provider (openai, anthropic, ollama, stub)")
	serveCmd.Flags().StringVar(&oracleModel, "model", "", "oracle model name")
	serveCmd.Flags().StringVar(&oracleBaseURL, "base-url", "", "oracle base URL (e.g. for Ollama)")
	serveCmd.Flags().DurationVar(&oracleTimeout, "oracle-timeout", 0, "timeout per oracle call")
	serveCmd.Flags().StringVar(&storeDir, "store-dir", "", "directory for the persisted latest result")

	_ = serveCmd.MarkFlagRequired("document")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	pipe, err := buildPipeline(cfg, documentPath, log)
	if err != nil {
		return err
	}

	return server.New(pipe, log).Run(cfg.Server.Addr)
}
