package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lexnav/internal/pipeline"
)

var (
	documentPath string
	casePath     string
	outJSON      string
	maxDepth     int
	threshold    float64
	runTimeout   time.Duration
)

// traverseCmd represents the traverse command
var traverseCmd = &cobra.Command{
	Use:   "traverse",
	Short: "Run one guided traversal for a case and print or save the result",
	Long: `Traverse loads a raw legal document, normalises it into the canonical
tree, and runs the oracle-guided breadth-first traversal for the given case.

The result contains the relevant sections in traversal order, the complete
decision log, per-depth statistics and the final recommendation. The latest
result is also persisted so follow-up commands and API consumers can fetch it.

Example:
  lexnav traverse --document statute.json --case case.json
  lexnav traverse --document statute.json --case case.json --json result.json --max-depth 6
  lexnav traverse --document statute.json --case case.json --oracle openai --model gpt-4o-mini`,
	RunE: runTraverse,
}

func init() {
	rootCmd.AddCommand(traverseCmd)

	traverseCmd.Flags().StringVar(&documentPath, "document", "", "path to the raw legal document JSON (required)")
	traverseCmd.Flags().StringVar(&casePath, "case", "", "path to the case information JSON (required)")
	traverseCmd.Flags().StringVar(&outJSON, "json", "", "write the full result JSON to this path")
	traverseCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "depth bound override (default from config: 8)")
	traverseCmd.Flags().Float64Var(&threshold, "threshold", -1, "relevance threshold override in [0,1] (default from config: 0.3)")
	traverseCmd.Flags().DurationVar(&runTimeout, "timeout", 15*time.Minute, "overall run timeout")

	traverseCmd.Flags().StringVar(&oracleProvider, "oracle", "", "oracle provider (openai, anthropic, ollama, stub)")
	traverseCmd.Flags().StringVar(&oracleModel, "model", "", "oracle model name")
	traverseCmd.Flags().StringVar(&oracleBaseURL, "base-url", "", "oracle base URL (e.g. for Ollama)")
	traverseCmd.Flags().DurationVar(&oracleTimeout, "oracle-timeout", 0, "timeout per oracle call")
	traverseCmd.Flags().StringVar(&storeDir, "store-dir", "", "directory for the persisted latest result")

	_ = traverseCmd.MarkFlagRequired("document")
	_ = traverseCmd.MarkFlagRequired("case")
}

func runTraverse(cmd *cobra.Command, args []string) error {
	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := loadConfig()

	caseInfo, err := readCaseFile(casePath)
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg, documentPath, log)
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{MaxDepth: maxDepth}
	if threshold >= 0 {
		t := threshold
		opts.Threshold = &t
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := pipe.Run(ctx, caseInfo, opts)
	if err != nil {
		return err
	}

	if outJSON != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote result: %s\n", outJSON)
		}
	}

	printSummary(result)
	return nil
}

func readCaseFile(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}
	var caseInfo map[string]interface{}
	if err := json.Unmarshal(raw, &caseInfo); err != nil {
		return nil, fmt.Errorf("parse case file: %w", err)
	}
	return caseInfo, nil
}
