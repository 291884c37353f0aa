package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lexnav/internal/store"
)

// resultCmd groups the latest-result accessors
var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Inspect or clear the persisted latest traversal result",
}

var resultShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the latest traversal result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		result, err := store.NewDiskStore(cfg.Store.Dir).Latest()
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("No traversal result stored.")
			return nil
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var resultClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the latest traversal result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := store.NewDiskStore(cfg.Store.Dir).Clear(); err != nil {
			return err
		}
		fmt.Println("Cleared.")
		return nil
	},
}

func init() {
	resultCmd.AddCommand(resultShowCmd)
	resultCmd.AddCommand(resultClearCmd)
	rootCmd.AddCommand(resultCmd)
}
