package cli

import (
	"fmt"

	"github.com/ppiankov/lexnav/internal/model"
)

// printSummary writes the human-readable run digest to stdout.
func printSummary(result *model.TraversalResult) {
	fmt.Printf("Run %s: %d decisions, %d relevant sections", result.RunID, len(result.TraversalPath), len(result.RelevantNodes))
	if result.FallbackDecisions > 0 {
		fmt.Printf(" (%d fallback decisions)", result.FallbackDecisions)
	}
	fmt.Println()

	for i, node := range result.RelevantNodes {
		fmt.Printf("%2d. [%.2f] %s\n", i+1, node.RelevanceScore, node.Title)
	}

	if len(result.Statistics.ByDepth) > 0 {
		fmt.Println("\nPer depth:")
		for _, d := range result.Statistics.ByDepth {
			fmt.Printf("  depth %d: %d evaluated, %d descended, %d relevant, avg score %.2f\n",
				d.Depth, d.TotalNodes, d.VisitedNodes, d.RelevantNodes, d.AverageScore)
		}
	}

	if result.FinalRecommendation != "" {
		fmt.Printf("\nRecommendation:\n%s\n", result.FinalRecommendation)
	}
}
