package traverse

import (
	"github.com/ppiankov/lexnav/internal/model"
)

// ComputeStatistics derives the per-depth breakdown and score bands from a
// decision log. Decisions arrive depth-major, so depths are collected in
// first-seen order, which is ascending.
func ComputeStatistics(decisions []model.TraversalDecision, threshold float64) model.TraversalStatistics {
	type bucket struct {
		total    int
		visited  int
		relevant int
		scoreSum float64
	}

	var depths []int
	byDepth := make(map[int]*bucket)
	var dist model.ScoreDistribution

	for _, d := range decisions {
		b, ok := byDepth[d.Depth]
		if !ok {
			b = &bucket{}
			byDepth[d.Depth] = b
			depths = append(depths, d.Depth)
		}
		b.total++
		b.scoreSum += d.RelevanceScore
		if d.Visited {
			b.visited++
		}
		if d.RelevanceScore > threshold {
			b.relevant++
		}

		switch {
		case d.RelevanceScore >= 0.8:
			dist.HighRelevance++
		case d.RelevanceScore >= 0.5:
			dist.MediumRelevance++
		default:
			dist.LowRelevance++
		}
	}

	stats := model.TraversalStatistics{ScoreDistribution: dist}
	for _, depth := range depths {
		b := byDepth[depth]
		avg := 0.0
		if b.total > 0 {
			avg = b.scoreSum / float64(b.total)
		}
		stats.ByDepth = append(stats.ByDepth, model.DepthStatistics{
			Depth:         depth,
			TotalNodes:    b.total,
			VisitedNodes:  b.visited,
			RelevantNodes: b.relevant,
			AverageScore:  avg,
		})
	}
	return stats
}
