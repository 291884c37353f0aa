package traverse

import (
	"math"
	"testing"

	"github.com/ppiankov/lexnav/internal/model"
)

func TestComputeStatistics(t *testing.T) {
	decisions := []model.TraversalDecision{
		{NodeID: "R", Depth: 0, RelevanceScore: 0.9, Visited: true},
		{NodeID: "A", Depth: 1, RelevanceScore: 0.9, Visited: false},
	}

	stats := ComputeStatistics(decisions, 0.3)

	if len(stats.ByDepth) != 2 {
		t.Fatalf("expected 2 depth buckets, got %d", len(stats.ByDepth))
	}
	want := []model.DepthStatistics{
		{Depth: 0, TotalNodes: 1, VisitedNodes: 1, RelevantNodes: 1, AverageScore: 0.9},
		{Depth: 1, TotalNodes: 1, VisitedNodes: 0, RelevantNodes: 1, AverageScore: 0.9},
	}
	for i, w := range want {
		got := stats.ByDepth[i]
		if got.Depth != w.Depth || got.TotalNodes != w.TotalNodes ||
			got.VisitedNodes != w.VisitedNodes || got.RelevantNodes != w.RelevantNodes ||
			math.Abs(got.AverageScore-w.AverageScore) > 1e-9 {
			t.Errorf("depth %d: got %+v, want %+v", w.Depth, got, w)
		}
	}

	if stats.ScoreDistribution.HighRelevance != 2 {
		t.Errorf("expected 2 high-relevance decisions, got %+v", stats.ScoreDistribution)
	}
}

func TestComputeStatistics_Bands(t *testing.T) {
	decisions := []model.TraversalDecision{
		{Depth: 0, RelevanceScore: 0.85},
		{Depth: 0, RelevanceScore: 0.8},
		{Depth: 0, RelevanceScore: 0.79},
		{Depth: 0, RelevanceScore: 0.5},
		{Depth: 0, RelevanceScore: 0.49},
		{Depth: 0, RelevanceScore: 0},
	}

	stats := ComputeStatistics(decisions, 0.3)
	dist := stats.ScoreDistribution
	if dist.HighRelevance != 2 || dist.MediumRelevance != 2 || dist.LowRelevance != 2 {
		t.Errorf("unexpected distribution: %+v", dist)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, 0.3)
	if len(stats.ByDepth) != 0 {
		t.Errorf("expected no buckets, got %+v", stats.ByDepth)
	}
}
