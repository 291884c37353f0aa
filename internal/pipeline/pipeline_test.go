package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/lexnav/internal/document"
	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
	"github.com/ppiankov/lexnav/internal/store"
)

func pipelineTree() *model.LegalDocumentTree {
	return &model.LegalDocumentTree{
		Nodes: map[string]*model.LegalNode{
			"part_1": {ID: "part_1", Title: "Part 1", Level: 0, Children: []string{"s_9"}},
			"s_9":    {ID: "s_9", Title: "Section 9", Level: 1, Children: []string{}},
		},
		RootNodes: []string{"part_1"},
	}
}

func newTestPipeline(t *testing.T, provider oracle.Provider) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Traversal.ChunkInterval = 0
	return New(cfg, pipelineTree(), provider, store.NewDiskStore(t.TempDir()), nil)
}

func TestPipeline_Run(t *testing.T) {
	stub := oracle.NewStubProvider()
	stub.Score = 0.9
	pipe := newTestPipeline(t, stub)

	caseInfo := map[string]interface{}{"issue": "faulty goods"}
	result, err := pipe.Run(context.Background(), caseInfo, RunOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if len(result.TraversalPath) != 2 {
		t.Errorf("expected 2 decisions, got %d", len(result.TraversalPath))
	}
	if len(result.RelevantNodes) != 2 {
		t.Errorf("expected 2 relevant nodes, got %d", len(result.RelevantNodes))
	}
	if len(result.DocumentNodes) != 2 {
		t.Errorf("documentNodes should carry the full tree, got %d", len(result.DocumentNodes))
	}
	if result.FinalRecommendation == "" {
		t.Error("expected a recommendation")
	}
	for _, node := range result.RelevantNodes {
		if _, ok := result.DocumentNodes[node.ID]; !ok {
			t.Errorf("relevant node %s missing from documentNodes", node.ID)
		}
	}

	stored, err := pipe.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if stored == nil || stored.RunID != result.RunID {
		t.Errorf("store should hold the completed run, got %+v", stored)
	}
}

func TestPipeline_RunDeterministicWithDeterministicOracle(t *testing.T) {
	stub := oracle.NewStubProvider()
	stub.Score = 0.9
	pipe := newTestPipeline(t, stub)
	caseInfo := map[string]interface{}{"issue": "faulty goods"}

	first, err := pipe.Run(context.Background(), caseInfo, RunOptions{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipe.Run(context.Background(), caseInfo, RunOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.TraversalPath) != len(second.TraversalPath) {
		t.Fatalf("path lengths differ: %d vs %d", len(first.TraversalPath), len(second.TraversalPath))
	}
	for i := range first.TraversalPath {
		a, b := first.TraversalPath[i], second.TraversalPath[i]
		if a.NodeID != b.NodeID || a.Depth != b.Depth || a.RelevanceScore != b.RelevanceScore || a.Visited != b.Visited {
			t.Errorf("path diverges at %d: %+v vs %+v", i, a, b)
		}
	}
	for i := range first.RelevantNodes {
		if first.RelevantNodes[i].ID != second.RelevantNodes[i].ID {
			t.Errorf("relevant nodes diverge at %d", i)
		}
	}
}

func TestPipeline_NilCaseInfo(t *testing.T) {
	pipe := newTestPipeline(t, oracle.NewStubProvider())
	_, err := pipe.Run(context.Background(), nil, RunOptions{})
	if !errors.Is(err, ErrNilCaseInfo) {
		t.Errorf("expected ErrNilCaseInfo, got %v", err)
	}
}

func TestPipeline_InvalidTreeAborts(t *testing.T) {
	cfg := model.DefaultConfig()
	broken := &model.LegalDocumentTree{
		Nodes:     map[string]*model.LegalNode{"r": {ID: "r", Children: []string{"ghost"}}},
		RootNodes: []string{"r"},
	}
	pipe := New(cfg, broken, oracle.NewStubProvider(), store.NewDiskStore(t.TempDir()), nil)

	_, err := pipe.Run(context.Background(), map[string]interface{}{}, RunOptions{})
	var invalid *document.InvalidTreeError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidTreeError, got %v", err)
	}
}

func TestPipeline_CancellationLeavesStoreUntouched(t *testing.T) {
	stub := oracle.NewStubProvider()
	stub.Score = 0.9
	pipe := newTestPipeline(t, stub)
	caseInfo := map[string]interface{}{"issue": "faulty goods"}

	first, err := pipe.Run(context.Background(), caseInfo, RunOptions{})
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pipe.Run(ctx, caseInfo, RunOptions{}); err == nil {
		t.Fatal("expected cancellation error")
	}

	stored, err := pipe.Latest()
	if err != nil || stored == nil {
		t.Fatalf("latest: %v, %v", stored, err)
	}
	if stored.RunID != first.RunID {
		t.Error("cancelled run must not overwrite the previous result")
	}
}

func TestPipeline_ThresholdOverride(t *testing.T) {
	stub := oracle.NewStubProvider()
	stub.Score = 0.5
	pipe := newTestPipeline(t, stub)

	strict := 0.65
	result, err := pipe.Run(context.Background(), map[string]interface{}{}, RunOptions{Threshold: &strict})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.RelevantNodes) != 0 {
		t.Errorf("score 0.5 must not clear threshold 0.65: %+v", result.RelevantNodes)
	}
}
