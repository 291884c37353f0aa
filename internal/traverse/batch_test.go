package traverse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/lexnav/internal/model"
)

func batchTree(t *testing.T, count int) (*model.LegalDocumentTree, []string) {
	t.Helper()
	nodes := make(map[string]*model.LegalNode, count)
	ids := make([]string, count)
	roots := make([]string, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("s_%02d", i)
		nodes[id] = &model.LegalNode{ID: id, Title: id, Children: []string{}}
		ids[i] = id
		roots[i] = id
	}
	return &model.LegalDocumentTree{Nodes: nodes, RootNodes: roots}, ids
}

func TestBatchClient_ChunkingAndPacing(t *testing.T) {
	tree, ids := batchTree(t, 12)
	o := &scriptedOracle{evals: map[string]scriptedEval{}}
	for _, id := range ids {
		o.evals[id] = scriptedEval{score: 0.9}
	}

	interval := 40 * time.Millisecond
	cfg := model.TraversalConfig{MaxBatchSize: 5, ChunkInterval: interval}
	client := NewBatchClient(o, tree, cfg, nil)

	decisions, err := client.EvaluateBatch(context.Background(), ids, map[string]interface{}{}, nil, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(o.calls) != 3 {
		t.Fatalf("expected 3 oracle calls, got %d", len(o.calls))
	}
	for i, wantSize := range []int{5, 5, 2} {
		if len(o.calls[i].ids) != wantSize {
			t.Errorf("chunk %d: expected %d ids, got %d", i+1, wantSize, len(o.calls[i].ids))
		}
	}
	for i := 1; i < len(o.calls); i++ {
		if gap := o.calls[i].at.Sub(o.calls[i-1].at); gap < interval {
			t.Errorf("chunks %d and %d only %v apart, want >= %v", i, i+1, gap, interval)
		}
	}

	if len(decisions) != len(ids) {
		t.Fatalf("expected one decision per id, got %d", len(decisions))
	}
	for i, d := range decisions {
		if d.NodeID != ids[i] {
			t.Fatalf("decision order must equal submission order: %v", decisions)
		}
	}
}

func TestBatchClient_ChunkFailureIsIsolated(t *testing.T) {
	tree, ids := batchTree(t, 12)
	o := &scriptedOracle{
		evals:      map[string]scriptedEval{},
		failOnCall: map[int]error{2: errors.New("429 rate limit exceeded")},
	}
	for _, id := range ids {
		o.evals[id] = scriptedEval{score: 0.9}
	}

	cfg := model.TraversalConfig{MaxBatchSize: 5}
	client := NewBatchClient(o, tree, cfg, nil)

	decisions, err := client.EvaluateBatch(context.Background(), ids, map[string]interface{}{}, nil, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(decisions) != 12 {
		t.Fatalf("expected 12 decisions, got %d", len(decisions))
	}

	for i, d := range decisions {
		inFailedChunk := i >= 5 && i < 10
		if inFailedChunk {
			if !d.Fallback || d.RelevanceScore != 0 || d.Visited {
				t.Errorf("decision %d should be a zero fallback: %+v", i, d)
			}
			if !strings.Contains(d.Reasoning, "rate_limit") {
				t.Errorf("fallback reasoning should carry the failure kind: %q", d.Reasoning)
			}
		} else if d.Fallback || d.RelevanceScore != 0.9 {
			t.Errorf("decision %d from a healthy chunk should be intact: %+v", i, d)
		}
	}
}

func TestBatchClient_UnmappableEvaluation(t *testing.T) {
	tree, ids := batchTree(t, 2)
	o := &scriptedOracle{
		evals: map[string]scriptedEval{ids[0]: {score: 0.9}, ids[1]: {score: 0.8}},
		mangleID: func(id string) string {
			if id == ids[1] {
				return "completely unrelated xq7"
			}
			return id
		},
	}

	client := NewBatchClient(o, tree, model.TraversalConfig{MaxBatchSize: 5}, nil)
	decisions, err := client.EvaluateBatch(context.Background(), ids, map[string]interface{}{}, nil, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if decisions[0].Fallback {
		t.Errorf("mappable decision should survive: %+v", decisions[0])
	}
	if !decisions[1].Fallback || decisions[1].Reasoning != "Could not map to batch evaluation response" {
		t.Errorf("unmappable decision should fall back: %+v", decisions[1])
	}
}

func TestBatchClient_NilProvider(t *testing.T) {
	tree, ids := batchTree(t, 3)
	client := NewBatchClient(nil, tree, model.TraversalConfig{MaxBatchSize: 5}, nil)

	decisions, err := client.EvaluateBatch(context.Background(), ids, map[string]interface{}{}, nil, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, d := range decisions {
		if !d.Fallback || d.Depth != 2 {
			t.Errorf("expected depth-2 fallback decision, got %+v", d)
		}
	}
}

func TestBatchClient_CancelledContext(t *testing.T) {
	tree, ids := batchTree(t, 3)
	o := &scriptedOracle{evals: map[string]scriptedEval{}}
	client := NewBatchClient(o, tree, model.TraversalConfig{MaxBatchSize: 5}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.EvaluateBatch(ctx, ids, map[string]interface{}{}, nil, 0); err == nil {
		t.Fatal("expected context error, got nil")
	}
}
