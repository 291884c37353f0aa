package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/lexnav/internal/model"
)

func sampleResult(runID string) *model.TraversalResult {
	return &model.TraversalResult{
		RunID:               runID,
		FinalRecommendation: "check part 1",
		RelevantNodes: []model.RelevantNode{
			{ID: "part_1", Title: "Part 1", RelevanceScore: 0.9},
		},
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	s := NewDiskStore(t.TempDir())

	if result, err := s.Latest(); err != nil || result != nil {
		t.Fatalf("empty slot should yield nil, nil; got %v, %v", result, err)
	}

	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	result, err := s.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if result == nil || result.RunID != "run-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.RelevantNodes) != 1 || result.RelevantNodes[0].ID != "part_1" {
		t.Errorf("relevant nodes not preserved: %+v", result.RelevantNodes)
	}
}

func TestDiskStore_LastWriterWins(t *testing.T) {
	s := NewDiskStore(t.TempDir())

	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutLatest(sampleResult("run-2")); err != nil {
		t.Fatalf("put: %v", err)
	}
	result, err := s.Latest()
	if err != nil || result == nil {
		t.Fatalf("latest: %v, %v", result, err)
	}
	if result.RunID != "run-2" {
		t.Errorf("expected run-2, got %s", result.RunID)
	}
}

func TestDiskStore_Clear(t *testing.T) {
	s := NewDiskStore(t.TempDir())

	if err := s.Clear(); err != nil {
		t.Fatalf("clearing an empty slot must succeed: %v", err)
	}
	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if result, _ := s.Latest(); result != nil {
		t.Errorf("slot should be empty after clear, got %+v", result)
	}
}

func TestDiskStore_PrettyPrintedFile(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(dir)
	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, latestFileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(data, []byte("\n  ")) {
		t.Error("persisted document should be pretty-printed")
	}
}

func TestDiskStore_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(dir)
	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != latestFileName {
		t.Errorf("expected only the committed file, got %v", entries)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()

	if result, err := s.Latest(); err != nil || result != nil {
		t.Fatalf("empty slot should yield nil, nil; got %v, %v", result, err)
	}
	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	result, err := s.Latest()
	if err != nil || result == nil || result.RunID != "run-1" {
		t.Fatalf("unexpected result: %v, %v", result, err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if result, _ := s.Latest(); result != nil {
		t.Errorf("slot should be empty after clear")
	}
}

func TestLayeredStore_PromotesDiskHit(t *testing.T) {
	dir := t.TempDir()

	// A previous process left a persisted result.
	if err := NewDiskStore(dir).PutLatest(sampleResult("run-old")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewLayeredStore(dir)
	result, err := s.Latest()
	if err != nil || result == nil || result.RunID != "run-old" {
		t.Fatalf("expected disk hit, got %v, %v", result, err)
	}

	// Memory now serves the slot even if the file disappears.
	if err := os.Remove(filepath.Join(dir, latestFileName)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	result, err = s.Latest()
	if err != nil || result == nil || result.RunID != "run-old" {
		t.Fatalf("expected promoted memory hit, got %v, %v", result, err)
	}
}

func TestLayeredStore_ClearBothLayers(t *testing.T) {
	dir := t.TempDir()
	s := NewLayeredStore(dir)

	if err := s.PutLatest(sampleResult("run-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if result, _ := s.Latest(); result != nil {
		t.Errorf("slot should be empty after clear, got %+v", result)
	}
}
