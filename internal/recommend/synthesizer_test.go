package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
)

func TestSynthesizer_Synthesize(t *testing.T) {
	var seenPrompt string
	provider := &oracle.StubProvider{
		Handler: func(ctx context.Context, req oracle.Request) (json.RawMessage, error) {
			seenPrompt = req.Prompt
			return json.RawMessage(`{
				"recommendation": "Sections 9 and 19 govern the remedy.",
				"confidence": 0.8,
				"keyFindings": ["satisfactory quality applies"]
			}`), nil
		},
	}

	relevant := []model.RelevantNode{
		{ID: "s_9", Title: "Goods to be of satisfactory quality", RelevanceScore: 0.92, Reasoning: "quality defect"},
		{ID: "s_19", Title: "Consumer's rights to enforce terms", RelevanceScore: 0.85},
	}
	caseInfo := map[string]interface{}{"issue": "faulty laptop"}

	rec, err := NewSynthesizer(provider, nil).Synthesize(context.Background(), relevant, caseInfo)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Recommendation != "Sections 9 and 19 govern the remedy." {
		t.Errorf("unexpected recommendation: %q", rec.Recommendation)
	}
	if rec.Confidence != 0.8 || len(rec.KeyFindings) != 1 {
		t.Errorf("unexpected fields: %+v", rec)
	}

	if !strings.Contains(seenPrompt, "Goods to be of satisfactory quality") {
		t.Errorf("prompt should list relevant titles: %q", seenPrompt)
	}
	if !strings.Contains(seenPrompt, "faulty laptop") {
		t.Errorf("prompt should carry the case information: %q", seenPrompt)
	}
}

func TestSynthesizer_EmptyRelevantNodes(t *testing.T) {
	var seenPrompt string
	provider := &oracle.StubProvider{
		Handler: func(ctx context.Context, req oracle.Request) (json.RawMessage, error) {
			seenPrompt = req.Prompt
			return json.RawMessage(`{"recommendation": "Nothing applies.", "confidence": 0.2, "keyFindings": []}`), nil
		},
	}

	if _, err := NewSynthesizer(provider, nil).Synthesize(context.Background(), nil, map[string]interface{}{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(seenPrompt, "No statute sections cleared") {
		t.Errorf("prompt should state that nothing cleared the threshold: %q", seenPrompt)
	}
}

func TestSynthesizer_OracleFailure(t *testing.T) {
	provider := &oracle.StubProvider{
		Handler: func(ctx context.Context, req oracle.Request) (json.RawMessage, error) {
			return nil, errors.New("429 rate limit")
		},
	}

	_, err := NewSynthesizer(provider, nil).Synthesize(context.Background(), nil, map[string]interface{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	var oerr *oracle.Error
	if !errors.As(err, &oerr) || oerr.Kind != oracle.FailureRateLimit {
		t.Errorf("expected classified oracle error, got %v", err)
	}
}

func TestSynthesizer_EmptyRecommendationIsSchemaError(t *testing.T) {
	provider := &oracle.StubProvider{
		Handler: func(ctx context.Context, req oracle.Request) (json.RawMessage, error) {
			return json.RawMessage(`{"recommendation": "", "confidence": 0, "keyFindings": []}`), nil
		},
	}

	_, err := NewSynthesizer(provider, nil).Synthesize(context.Background(), nil, map[string]interface{}{})
	var oerr *oracle.Error
	if !errors.As(err, &oerr) || oerr.Kind != oracle.FailureSchema {
		t.Errorf("expected schema failure, got %v", err)
	}
}
