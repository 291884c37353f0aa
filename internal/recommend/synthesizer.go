package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
)

const synthesisSystemPrompt = `You summarise which statute sections matter for a consumer-rights case and why. You describe applicability, you do not give legal advice or assert outcomes.`

// RecommendationSchema constrains the synthesis response.
var RecommendationSchema = &oracle.Schema{
	Name: "final_recommendation",
	Definition: json.RawMessage(`{
  "type": "object",
  "properties": {
    "recommendation": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "keyFindings": {"type": "array", "items": {"type": "string"}},
    "additionalInfoNeeded": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["recommendation", "confidence", "keyFindings"],
  "additionalProperties": false
}`),
}

// Recommendation is the oracle's final summary over the relevant nodes.
type Recommendation struct {
	Recommendation       string   `json:"recommendation"`
	Confidence           float64  `json:"confidence"`
	KeyFindings          []string `json:"keyFindings"`
	AdditionalInfoNeeded []string `json:"additionalInfoNeeded,omitempty"`
}

// Synthesizer produces the final human-facing summary with a single oracle
// call over the collected relevant nodes.
type Synthesizer struct {
	provider oracle.Provider
	log      *zap.Logger
}

// NewSynthesizer creates a synthesizer over the given provider.
func NewSynthesizer(provider oracle.Provider, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{provider: provider, log: log}
}

// Synthesize asks the oracle for the final recommendation.
func (s *Synthesizer) Synthesize(ctx context.Context, relevant []model.RelevantNode, caseInfo map[string]interface{}) (*Recommendation, error) {
	resp, err := s.provider.Complete(ctx, oracle.Request{
		System: synthesisSystemPrompt,
		Prompt: buildSynthesisPrompt(relevant, caseInfo),
		Schema: RecommendationSchema,
	})
	if err != nil {
		return nil, oracle.Classify(err)
	}

	var rec Recommendation
	if err := json.Unmarshal(resp.JSON, &rec); err != nil {
		return nil, oracle.SchemaError(fmt.Errorf("decode recommendation: %w", err))
	}
	if rec.Recommendation == "" {
		return nil, oracle.SchemaError(fmt.Errorf("recommendation text is empty"))
	}
	return &rec, nil
}

func buildSynthesisPrompt(relevant []model.RelevantNode, caseInfo map[string]interface{}) string {
	var b strings.Builder

	b.WriteString("Case information:\n")
	caseJSON, err := json.MarshalIndent(caseInfo, "", "  ")
	if err != nil {
		caseJSON = []byte(fmt.Sprintf("%v", caseInfo))
	}
	b.Write(caseJSON)
	b.WriteString("\n\n")

	if len(relevant) == 0 {
		b.WriteString("No statute sections cleared the relevance threshold for this case.\n")
	} else {
		b.WriteString("Statute sections identified as relevant, in traversal order:\n\n")
		for i, node := range relevant {
			fmt.Fprintf(&b, "%d. %s (score %.2f)\n", i+1, node.Title, node.RelevanceScore)
			if node.Reasoning != "" {
				fmt.Fprintf(&b, "   Reasoning: %s\n", node.Reasoning)
			}
		}
	}

	b.WriteString("\nWrite a recommendation summarising which sections apply to this case and what the consumer should look into, ")
	b.WriteString("with keyFindings as short bullet statements. ")
	b.WriteString("List in additionalInfoNeeded any case facts that would sharpen the analysis.")
	return b.String()
}
