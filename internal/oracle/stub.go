package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// StubProvider is a deterministic offline oracle. It answers evaluation
// requests by echoing every node id found in the prompt with a fixed score,
// and recommendation requests with a canned summary. Useful for tests and
// for exercising the engine without credentials.
type StubProvider struct {
	// Score assigned to every node (default 0.5)
	Score float64

	// Explore is returned as shouldExploreChildren for every node
	Explore bool

	// Handler, when set, overrides the canned behaviour entirely
	Handler func(ctx context.Context, req Request) (json.RawMessage, error)
}

// NewStubProvider creates a stub that scores everything 0.5 and descends.
func NewStubProvider() *StubProvider {
	return &StubProvider{Score: 0.5, Explore: true}
}

// Name returns the provider name
func (p *StubProvider) Name() string {
	return "stub"
}

// IsAvailable always succeeds
func (p *StubProvider) IsAvailable(ctx context.Context) bool {
	return true
}

var promptNodeID = regexp.MustCompile(`(?m)^\s*ID: "(.*)"$`)

// Complete answers deterministically based on the schema name.
func (p *StubProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.Handler != nil {
		raw, err := p.Handler(ctx, req)
		if err != nil {
			return nil, Classify(err)
		}
		return &Response{JSON: raw, Model: "stub"}, nil
	}

	schemaName := ""
	if req.Schema != nil {
		schemaName = req.Schema.Name
	}

	switch schemaName {
	case "node_evaluations":
		type eval struct {
			NodeID                string  `json:"nodeId"`
			IsRelevant            bool    `json:"isRelevant"`
			RelevanceScore        float64 `json:"relevanceScore"`
			Reasoning             string  `json:"reasoning"`
			ShouldExploreChildren bool    `json:"shouldExploreChildren"`
		}
		var evals []eval
		for _, m := range promptNodeID.FindAllStringSubmatch(req.Prompt, -1) {
			evals = append(evals, eval{
				NodeID:                m[1],
				IsRelevant:            p.Score > 0.5,
				RelevanceScore:        p.Score,
				Reasoning:             "stub evaluation",
				ShouldExploreChildren: p.Explore,
			})
		}
		raw, err := json.Marshal(map[string]interface{}{"nodeEvaluations": evals})
		if err != nil {
			return nil, SchemaError(err)
		}
		return &Response{JSON: raw, Model: "stub"}, nil

	case "final_recommendation":
		raw, err := json.Marshal(map[string]interface{}{
			"recommendation": "Stub oracle: review the listed sections with counsel.",
			"confidence":     0.5,
			"keyFindings":    []string{},
		})
		if err != nil {
			return nil, SchemaError(err)
		}
		return &Response{JSON: raw, Model: "stub"}, nil
	}
	return nil, SchemaError(fmt.Errorf("stub provider has no canned response for schema %q", schemaName))
}
