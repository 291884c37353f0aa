package traverse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
	"github.com/ppiankov/lexnav/internal/reconcile"
)

// BatchClient wraps the oracle for level evaluation: it chunks oversize
// batches, paces consecutive calls, reconciles returned ids against the
// submitted ones and converts every outcome into decisions. One decision is
// emitted per submitted id, no matter what the oracle does.
type BatchClient struct {
	provider oracle.Provider
	tree     *model.LegalDocumentTree
	cfg      model.TraversalConfig
	pacer    *pacer
	log      *zap.Logger
}

// NewBatchClient creates a batch client over the given provider and tree.
func NewBatchClient(provider oracle.Provider, tree *model.LegalDocumentTree, cfg model.TraversalConfig, log *zap.Logger) *BatchClient {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchClient{
		provider: provider,
		tree:     tree,
		cfg:      cfg,
		pacer:    newPacer(cfg.ChunkInterval),
		log:      log,
	}
}

// EvaluateBatch evaluates one level's ids. The result has exactly one
// decision per id, in submission order. Oracle failures degrade to fallback
// decisions for the failed chunk only; the returned error is non-nil solely
// on context cancellation.
func (c *BatchClient) EvaluateBatch(ctx context.Context, ids []string, caseInfo map[string]interface{}, previousTitles []string, depth int) ([]model.TraversalDecision, error) {
	decisions := make([]model.TraversalDecision, 0, len(ids))

	for start := 0; start < len(ids); start += c.cfg.MaxBatchSize {
		end := start + c.cfg.MaxBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		if err := c.pacer.Wait(ctx); err != nil {
			return decisions, err
		}

		chunkDecisions, err := c.evaluateChunk(ctx, chunk, caseInfo, previousTitles, depth)
		if err != nil {
			if ctx.Err() != nil {
				return decisions, ctx.Err()
			}
			oerr := oracle.Classify(err)
			c.log.Warn("oracle chunk failed",
				zap.Int("depth", depth),
				zap.Int("chunk_size", len(chunk)),
				zap.String("kind", string(oerr.Kind)),
				zap.Error(oerr.Err))
			chunkDecisions = fallbackDecisions(chunk, depth, fmt.Sprintf("Batch evaluation failed: %s", oerr.Kind))
		}
		decisions = append(decisions, chunkDecisions...)
	}
	return decisions, nil
}

// evaluateChunk runs one oracle call and reconciles the response.
func (c *BatchClient) evaluateChunk(ctx context.Context, chunk []string, caseInfo map[string]interface{}, previousTitles []string, depth int) ([]model.TraversalDecision, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("no oracle provider configured")
	}
	resp, err := c.provider.Complete(ctx, oracle.Request{
		System: evaluationSystemPrompt,
		Prompt: buildEvaluationPrompt(c.tree, chunk, caseInfo, previousTitles),
		Schema: EvaluationSchema,
	})
	if err != nil {
		return nil, err
	}

	var parsed batchEvaluationResponse
	if err := json.Unmarshal(resp.JSON, &parsed); err != nil {
		return nil, oracle.SchemaError(fmt.Errorf("decode nodeEvaluations: %w", err))
	}

	received := make([]string, len(parsed.NodeEvaluations))
	for i, eval := range parsed.NodeEvaluations {
		received[i] = eval.NodeID
	}
	pairs := reconcile.Match(chunk, received)

	decisions := make([]model.TraversalDecision, len(chunk))
	for i, id := range chunk {
		if pairs[i] == reconcile.Unmatched {
			c.log.Warn("could not reconcile oracle evaluation",
				zap.String("node_id", id),
				zap.Strings("received_ids", received),
				zap.Strings("expected_ids", chunk))
			decisions[i] = model.TraversalDecision{
				NodeID:    id,
				Depth:     depth,
				Timestamp: time.Now().UTC(),
				Visited:   false,
				Reasoning: "Could not map to batch evaluation response",
				Fallback:  true,
			}
			continue
		}
		eval := parsed.NodeEvaluations[pairs[i]]
		decisions[i] = model.TraversalDecision{
			NodeID:         id,
			Depth:          depth,
			Timestamp:      time.Now().UTC(),
			RelevanceScore: clampScore(eval.RelevanceScore),
			Visited:        eval.ShouldExploreChildren,
			Reasoning:      eval.Reasoning,
		}
	}
	return decisions, nil
}

func fallbackDecisions(ids []string, depth int, reason string) []model.TraversalDecision {
	decisions := make([]model.TraversalDecision, len(ids))
	for i, id := range ids {
		decisions[i] = model.TraversalDecision{
			NodeID:    id,
			Depth:     depth,
			Timestamp: time.Now().UTC(),
			Visited:   false,
			Reasoning: reason,
			Fallback:  true,
		}
	}
	return decisions
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
