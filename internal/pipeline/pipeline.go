package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/lexnav/internal/document"
	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
	"github.com/ppiankov/lexnav/internal/recommend"
	"github.com/ppiankov/lexnav/internal/store"
	"github.com/ppiankov/lexnav/internal/traverse"
)

// ErrNilCaseInfo rejects traversal requests without case information.
var ErrNilCaseInfo = errors.New("case information must not be nil")

// Pipeline wires one normalised document tree, an oracle provider and the
// result store into the complete traversal flow. A single pipeline serves
// many runs; runs share no mutable state except the store slot.
type Pipeline struct {
	tree     *model.LegalDocumentTree
	provider oracle.Provider
	store    store.Store
	cfg      *model.Config
	log      *zap.Logger
}

// New creates a pipeline. The tree must already be normalised.
func New(cfg *model.Config, tree *model.LegalDocumentTree, provider oracle.Provider, st store.Store, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		tree:     tree,
		provider: provider,
		store:    st,
		cfg:      cfg,
		log:      log,
	}
}

// LoadDocument reads a raw document file and normalises it.
func LoadDocument(path string) (*model.LegalDocumentTree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return document.Normalize(raw)
}

// RunOptions override per-run traversal settings.
type RunOptions struct {
	// MaxDepth overrides the configured depth bound when positive
	MaxDepth int

	// Threshold overrides the configured relevance threshold when set
	Threshold *float64
}

// Tree exposes the normalised document for egress consumers.
func (p *Pipeline) Tree() *model.LegalDocumentTree {
	return p.tree
}

// Provider exposes the oracle for health checks.
func (p *Pipeline) Provider() oracle.Provider {
	return p.provider
}

// Latest returns the stored most recent result, or nil when empty.
func (p *Pipeline) Latest() (*model.TraversalResult, error) {
	return p.store.Latest()
}

// ClearLatest empties the result slot.
func (p *Pipeline) ClearLatest() error {
	return p.store.Clear()
}

// Run executes one traversal for one case. Normalisation and validation
// errors abort; oracle trouble degrades to fallback decisions inside the
// run. The store write happens only after a completed run, so cancellation
// leaves the previous result authoritative, and a store failure is logged
// but never loses the in-memory result.
func (p *Pipeline) Run(ctx context.Context, caseInfo map[string]interface{}, opts RunOptions) (*model.TraversalResult, error) {
	if caseInfo == nil {
		return nil, ErrNilCaseInfo
	}
	if err := document.Validate(p.tree); err != nil {
		return nil, err
	}

	tcfg := p.cfg.Traversal
	if opts.MaxDepth > 0 {
		tcfg.MaxDepth = opts.MaxDepth
	}
	if opts.Threshold != nil {
		tcfg.RelevanceThreshold = *opts.Threshold
	}

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	p.log.Info("traversal started",
		zap.String("run_id", runID),
		zap.Int("max_depth", tcfg.MaxDepth),
		zap.Float64("threshold", tcfg.RelevanceThreshold),
		zap.Int("tree_size", p.tree.Size()))

	batch := traverse.NewBatchClient(p.provider, p.tree, tcfg, p.log)
	driver := traverse.NewDriver(p.tree, batch, tcfg, p.log)

	outcome, err := driver.Run(ctx, caseInfo)
	if err != nil {
		return nil, err
	}

	result := &model.TraversalResult{
		RunID:             runID,
		StartedAt:         startedAt,
		RelevantNodes:     outcome.RelevantNodes,
		TraversalPath:     outcome.Decisions,
		DocumentNodes:     p.tree.Nodes,
		Statistics:        traverse.ComputeStatistics(outcome.Decisions, tcfg.RelevanceThreshold),
		CaseInformation:   caseInfo,
		FallbackDecisions: outcome.Fallbacks,
	}
	if p.provider != nil {
		result.OracleProvider = p.provider.Name()
		result.OracleModel = p.cfg.Oracle.Model
	}

	result.FinalRecommendation = p.synthesize(ctx, outcome.RelevantNodes, caseInfo)
	result.CompletedAt = time.Now().UTC()

	if p.store != nil {
		if err := p.store.PutLatest(result); err != nil {
			p.log.Warn("result store write failed", zap.String("run_id", runID), zap.Error(err))
		}
	}

	p.log.Info("traversal completed",
		zap.String("run_id", runID),
		zap.Int("decisions", len(result.TraversalPath)),
		zap.Int("relevant_nodes", len(result.RelevantNodes)),
		zap.Int("fallback_decisions", result.FallbackDecisions))
	return result, nil
}

func (p *Pipeline) synthesize(ctx context.Context, relevant []model.RelevantNode, caseInfo map[string]interface{}) string {
	if p.provider == nil {
		return "No oracle configured; no recommendation generated."
	}
	rec, err := recommend.NewSynthesizer(p.provider, p.log).Synthesize(ctx, relevant, caseInfo)
	if err != nil {
		p.log.Warn("recommendation synthesis failed", zap.Error(err))
		return fmt.Sprintf("Recommendation unavailable: %d relevant sections were identified but the summary could not be generated.", len(relevant))
	}
	return rec.Recommendation
}
