package traverse

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/lexnav/internal/model"
)

// Driver runs the level-synchronous breadth-first traversal. Levels are
// processed strictly in order with no intra-level parallelism, so the
// decision log ordering always mirrors submission order.
type Driver struct {
	tree  *model.LegalDocumentTree
	batch *BatchClient
	cfg   model.TraversalConfig
	log   *zap.Logger
}

// Outcome is what one completed traversal produces before recommendation
// synthesis and persistence.
type Outcome struct {
	RelevantNodes []model.RelevantNode
	Decisions     []model.TraversalDecision
	Fallbacks     int
}

// NewDriver creates a traversal driver over a validated tree.
func NewDriver(tree *model.LegalDocumentTree, batch *BatchClient, cfg model.TraversalConfig, log *zap.Logger) *Driver {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{tree: tree, batch: batch, cfg: cfg, log: log}
}

type queueItem struct {
	nodeID string
	depth  int
}

// Run traverses the tree for one case. Inclusion (score strictly above the
// threshold) and descent (oracle permission plus depth headroom) are
// independent axes. The only error Run returns is context cancellation;
// oracle trouble degrades to fallback decisions and the run completes.
func (d *Driver) Run(ctx context.Context, caseInfo map[string]interface{}) (*Outcome, error) {
	tctx := model.NewTraversalContext(caseInfo)
	outcome := &Outcome{}

	var queue []queueItem
	for _, rootID := range d.tree.RootNodes {
		if tctx.MarkEnqueued(rootID) {
			queue = append(queue, queueItem{nodeID: rootID, depth: 0})
		}
	}

	var previousTitles []string

	for depth := 0; depth < d.cfg.MaxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		levelEnd := 0
		for levelEnd < len(queue) && queue[levelEnd].depth == depth {
			levelEnd++
		}
		if levelEnd == 0 {
			break
		}
		level := queue[:levelEnd]

		ids := make([]string, len(level))
		for i, item := range level {
			ids[i] = item.nodeID
		}
		tctx.CurrentDepth = depth
		d.log.Debug("evaluating level", zap.Int("depth", depth), zap.Int("nodes", len(ids)))

		decisions, err := d.batch.EvaluateBatch(ctx, ids, caseInfo, previousTitles, depth)
		if err != nil {
			return nil, err
		}

		for _, decision := range decisions {
			node := d.tree.Node(decision.NodeID)

			if node != nil && decision.RelevanceScore > d.cfg.RelevanceThreshold {
				outcome.RelevantNodes = append(outcome.RelevantNodes, model.RelevantNode{
					ID:             node.ID,
					Title:          node.Title,
					Level:          node.Level,
					Content:        node.Content,
					Metadata:       node.Metadata,
					RelevanceScore: decision.RelevanceScore,
					Reasoning:      decision.Reasoning,
				})
				previousTitles = append(previousTitles, node.Title)
			}

			if node != nil && decision.Visited && depth+1 < d.cfg.MaxDepth {
				for _, childID := range node.Children {
					if tctx.MarkEnqueued(childID) {
						queue = append(queue, queueItem{nodeID: childID, depth: depth + 1})
					}
				}
			}

			if decision.Fallback {
				outcome.Fallbacks++
			}
			tctx.Append(decision)
		}

		queue = queue[levelEnd:]
	}

	outcome.Decisions = tctx.Decisions
	return outcome, nil
}
