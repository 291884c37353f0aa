package model

import "time"

// TraversalDecision records the evaluation outcome for one node. Visited
// means "permission to descend into children", not "was scored": a node can
// be relevant without being descended into, and descended into without
// clearing the relevance threshold.
type TraversalDecision struct {
	NodeID         string    `json:"nodeId"`
	Depth          int       `json:"depth"`
	Timestamp      time.Time `json:"timestamp"`
	RelevanceScore float64   `json:"relevanceScore"`
	Visited        bool      `json:"visited"`
	Reasoning      string    `json:"reasoning"`
	Fallback       bool      `json:"fallback,omitempty"`
}

// TraversalContext is the per-run mutable scratch state. It is created at
// run start, owned by a single goroutine, and discarded at run end.
type TraversalContext struct {
	CaseInformation map[string]interface{}
	VisitedNodes    map[string]bool
	Decisions       []TraversalDecision
	CurrentDepth    int
}

// NewTraversalContext creates the scratch state for one run.
func NewTraversalContext(caseInfo map[string]interface{}) *TraversalContext {
	return &TraversalContext{
		CaseInformation: caseInfo,
		VisitedNodes:    make(map[string]bool),
	}
}

// MarkEnqueued records that a node id has been seen by the scheduler.
// Returns false if the id was already marked.
func (c *TraversalContext) MarkEnqueued(id string) bool {
	if c.VisitedNodes[id] {
		return false
	}
	c.VisitedNodes[id] = true
	return true
}

// Append adds a decision to the append-only log.
func (c *TraversalContext) Append(d TraversalDecision) {
	c.Decisions = append(c.Decisions, d)
}
