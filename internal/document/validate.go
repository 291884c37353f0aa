package document

import (
	"fmt"

	"github.com/ppiankov/lexnav/internal/model"
)

// Validate verifies the structural invariants of a normalised tree: unique
// ids, referential integrity of children, single-parent tree shape, depth
// monotonicity and a non-empty root set. It returns an InvalidTreeError
// naming the first violation found, or nil.
func Validate(tree *model.LegalDocumentTree) error {
	if tree == nil || len(tree.Nodes) == 0 {
		return &InvalidTreeError{Reason: "tree has no nodes"}
	}
	if len(tree.RootNodes) == 0 {
		return &InvalidTreeError{Reason: "missing root: rootNodes is empty"}
	}

	rootSet := make(map[string]bool, len(tree.RootNodes))
	for _, root := range tree.RootNodes {
		if rootSet[root] {
			return &InvalidTreeError{Reason: fmt.Sprintf("duplicate id: root %q listed twice", root)}
		}
		rootSet[root] = true
		if _, exists := tree.Nodes[root]; !exists {
			return &InvalidTreeError{Reason: fmt.Sprintf("missing root: %q is not a node", root)}
		}
	}

	// Each id keyed in Nodes must describe itself, and every child reference
	// must resolve to exactly one parent.
	parentOf := make(map[string]string, len(tree.Nodes))
	for id, node := range tree.Nodes {
		if node == nil {
			return &InvalidTreeError{Reason: fmt.Sprintf("dangling child: node %q is nil", id)}
		}
		if node.ID != id {
			return &InvalidTreeError{Reason: fmt.Sprintf("duplicate id: node keyed %q declares id %q", id, node.ID)}
		}
		seenChildren := make(map[string]bool, len(node.Children))
		for _, child := range node.Children {
			if _, exists := tree.Nodes[child]; !exists {
				return &InvalidTreeError{Reason: fmt.Sprintf("dangling child: %q lists unknown child %q", id, child)}
			}
			if seenChildren[child] {
				return &InvalidTreeError{Reason: fmt.Sprintf("duplicate id: %q lists child %q twice", id, child)}
			}
			seenChildren[child] = true
			if rootSet[child] {
				return &InvalidTreeError{Reason: fmt.Sprintf("cycle: root %q referenced as a child of %q", child, id)}
			}
			if prev, taken := parentOf[child]; taken {
				return &InvalidTreeError{Reason: fmt.Sprintf("multiple parents: %q referenced by both %q and %q", child, prev, id)}
			}
			parentOf[child] = id
		}
	}

	for id := range tree.Nodes {
		if rootSet[id] {
			continue
		}
		if _, ok := parentOf[id]; !ok {
			return &InvalidTreeError{Reason: fmt.Sprintf("orphan: %q is unreachable (no parent references it)", id)}
		}
	}

	// Reachability from the roots; with single parents the only way a node
	// stays unreached is a reference cycle.
	reached := make(map[string]bool, len(tree.Nodes))
	var stack []string
	for _, root := range tree.RootNodes {
		stack = append(stack, root)
		reached[root] = true
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := tree.Nodes[id]
		for _, child := range node.Children {
			if reached[child] {
				continue
			}
			reached[child] = true
			stack = append(stack, child)
			if tree.Nodes[child].Level != node.Level+1 {
				return &InvalidTreeError{Reason: fmt.Sprintf("depth mismatch: %q has level %d under parent %q at level %d",
					child, tree.Nodes[child].Level, id, node.Level)}
			}
		}
	}
	for id := range tree.Nodes {
		if !reached[id] {
			return &InvalidTreeError{Reason: fmt.Sprintf("cycle: %q participates in a reference cycle", id)}
		}
	}
	return nil
}
