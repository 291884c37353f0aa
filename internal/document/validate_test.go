package document

import (
	"strings"
	"testing"

	"github.com/ppiankov/lexnav/internal/model"
)

func makeTree(nodes map[string]*model.LegalNode, roots []string) *model.LegalDocumentTree {
	for id, n := range nodes {
		n.ID = id
		if n.Children == nil {
			n.Children = []string{}
		}
	}
	return &model.LegalDocumentTree{Nodes: nodes, RootNodes: roots}
}

func TestValidate_OK(t *testing.T) {
	tree := makeTree(map[string]*model.LegalNode{
		"r": {Title: "Root", Level: 0, Children: []string{"a", "b"}},
		"a": {Title: "A", Level: 1},
		"b": {Title: "B", Level: 1},
	}, []string{"r"})

	if err := Validate(tree); err != nil {
		t.Fatalf("expected valid tree, got %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	cases := []struct {
		name   string
		tree   *model.LegalDocumentTree
		reason string
	}{
		{
			name:   "empty roots",
			tree:   makeTree(map[string]*model.LegalNode{"a": {Level: 0}}, nil),
			reason: "missing root",
		},
		{
			name:   "unknown root",
			tree:   makeTree(map[string]*model.LegalNode{"a": {Level: 0}}, []string{"r"}),
			reason: "missing root",
		},
		{
			name: "dangling child",
			tree: makeTree(map[string]*model.LegalNode{
				"r": {Level: 0, Children: []string{"ghost"}},
			}, []string{"r"}),
			reason: "dangling child",
		},
		{
			name: "two parents",
			tree: makeTree(map[string]*model.LegalNode{
				"r": {Level: 0, Children: []string{"a", "b"}},
				"a": {Level: 1, Children: []string{"c"}},
				"b": {Level: 1, Children: []string{"c"}},
				"c": {Level: 2},
			}, []string{"r"}),
			reason: "referenced by both",
		},
		{
			name: "orphan",
			tree: makeTree(map[string]*model.LegalNode{
				"r": {Level: 0},
				"x": {Level: 1},
			}, []string{"r"}),
			reason: "unreachable",
		},
		{
			name: "cycle",
			tree: makeTree(map[string]*model.LegalNode{
				"r": {Level: 0},
				"a": {Level: 1, Children: []string{"b"}},
				"b": {Level: 2, Children: []string{"a"}},
			}, []string{"r"}),
			reason: "cycle",
		},
		{
			name: "depth mismatch",
			tree: makeTree(map[string]*model.LegalNode{
				"r": {Level: 0, Children: []string{"a"}},
				"a": {Level: 5},
			}, []string{"r"}),
			reason: "depth mismatch",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.tree)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Errorf("expected reason containing %q, got %q", tc.reason, err.Error())
			}
		})
	}
}
