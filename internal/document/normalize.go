package document

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ppiankov/lexnav/internal/model"
)

// Normalize converts a raw JSON document in any of the supported shapes into
// the canonical LegalDocumentTree. The input is never mutated; colliding ids
// are renamed with a numeric suffix and all references are remapped so no
// content is dropped. The returned tree always satisfies the structural
// invariants (depths are recomputed by traversal and the validator runs
// before returning).
func Normalize(raw []byte) (*model.LegalDocumentTree, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("parse JSON: %v", err)}
	}
	return NormalizeValue(value)
}

// NormalizeValue normalizes an already-decoded JSON value. Shape detection
// is a discriminated dispatch: each supported shape has a predicate and a
// pure conversion function.
func NormalizeValue(value interface{}) (*model.LegalDocumentTree, error) {
	var (
		tree *model.LegalDocumentTree
		err  error
	)

	switch v := value.(type) {
	case map[string]interface{}:
		switch {
		case isCanonical(v):
			tree, err = normalizeCanonical(v)
		case isAgentResults(v):
			tree, err = normalizeAgentResults(v)
		case isRecursiveRoot(v):
			tree, err = normalizeRecursiveRoot(v)
		case isChapterMap(v):
			tree, err = normalizeChapterMap(v)
		case isFlatObject(v):
			tree, err = normalizeFlatObject(v)
		default:
			err = &MalformedDocumentError{Reason: "object matches no known document shape"}
		}
	case []interface{}:
		tree, err = normalizeFlatArray(v)
	default:
		err = &MalformedDocumentError{Reason: fmt.Sprintf("unsupported top-level JSON type %T", value)}
	}
	if err != nil {
		return nil, err
	}

	assignDepths(tree)

	if verr := Validate(tree); verr != nil {
		return nil, &MalformedDocumentError{Reason: verr.Error()}
	}
	return tree, nil
}

// builder accumulates nodes while a shape conversion walks the input.
type builder struct {
	nodes map[string]*model.LegalNode
	roots []string
}

func newBuilder() *builder {
	return &builder{nodes: make(map[string]*model.LegalNode)}
}

// uniqueID returns id unchanged when free, otherwise id_2, id_3, ...
func (b *builder) uniqueID(id string) string {
	if id == "" {
		id = "node"
	}
	if _, taken := b.nodes[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", id, n)
		if _, taken := b.nodes[candidate]; !taken {
			return candidate
		}
	}
}

// add registers the node under a collision-free id and returns that id.
func (b *builder) add(n *model.LegalNode, root bool) string {
	n.ID = b.uniqueID(n.ID)
	if n.Children == nil {
		n.Children = []string{}
	}
	b.nodes[n.ID] = n
	if root {
		b.roots = append(b.roots, n.ID)
	}
	return n.ID
}

func (b *builder) tree() *model.LegalDocumentTree {
	return &model.LegalDocumentTree{Nodes: b.nodes, RootNodes: b.roots}
}

// Shape (a): already-canonical {nodes, rootNodes}.

func isCanonical(m map[string]interface{}) bool {
	_, hasNodes := m["nodes"].(map[string]interface{})
	_, hasRoots := m["rootNodes"].([]interface{})
	return hasNodes && hasRoots
}

func normalizeCanonical(m map[string]interface{}) (*model.LegalDocumentTree, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("re-encode canonical document: %v", err)}
	}
	var tree model.LegalDocumentTree
	if err := json.Unmarshal(buf, &tree); err != nil {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("decode canonical document: %v", err)}
	}
	if len(tree.Nodes) == 0 {
		return nil, &MalformedDocumentError{Reason: "canonical document has no nodes"}
	}
	for _, n := range tree.Nodes {
		if n.Children == nil {
			n.Children = []string{}
		}
	}
	return &tree, nil
}

// Shape (b): single-root recursive object whose children field is a mapping
// of child-id to child-object.

func isRecursiveRoot(m map[string]interface{}) bool {
	if _, ok := m["id"].(string); !ok {
		return false
	}
	if _, ok := m["title"].(string); !ok {
		return false
	}
	children, present := m["children"]
	if !present {
		return true
	}
	_, isMap := children.(map[string]interface{})
	return isMap
}

func normalizeRecursiveRoot(m map[string]interface{}) (*model.LegalDocumentTree, error) {
	b := newBuilder()
	walkRecursive(b, m, "", 0, true)
	return b.tree(), nil
}

func walkRecursive(b *builder, m map[string]interface{}, fallbackID string, level int, root bool) string {
	node := nodeFromMap(m, fallbackID)
	node.Level = level
	id := b.add(node, root)

	childMap, _ := m["children"].(map[string]interface{})
	for _, key := range sortedKeys(childMap) {
		childObj, ok := childMap[key].(map[string]interface{})
		if !ok {
			continue
		}
		childID := walkRecursive(b, childObj, key, level+1, false)
		node.Children = append(node.Children, childID)
	}
	return id
}

// Shape (c): chapter/section nesting keyed by id; composed ids preserve the
// path (chapter_section_subsection).

var nestedSectionKeys = []string{"sections", "subsections", "paragraphs"}

func isChapterMap(m map[string]interface{}) bool {
	for _, v := range m {
		cm, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range nestedSectionKeys {
			if _, ok := cm[key].(map[string]interface{}); ok {
				return true
			}
		}
	}
	return false
}

func normalizeChapterMap(m map[string]interface{}) (*model.LegalDocumentTree, error) {
	b := newBuilder()
	for _, key := range sortedKeys(m) {
		cm, ok := m[key].(map[string]interface{})
		if !ok {
			continue
		}
		walkChapter(b, cm, key, 0, true)
	}
	if len(b.nodes) == 0 {
		return nil, &MalformedDocumentError{Reason: "chapter document has no chapter objects"}
	}
	return b.tree(), nil
}

func walkChapter(b *builder, m map[string]interface{}, composedID string, level int, root bool) string {
	node := nodeFromMap(m, composedID)
	node.ID = composedID
	node.Level = level
	id := b.add(node, root)

	for _, sectionKey := range nestedSectionKeys {
		sub, ok := m[sectionKey].(map[string]interface{})
		if !ok {
			continue
		}
		for _, sk := range sortedKeys(sub) {
			sm, ok := sub[sk].(map[string]interface{})
			if !ok {
				continue
			}
			childID := walkChapter(b, sm, composedID+"_"+sk, level+1, false)
			node.Children = append(node.Children, childID)
		}
	}
	return id
}

// Shape (d): agent-results wrapper around a root_sections array.

func isAgentResults(m map[string]interface{}) bool {
	return agentRootSections(m) != nil
}

func agentRootSections(m map[string]interface{}) []interface{} {
	discovery, ok := m["structure_discovery"].(map[string]interface{})
	if !ok {
		return nil
	}
	analysis, ok := discovery["structure_analysis"].(map[string]interface{})
	if !ok {
		return nil
	}
	structure, ok := analysis["document_structure"].(map[string]interface{})
	if !ok {
		return nil
	}
	sections, ok := structure["root_sections"].([]interface{})
	if !ok {
		return nil
	}
	return sections
}

func normalizeAgentResults(m map[string]interface{}) (*model.LegalDocumentTree, error) {
	sections := agentRootSections(m)
	if len(sections) == 0 {
		return nil, &MalformedDocumentError{Reason: "agent results contain no root sections"}
	}
	b := newBuilder()
	for i, raw := range sections {
		sm, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		walkSection(b, sm, fmt.Sprintf("section_%d", i+1), 0, true)
	}
	return b.tree(), nil
}

func walkSection(b *builder, m map[string]interface{}, fallbackID string, level int, root bool) string {
	node := nodeFromMap(m, fallbackID)
	node.Level = level
	id := b.add(node, root)

	children, _ := m["children"].([]interface{})
	for i, raw := range children {
		cm, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		childID := walkSection(b, cm, fmt.Sprintf("%s_%d", id, i+1), level+1, false)
		node.Children = append(node.Children, childID)
	}
	return id
}

// Shape (e): flat array of node-like objects, created in array order.

func normalizeFlatArray(arr []interface{}) (*model.LegalDocumentTree, error) {
	b := newBuilder()

	type entry struct {
		node      *model.LegalNode
		rawID     string
		parent    string
		hasParent bool
		children  []string
	}

	var entries []*entry
	// First occurrence of a raw id keeps it; later collisions are renamed,
	// and references keep resolving to the first occurrence.
	firstByRawID := make(map[string]string)

	for i, raw := range arr {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		node := nodeFromMap(m, fmt.Sprintf("node_%d", i+1))
		rawID := node.ID
		node.Children = nil
		b.add(node, false)
		if _, seen := firstByRawID[rawID]; !seen {
			firstByRawID[rawID] = node.ID
		}

		e := &entry{node: node, rawID: rawID}
		if p, ok := m["parent"].(string); ok && p != "" {
			e.parent = p
			e.hasParent = true
		}
		e.children = stringSlice(m["children"])
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, &MalformedDocumentError{Reason: "array document has no node objects"}
	}

	// Wire explicit child lists, then parent back-references.
	referenced := make(map[string]bool)
	for _, e := range entries {
		for _, rawChild := range e.children {
			childID, ok := firstByRawID[rawChild]
			if !ok || childID == e.node.ID {
				continue
			}
			if !containsString(e.node.Children, childID) {
				e.node.Children = append(e.node.Children, childID)
				referenced[childID] = true
			}
		}
	}
	for _, e := range entries {
		if !e.hasParent {
			continue
		}
		parentID, ok := firstByRawID[e.parent]
		if !ok || parentID == e.node.ID {
			continue
		}
		parent := b.nodes[parentID]
		if !containsString(parent.Children, e.node.ID) {
			parent.Children = append(parent.Children, e.node.ID)
		}
		referenced[e.node.ID] = true
	}

	// Roots: level 0 or no parent, as long as nothing references them.
	for _, e := range entries {
		if referenced[e.node.ID] {
			continue
		}
		if e.node.Level == 0 || !e.hasParent {
			b.roots = append(b.roots, e.node.ID)
		}
	}
	return b.tree(), nil
}

// Shape (f): flat object keyed by id, skipping known metadata keys.

var flatObjectSkipKeys = map[string]bool{
	"metadata":          true,
	"document_metadata": true,
	"document_info":     true,
	"statistics":        true,
	"version":           true,
	"source":            true,
	"generated_at":      true,
}

func isFlatObject(m map[string]interface{}) bool {
	for key, v := range m {
		if flatObjectSkipKeys[key] {
			continue
		}
		cm, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := cm["title"].(string); ok {
			return true
		}
		if _, ok := cm["content"].(string); ok {
			return true
		}
	}
	return false
}

func normalizeFlatObject(m map[string]interface{}) (*model.LegalDocumentTree, error) {
	b := newBuilder()
	childRefs := make(map[string][]string)

	for _, key := range sortedKeys(m) {
		if flatObjectSkipKeys[key] {
			continue
		}
		cm, ok := m[key].(map[string]interface{})
		if !ok {
			continue
		}
		node := nodeFromMap(cm, key)
		node.ID = key
		node.Children = nil
		b.add(node, false)
		childRefs[node.ID] = stringSlice(cm["children"])
	}
	if len(b.nodes) == 0 {
		return nil, &MalformedDocumentError{Reason: "flat object document has no node objects"}
	}

	referenced := make(map[string]bool)
	for _, id := range sortedKeys2(childRefs) {
		node := b.nodes[id]
		for _, child := range childRefs[id] {
			if _, exists := b.nodes[child]; !exists || child == id {
				continue
			}
			if !containsString(node.Children, child) {
				node.Children = append(node.Children, child)
				referenced[child] = true
			}
		}
	}

	// Roots are inferred: nodes nothing points at, in key order.
	for _, id := range sortedKeys(m) {
		node, exists := b.nodes[id]
		if !exists || referenced[node.ID] {
			continue
		}
		b.roots = append(b.roots, node.ID)
	}
	return b.tree(), nil
}

// assignDepths recomputes every node's level by breadth-first traversal from
// the roots. Traversal-computed depth wins over declared levels.
func assignDepths(tree *model.LegalDocumentTree) {
	type item struct {
		id    string
		depth int
	}
	seen := make(map[string]bool)
	var queue []item
	for _, root := range tree.RootNodes {
		if _, ok := tree.Nodes[root]; ok && !seen[root] {
			seen[root] = true
			queue = append(queue, item{root, 0})
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node := tree.Nodes[cur.id]
		node.Level = cur.depth
		for _, child := range node.Children {
			if _, ok := tree.Nodes[child]; !ok || seen[child] {
				continue
			}
			seen[child] = true
			queue = append(queue, item{child, cur.depth + 1})
		}
	}
}

// Helpers shared by the shape converters.

func nodeFromMap(m map[string]interface{}, fallbackID string) *model.LegalNode {
	node := &model.LegalNode{
		ID:      stringValue(m["id"]),
		Title:   stringValue(m["title"]),
		Content: stringValue(m["content"]),
		Level:   intValue(m["level"]),
	}
	if node.ID == "" {
		node.ID = fallbackID
	}
	if node.Title == "" {
		node.Title = node.ID
	}
	if md := metadataFromMap(m); md != nil {
		node.Metadata = md
	}
	return node
}

func metadataFromMap(m map[string]interface{}) *model.NodeMetadata {
	raw, ok := m["metadata"].(map[string]interface{})
	if !ok {
		// Some shapes inline metadata fields on the node object itself.
		raw = m
	}
	md := &model.NodeMetadata{
		Keywords:        stringSlice(raw["keywords"]),
		MainThemes:      stringSlice(raw["main_themes"]),
		KeyPoints:       stringSlice(raw["key_points"]),
		Scope:           stringValue(raw["scope"]),
		PracticalImpact: stringValue(raw["practical_impact"]),
		LegalReferences: stringSlice(raw["legal_references"]),
		SectionNumber:   stringValue(raw["section_number"]),
		SectionType:     stringValue(raw["section_type"]),
	}
	if len(md.Keywords) == 0 && len(md.MainThemes) == 0 && len(md.KeyPoints) == 0 &&
		md.Scope == "" && md.PracticalImpact == "" && len(md.LegalReferences) == 0 &&
		md.SectionNumber == "" && md.SectionType == "" {
		return nil
	}
	return md
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys2(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
