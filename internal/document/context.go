package document

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lexnav/internal/model"
)

const (
	previewLimit = 150
	scopeLimit   = 100
	impactLimit  = 80
	maxListItems = 3
)

// NodeContext builds the textual blob the oracle sees for one node. Leaves
// vastly outnumber parents and their titles are usually dispositive, so a
// leaf gets its title only. A parent decision drives traversal width, so it
// carries a content preview and bounded metadata.
func NodeContext(node *model.LegalNode) string {
	if node.IsLeaf() {
		return fmt.Sprintf("Title: %s | Type: Leaf node (detailed provision)", node.Title)
	}

	parts := []string{fmt.Sprintf("Title: %s", node.Title)}

	if preview := contentPreview(node.Content, previewLimit); preview != "" {
		parts = append(parts, fmt.Sprintf("Context: %s", preview))
	}
	if md := node.Metadata; md != nil {
		if len(md.MainThemes) > 0 {
			parts = append(parts, fmt.Sprintf("Themes: %s", joinBounded(md.MainThemes, maxListItems)))
		}
		if len(md.KeyPoints) > 0 {
			parts = append(parts, fmt.Sprintf("Key points: %s", joinBounded(md.KeyPoints, maxListItems)))
		}
		if md.Scope != "" {
			parts = append(parts, fmt.Sprintf("Scope: %s", truncate(md.Scope, scopeLimit)))
		}
		if md.PracticalImpact != "" {
			parts = append(parts, fmt.Sprintf("Impact: %s", truncate(md.PracticalImpact, impactLimit)))
		}
	}
	parts = append(parts, fmt.Sprintf("Type: Parent node (%d children)", len(node.Children)))
	return strings.Join(parts, " | ")
}

// contentPreview extracts a short contextual preview: the first sentence,
// extended to the second when the first is under 20 characters, truncated
// at the limit with an ellipsis.
func contentPreview(content string, limit int) string {
	text := strings.TrimSpace(content)
	if text == "" {
		return ""
	}

	sentences := splitSentences(text)
	preview := sentences[0]
	if len(preview) < 20 && len(sentences) > 1 {
		preview = preview + " " + sentences[1]
	}
	return truncate(preview, limit)
}

// splitSentences cuts text at sentence-ending punctuation followed by a
// space. The terminator stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	return sentences
}

func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	return strings.TrimSpace(text[:limit]) + "..."
}

func joinBounded(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	return strings.Join(items, "; ")
}
