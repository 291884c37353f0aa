package traverse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/lexnav/internal/document"
	"github.com/ppiankov/lexnav/internal/model"
	"github.com/ppiankov/lexnav/internal/oracle"
)

const evaluationSystemPrompt = `You are a legal navigation assistant. You score sections of a consumer-rights statute for relevance to a specific case. You never interpret the law or give legal advice; you only judge which sections matter for this case and whether their subsections deserve inspection.`

// EvaluationSchema constrains the batch evaluation response: one entry per
// submitted node, in submission order, echoing each id verbatim.
var EvaluationSchema = &oracle.Schema{
	Name: "node_evaluations",
	Definition: json.RawMessage(`{
  "type": "object",
  "properties": {
    "nodeEvaluations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "nodeId": {"type": "string"},
          "isRelevant": {"type": "boolean"},
          "relevanceScore": {"type": "number", "minimum": 0, "maximum": 1},
          "reasoning": {"type": "string"},
          "shouldExploreChildren": {"type": "boolean"}
        },
        "required": ["nodeId", "isRelevant", "relevanceScore", "reasoning", "shouldExploreChildren"],
        "additionalProperties": false
      }
    }
  },
  "required": ["nodeEvaluations"],
  "additionalProperties": false
}`),
}

type nodeEvaluation struct {
	NodeID                string  `json:"nodeId"`
	IsRelevant            bool    `json:"isRelevant"`
	RelevanceScore        float64 `json:"relevanceScore"`
	Reasoning             string  `json:"reasoning"`
	ShouldExploreChildren bool    `json:"shouldExploreChildren"`
}

type batchEvaluationResponse struct {
	NodeEvaluations []nodeEvaluation `json:"nodeEvaluations"`
}

// buildEvaluationPrompt enumerates the chunk's nodes with their extracted
// context, states the case, and lists previously-relevant titles so the
// oracle keeps continuity across levels.
func buildEvaluationPrompt(tree *model.LegalDocumentTree, ids []string, caseInfo map[string]interface{}, previousTitles []string) string {
	var b strings.Builder

	b.WriteString("Case information:\n")
	caseJSON, err := json.MarshalIndent(caseInfo, "", "  ")
	if err != nil {
		caseJSON = []byte(fmt.Sprintf("%v", caseInfo))
	}
	b.Write(caseJSON)
	b.WriteString("\n\n")

	if len(previousTitles) > 0 {
		b.WriteString("Sections already identified as relevant at earlier levels:\n")
		for _, title := range previousTitles {
			fmt.Fprintf(&b, "- %s\n", title)
		}
		b.WriteString("\n")
	}

	b.WriteString("Evaluate each of the following statute nodes for relevance to the case:\n\n")
	for i, id := range ids {
		node := tree.Node(id)
		fmt.Fprintf(&b, "Node %d:\n", i+1)
		fmt.Fprintf(&b, "  ID: %q\n", id)
		if node != nil {
			fmt.Fprintf(&b, "  %s\n", document.NodeContext(node))
		}
		b.WriteString("\n")
	}

	b.WriteString("Return nodeEvaluations with exactly one entry per node, in the order given. ")
	b.WriteString("Repeat each node's id verbatim in nodeId. ")
	b.WriteString("relevanceScore expresses how material the node is to this case; ")
	b.WriteString("shouldExploreChildren states whether its subsections deserve inspection, independent of the score.")
	return b.String()
}
