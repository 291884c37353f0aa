package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON value out of a model response. Providers that
// cannot enforce a response format wrap JSON in markdown fences or prose;
// this strips fences and trims to the outermost object or array before
// checking validity.
func ExtractJSON(content string) (json.RawMessage, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, fmt.Errorf("empty oracle response")
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		objStart := strings.IndexAny(text, "{[")
		if objStart < 0 {
			return nil, fmt.Errorf("response contains no JSON value")
		}
		var closer string
		if text[objStart] == '{' {
			closer = "}"
		} else {
			closer = "]"
		}
		objEnd := strings.LastIndex(text, closer)
		if objEnd <= objStart {
			return nil, fmt.Errorf("response contains an unterminated JSON value")
		}
		text = text[objStart : objEnd+1]
	}

	raw := json.RawMessage(text)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	return raw, nil
}
