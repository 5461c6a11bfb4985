package standup

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
)

// requiredExtractionKeys must all be present in the model response, even when
// their values are empty arrays. A response missing any of them is rejected
// rather than treated as "nothing found".
var requiredExtractionKeys = []string{"summary", "actionItems", "blockers", "decisions", "participants"}

// Parser handles parsing and validation of extraction model responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseExtraction parses the raw model output into a StandupExtraction,
// enforcing the strict schema contract: all five top-level keys required.
func (p *Parser) ParseExtraction(raw string) (*entities.StandupExtraction, error) {
	raw = extractJSON(raw)
	if raw == "" {
		return nil, fmt.Errorf("extraction response is empty")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	for _, key := range requiredExtractionKeys {
		if _, ok := keys[key]; !ok {
			return nil, fmt.Errorf("extraction response missing required key %q", key)
		}
	}

	var result entities.StandupExtraction
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	// Normalize nil slices so downstream code never branches on nil.
	if result.ActionItems == nil {
		result.ActionItems = make([]entities.ExtractedActionItem, 0)
	}
	if result.Blockers == nil {
		result.Blockers = make([]entities.ExtractedBlocker, 0)
	}
	if result.Decisions == nil {
		result.Decisions = make([]entities.ExtractedDecision, 0)
	}
	if result.Participants == nil {
		result.Participants = make([]string, 0)
	}

	return &result, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
