package entities

// StandupExtraction is the structured output the extraction model must emit.
// The shape is a fixed contract: a response missing any top-level key is a
// failed extraction, never partially accepted.
type StandupExtraction struct {
	Summary      string                `json:"summary"`
	ActionItems  []ExtractedActionItem `json:"actionItems"`
	Blockers     []ExtractedBlocker    `json:"blockers"`
	Decisions    []ExtractedDecision   `json:"decisions"`
	Participants []string              `json:"participants"`
}

// ExtractedActionItem is one action item as reported by the model. Assignee is
// a free-text name resolved against users later; DueDate is an ISO 8601 date.
type ExtractedActionItem struct {
	Description string `json:"description"`
	Assignee    string `json:"assignee,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// ExtractedBlocker is one impediment as reported by the model
type ExtractedBlocker struct {
	Description string `json:"description"`
	Resolved    bool   `json:"resolved"`
}

// ExtractedDecision is one decision as reported by the model
type ExtractedDecision struct {
	Description string `json:"description"`
}
