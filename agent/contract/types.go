package contract

import (
	"time"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

// IntentClassification is the per-turn verdict of the classifier. It is
// transient: consumed by the state machine and kept only inside the
// triggering message's metadata.
type IntentClassification struct {
	Intent                string                       `json:"intent"`
	Confidence            float64                      `json:"confidence"`
	Entities              map[string]statex.EntityValue `json:"entities,omitempty"`
	ClarificationNeeded   bool                         `json:"clarification_needed,omitempty"`
	ClarificationQuestion string                       `json:"clarification_question,omitempty"`
}

// ClassifyRequest carries the user turn plus the dialogue context the
// model needs to extract entities consistently across turns.
type ClassifyRequest struct {
	UserMessage string
	ActiveTask  string
	Collected   map[string]statex.EntityValue
	History     []statex.Message
	Now         time.Time
}

// ComposeRequest asks the responder for the assistant reply of a turn.
type ComposeRequest struct {
	Phase        statex.Phase
	UserMessage  string
	TaskType     string
	Collected    map[string]statex.EntityValue
	NextQuestion string
	ToolCalls    []statex.ToolCall
	History      []statex.Message
}
