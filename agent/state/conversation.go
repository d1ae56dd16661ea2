package state

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the dialogue state machine phase for one conversation.
type Phase string

const (
	PhaseGreeting             Phase = "greeting"
	PhaseIntentDetection      Phase = "intent_detection"
	PhaseInformationGathering Phase = "information_gathering"
	PhaseConfirmation         Phase = "confirmation"
	PhaseExecution            Phase = "execution"
	PhaseCompletion           Phase = "completion"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ToolCallStatus string

const (
	ToolCallPending ToolCallStatus = "pending"
	ToolCallSuccess ToolCallStatus = "success"
	ToolCallError   ToolCallStatus = "error"
)

var ErrToolCallSettled = errors.New("tool call already settled")

// ToolError is the structured failure payload recorded on a ToolCall.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ToolCall records one tool invocation. Status transitions exactly once
// from pending to success or error and is immutable afterwards.
type ToolCall struct {
	ID          string                 `json:"id"`
	Tool        string                 `json:"tool"`
	Params      map[string]EntityValue `json:"params,omitempty"`
	Result      any                    `json:"result,omitempty"`
	Err         *ToolError             `json:"error,omitempty"`
	Status      ToolCallStatus         `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at,omitempty"`
}

func NewToolCall(id, tool string, params map[string]EntityValue, now time.Time) *ToolCall {
	return &ToolCall{
		ID:        id,
		Tool:      tool,
		Params:    CloneEntities(params),
		Status:    ToolCallPending,
		StartedAt: now.UTC(),
	}
}

func (t *ToolCall) Complete(result any, now time.Time) error {
	if t.Status != ToolCallPending {
		return ErrToolCallSettled
	}
	t.Result = result
	t.Status = ToolCallSuccess
	t.CompletedAt = now.UTC()
	return nil
}

func (t *ToolCall) Fail(code, message string, now time.Time) error {
	if t.Status != ToolCallPending {
		return ErrToolCallSettled
	}
	t.Err = &ToolError{Code: code, Message: message}
	t.Status = ToolCallError
	t.CompletedAt = now.UTC()
	return nil
}

// MessageMeta carries per-turn classification and tool bookkeeping.
type MessageMeta struct {
	Intent     string                 `json:"intent,omitempty"`
	Confidence float64                `json:"confidence,omitempty"`
	Entities   map[string]EntityValue `json:"entities,omitempty"`
	ToolCalls  []ToolCall             `json:"tool_calls,omitempty"`
}

// Message is one entry in the append-only conversation log.
type Message struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Meta      *MessageMeta `json:"meta,omitempty"`
}

// TaskProgress mirrors the collected fields with task-level bookkeeping.
type TaskProgress struct {
	TaskType   string                 `json:"task_type"`
	Step       int                    `json:"step"`
	TotalSteps int                    `json:"total_steps"`
	Completed  bool                   `json:"completed"`
	Data       map[string]EntityValue `json:"data,omitempty"`
}

// ConversationState holds the phase machine bookkeeping.
// Invariant: RequiredFields is always the task's declared fields minus
// the keys of CollectedFields, in declared order.
type ConversationState struct {
	Phase            Phase                  `json:"phase"`
	CurrentTask      string                 `json:"current_task,omitempty"`
	RequiredFields   []string               `json:"required_fields,omitempty"`
	CollectedFields  map[string]EntityValue `json:"collected_fields,omitempty"`
	PendingQuestions []string               `json:"pending_questions,omitempty"`
}

// ConversationContext is the per-session dialogue state. It is owned by
// the registry entry for its id and mutated only by the turn that holds
// that entry's lock.
type ConversationContext struct {
	ConversationID string                 `json:"conversation_id"`
	UserID         string                 `json:"user_id"`
	State          ConversationState      `json:"state"`
	Entities       map[string]EntityValue `json:"entities,omitempty"`
	Messages       []Message              `json:"messages"`
	Progress       *TaskProgress          `json:"progress,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Greeting is emitted when a context is created, before the first user
// message is processed.
const Greeting = "Hello! I'm your banking assistant. I can check balances and recent transactions, " +
	"submit loan applications, block cards, and answer banking product questions."

func NewConversationContext(conversationID, userID string, now time.Time) *ConversationContext {
	c := &ConversationContext{
		ConversationID: conversationID,
		UserID:         userID,
		State: ConversationState{
			Phase:           PhaseGreeting,
			CollectedFields: make(map[string]EntityValue, 4),
		},
		Entities:  make(map[string]EntityValue, 8),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	c.Append(Message{Role: RoleAssistant, Content: Greeting, Timestamp: now.UTC()})
	return c
}

func (c *ConversationContext) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

// Append adds a message to the log. The log is append-only; entries are
// never mutated after this call.
func (c *ConversationContext) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Recent returns up to n trailing log entries for prompt context.
func (c *ConversationContext) Recent(n int) []Message {
	if n <= 0 || len(c.Messages) == 0 {
		return nil
	}
	if len(c.Messages) <= n {
		return append([]Message(nil), c.Messages...)
	}
	return append([]Message(nil), c.Messages[len(c.Messages)-n:]...)
}

// BeginTask installs a task and its declared required-field order.
func (c *ConversationContext) BeginTask(taskType string, required []string) {
	c.State.CurrentTask = taskType
	c.State.RequiredFields = append([]string(nil), required...)
	if c.State.CollectedFields == nil {
		c.State.CollectedFields = make(map[string]EntityValue, len(required))
	}
	c.Progress = &TaskProgress{
		TaskType:   taskType,
		TotalSteps: len(required),
		Data:       make(map[string]EntityValue, len(required)),
	}
}

// ClearTask resets task bookkeeping after completion or cancellation.
// Collected fields are dropped with the task; the free-form entity bag
// survives for the next task.
func (c *ConversationContext) ClearTask() {
	c.State.CurrentTask = ""
	c.State.RequiredFields = nil
	c.State.CollectedFields = make(map[string]EntityValue, 4)
	c.State.PendingQuestions = nil
}

// SyncCollected installs merged fields and recomputes RequiredFields
// against the declared order so the invariant holds after every merge.
func (c *ConversationContext) SyncCollected(declared []string, collected map[string]EntityValue) {
	c.State.CollectedFields = collected
	remaining := make([]string, 0, len(declared))
	for _, f := range declared {
		if _, ok := collected[f]; !ok {
			remaining = append(remaining, f)
		}
	}
	c.State.RequiredFields = remaining
	if c.Progress != nil {
		c.Progress.Data = CloneEntities(collected)
		c.Progress.Step = len(declared) - len(remaining)
	}
}

// Snapshot deep-copies the context for returning across the boundary.
func (c *ConversationContext) Snapshot() ConversationContext {
	cp := *c
	cp.Entities = CloneEntities(c.Entities)
	cp.Messages = append([]Message(nil), c.Messages...)
	cp.State.RequiredFields = append([]string(nil), c.State.RequiredFields...)
	cp.State.PendingQuestions = append([]string(nil), c.State.PendingQuestions...)
	cp.State.CollectedFields = CloneEntities(c.State.CollectedFields)
	if c.Progress != nil {
		p := *c.Progress
		p.Data = CloneEntities(c.Progress.Data)
		cp.Progress = &p
	}
	return cp
}

// TurnOutcome is what the current turn concluded about the active task.
type TurnOutcome string

const (
	OutcomeNone      TurnOutcome = "none"
	OutcomeConfirmed TurnOutcome = "confirmed"
	OutcomeExecuted  TurnOutcome = "executed"
	OutcomeFailed    TurnOutcome = "failed"
	OutcomeCancelled TurnOutcome = "cancelled"
)

// NextPhase is the pure transition function of the state machine:
// phase follows from task presence, remaining required fields, and the
// turn's execution outcome. Failed executions fall back to confirmation
// so the user can retry or cancel.
func NextPhase(hasTask bool, missing int, outcome TurnOutcome) Phase {
	if !hasTask {
		return PhaseIntentDetection
	}
	switch outcome {
	case OutcomeExecuted, OutcomeCancelled:
		return PhaseCompletion
	case OutcomeFailed:
		return PhaseConfirmation
	case OutcomeConfirmed:
		return PhaseExecution
	}
	if missing > 0 {
		return PhaseInformationGathering
	}
	return PhaseConfirmation
}
