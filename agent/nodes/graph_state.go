package nodes

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrNilContext     = errors.New("conversation context is nil")
)

// GraphInput enters the turn pipeline. Context is the conversation
// captured under its session lock; the pipeline is its only mutator for
// the duration of the turn.
type GraphInput struct {
	Context *statex.ConversationContext
	Text    string
	Now     time.Time
}

// GraphOutput leaves the turn pipeline.
type GraphOutput struct {
	Reply    string
	Snapshot statex.ConversationContext
}

// GraphState is threaded through the pipeline nodes.
type GraphState struct {
	Ctx  *statex.ConversationContext
	Text string
	Now  time.Time

	// Def is the active task definition, set either from the stored
	// current task or by intent resolution this turn.
	Def *taskx.Definition

	// TaskResolved is set when this turn's classification installed the
	// task. Auto-confirmation is restricted to that turn: once a
	// confirmation has been presented, only an explicit confirm may
	// reach execution.
	TaskResolved bool

	Classification *contractx.IntentClassification
	UserMeta       *statex.MessageMeta
	Outcome        statex.TurnOutcome
	NextQuestion   string
	ToolCalls      []statex.ToolCall

	// Reply, once final, short-circuits the responder: it was produced
	// deterministically (clarification, busy fallback) and must not be
	// rephrased by a model that may be unavailable.
	Reply      string
	ReplyFinal bool

	// Degraded marks that a model call failed this turn; the turn still
	// completes with a fallback reply.
	Degraded bool
}

// PrepareTurn validates the raw input and resolves the active task.
func PrepareTurn(in GraphInput, catalog *taskx.Catalog) (*GraphState, error) {
	if in.Context == nil {
		return nil, ErrNilContext
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	s := &GraphState{
		Ctx:      in.Context,
		Text:     text,
		Now:      in.Now.UTC(),
		Outcome:  statex.OutcomeNone,
		UserMeta: &statex.MessageMeta{},
	}

	if current := in.Context.State.CurrentTask; current != "" {
		def, ok := catalog.Lookup(taskx.Type(current))
		if !ok {
			// A stored task the catalog no longer knows: drop it and
			// reclassify instead of failing the turn.
			in.Context.ClearTask()
		} else {
			s.Def = def
		}
	}
	return s, nil
}
