package contract

import (
	"context"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

// Classifier turns raw user text plus context into an intent verdict.
// Implementations are backed by a nondeterministic model call; only the
// post-processing contract is fixed (entities flattened, confidence in
// [0,1], clarification flagged below the threshold).
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (IntentClassification, error)
}

// Responder composes the assistant reply from the turn's state and tool
// results. Failures surface as ErrModelCall; the orchestrator degrades
// to deterministic templates.
type Responder interface {
	Compose(ctx context.Context, req ComposeRequest) (string, error)
}

// Registry hands out the model-backed collaborators.
type Registry interface {
	Classifier() Classifier
	Responder() Responder
}

// ToolGateway executes one named tool. Errors are captured on the
// returned ToolCall (status=error), never propagated; each ToolCall is
// attempted at most once.
type ToolGateway interface {
	Invoke(ctx context.Context, tool string, params map[string]statex.EntityValue) statex.ToolCall
}
