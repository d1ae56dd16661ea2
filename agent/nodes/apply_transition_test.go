package nodes

import (
	"context"
	"testing"
	"time"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

type countingGateway struct {
	calls int
}

func (g *countingGateway) Invoke(ctx context.Context, tool string, params map[string]statex.EntityValue) statex.ToolCall {
	g.calls++
	call := statex.NewToolCall("t#1", tool, params, time.Now())
	_ = call.Complete("ok", time.Now())
	return *call
}

func balanceState(t *testing.T) *GraphState {
	t.Helper()
	catalog := taskx.NewCatalog()
	def, _ := catalog.Lookup(taskx.TypeBalanceInquiry)
	ctx := statex.NewConversationContext("conv-1", "user-1", time.Now())
	ctx.BeginTask(string(def.Type), def.FieldNames())
	return &GraphState{Ctx: ctx, Def: def, Outcome: statex.OutcomeNone}
}

func TestApplyTransitionAutoConfirmOnlyOnResolvingTurn(t *testing.T) {
	t.Parallel()

	// The turn that resolved the intent goes straight to execution.
	s := balanceState(t)
	s.TaskResolved = true
	s, err := ApplyTransition(s)
	if err != nil {
		t.Fatalf("ApplyTransition() error = %v", err)
	}
	if s.Outcome != statex.OutcomeConfirmed || s.Ctx.State.Phase != statex.PhaseExecution {
		t.Fatalf("resolving turn: outcome=%q phase=%q, want confirmed/execution", s.Outcome, s.Ctx.State.Phase)
	}

	// A later turn on the same task stops at confirmation.
	s = balanceState(t)
	s.Ctx.State.Phase = statex.PhaseConfirmation
	s, err = ApplyTransition(s)
	if err != nil {
		t.Fatalf("ApplyTransition() error = %v", err)
	}
	if s.Outcome != statex.OutcomeNone {
		t.Fatalf("later turn: outcome = %q, want none without explicit confirm", s.Outcome)
	}
	if s.Ctx.State.Phase != statex.PhaseConfirmation {
		t.Fatalf("later turn: phase = %q, want confirmation", s.Ctx.State.Phase)
	}
}

func TestExecuteTaskSkipsFinalizedTurn(t *testing.T) {
	t.Parallel()

	gateway := &countingGateway{}

	s := balanceState(t)
	s.Ctx.State.Phase = statex.PhaseExecution
	s.Reply = GenericClarification
	s.ReplyFinal = true

	s, err := ExecuteTask(context.Background(), s, gateway)
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if gateway.calls != 0 {
		t.Fatalf("tool invoked %d times on a finalized turn, want 0", gateway.calls)
	}
	if len(s.ToolCalls) != 0 {
		t.Fatalf("tool calls recorded: %+v", s.ToolCalls)
	}

	s.ReplyFinal = false
	if _, err := ExecuteTask(context.Background(), s, gateway); err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if gateway.calls != 1 {
		t.Fatalf("tool invoked %d times, want 1", gateway.calls)
	}
}
