package nodes

import (
	"strings"
	"testing"
	"time"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
	toolx "github.com/pattarin/BankPilot-Conversational-Banking/agent/tool"
)

func loanState(t *testing.T, phase statex.Phase) *GraphState {
	t.Helper()
	catalog := taskx.NewCatalog()
	def, _ := catalog.Lookup(taskx.TypeLoanApplication)

	ctx := statex.NewConversationContext("conv-1", "user-1", time.Now())
	ctx.BeginTask(string(def.Type), def.FieldNames())
	ctx.State.CollectedFields = map[string]statex.EntityValue{
		"amount":  statex.NumberValue(25000),
		"purpose": statex.StringValue("car"),
		"tenure":  statex.NumberValue(36),
	}
	ctx.State.Phase = phase

	return &GraphState{Ctx: ctx, Def: def, Outcome: statex.OutcomeNone}
}

func TestFallbackReplyInformationGathering(t *testing.T) {
	t.Parallel()

	s := loanState(t, statex.PhaseInformationGathering)
	s.NextQuestion = "Over how many months would you like to repay?"

	if got := FallbackReply(s); got != s.NextQuestion {
		t.Fatalf("reply = %q, want the pending question", got)
	}

	s.NextQuestion = ""
	if got := FallbackReply(s); got != GenericClarification {
		t.Fatalf("reply = %q, want generic clarification without a question", got)
	}
}

func TestFallbackReplyConfirmationSummary(t *testing.T) {
	t.Parallel()

	s := loanState(t, statex.PhaseConfirmation)
	got := FallbackReply(s)

	for _, want := range []string{"loan application", "25000", "car", "36", "(yes/no)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}

func TestFallbackReplyAfterFailedExecution(t *testing.T) {
	t.Parallel()

	s := loanState(t, statex.PhaseConfirmation)
	s.Outcome = statex.OutcomeFailed

	got := FallbackReply(s)
	if !strings.Contains(got, "couldn't complete") {
		t.Fatalf("reply = %q, want a retry-or-cancel prompt", got)
	}
}

func TestFallbackReplyCompletionRendersToolResult(t *testing.T) {
	t.Parallel()

	s := loanState(t, statex.PhaseCompletion)
	s.Outcome = statex.OutcomeExecuted
	call := statex.NewToolCall("account.balance#1", "account.balance", nil, time.Now())
	if err := call.Complete(toolx.BalanceOutput{
		AccountNumber: "4402-1188-2201",
		Balance:       8452.17,
		Currency:      "USD",
	}, time.Now()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	s.ToolCalls = []statex.ToolCall{*call}

	got := FallbackReply(s)
	if !strings.Contains(got, "8452.17") || !strings.Contains(got, "USD") {
		t.Fatalf("reply = %q, want balance figures from the tool result", got)
	}
}

func TestFallbackReplyCancellation(t *testing.T) {
	t.Parallel()

	s := loanState(t, statex.PhaseCompletion)
	s.Outcome = statex.OutcomeCancelled

	got := FallbackReply(s)
	if !strings.Contains(strings.ToLower(got), "cancelled") {
		t.Fatalf("reply = %q, want a cancellation acknowledgement", got)
	}
}

func TestFallbackReplyEmptyKnowledgeSearch(t *testing.T) {
	t.Parallel()

	s := loanState(t, statex.PhaseCompletion)
	s.Outcome = statex.OutcomeExecuted
	call := statex.NewToolCall("knowledge_base.search#1", "knowledge_base.search", nil, time.Now())
	if err := call.Complete(toolx.KnowledgeSearchOutput{Query: "fx fees"}, time.Now()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	s.ToolCalls = []statex.ToolCall{*call}

	got := FallbackReply(s)
	if !strings.Contains(got, "couldn't find") {
		t.Fatalf("reply = %q, want an empty-result acknowledgement", got)
	}
}
