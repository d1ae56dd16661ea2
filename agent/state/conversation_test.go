package state

import (
	"errors"
	"testing"
	"time"
)

func TestNextPhase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hasTask bool
		missing int
		outcome TurnOutcome
		want    Phase
	}{
		{name: "no task", hasTask: false, missing: 0, outcome: OutcomeNone, want: PhaseIntentDetection},
		{name: "missing fields", hasTask: true, missing: 2, outcome: OutcomeNone, want: PhaseInformationGathering},
		{name: "complete fields", hasTask: true, missing: 0, outcome: OutcomeNone, want: PhaseConfirmation},
		{name: "confirmed", hasTask: true, missing: 0, outcome: OutcomeConfirmed, want: PhaseExecution},
		{name: "executed", hasTask: true, missing: 0, outcome: OutcomeExecuted, want: PhaseCompletion},
		{name: "cancelled", hasTask: true, missing: 1, outcome: OutcomeCancelled, want: PhaseCompletion},
		{name: "failed returns to confirmation", hasTask: true, missing: 0, outcome: OutcomeFailed, want: PhaseConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NextPhase(tt.hasTask, tt.missing, tt.outcome); got != tt.want {
				t.Fatalf("NextPhase(%v, %d, %q) = %q, want %q", tt.hasTask, tt.missing, tt.outcome, got, tt.want)
			}
		})
	}
}

func TestToolCallSettlesExactlyOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	call := NewToolCall("account.balance#1", "account.balance", nil, now)
	if call.Status != ToolCallPending {
		t.Fatalf("new call status = %q, want %q", call.Status, ToolCallPending)
	}

	if err := call.Complete("ok", now.Add(time.Second)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if call.Status != ToolCallSuccess {
		t.Fatalf("status after Complete = %q, want %q", call.Status, ToolCallSuccess)
	}
	if err := call.Fail("late", "too late", now.Add(2*time.Second)); !errors.Is(err, ErrToolCallSettled) {
		t.Fatalf("Fail() after Complete error = %v, want ErrToolCallSettled", err)
	}
	if err := call.Complete("again", now.Add(2*time.Second)); !errors.Is(err, ErrToolCallSettled) {
		t.Fatalf("second Complete() error = %v, want ErrToolCallSettled", err)
	}
	if call.Err != nil {
		t.Fatalf("settled call gained error payload: %+v", call.Err)
	}
}

func TestToolCallFail(t *testing.T) {
	t.Parallel()

	now := time.Now()
	call := NewToolCall("loan.submit#1", "loan.submit", nil, now)
	if err := call.Fail("timeout", "deadline exceeded", now); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if call.Status != ToolCallError {
		t.Fatalf("status = %q, want %q", call.Status, ToolCallError)
	}
	if call.Err == nil || call.Err.Code != "timeout" {
		t.Fatalf("error payload = %+v, want code %q", call.Err, "timeout")
	}
	if err := call.Complete("nope", now); !errors.Is(err, ErrToolCallSettled) {
		t.Fatalf("Complete() after Fail error = %v, want ErrToolCallSettled", err)
	}
}

func TestNewConversationContextOpensWithGreeting(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := NewConversationContext("conv-1", "user-1", now)

	if ctx.State.Phase != PhaseGreeting {
		t.Fatalf("phase = %q, want %q", ctx.State.Phase, PhaseGreeting)
	}
	if len(ctx.Messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(ctx.Messages))
	}
	if ctx.Messages[0].Role != RoleAssistant || ctx.Messages[0].Content != Greeting {
		t.Fatalf("opening message = %+v, want assistant greeting", ctx.Messages[0])
	}
}

func TestAppendIsAppendOnly(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ctx := NewConversationContext("conv-1", "user-1", now)
	ctx.Append(Message{Role: RoleUser, Content: "hi", Timestamp: now})
	ctx.Append(Message{Role: RoleAssistant, Content: "hello", Timestamp: now})

	if len(ctx.Messages) != 3 {
		t.Fatalf("message count = %d, want 3", len(ctx.Messages))
	}
	if ctx.Messages[1].Content != "hi" || ctx.Messages[2].Content != "hello" {
		t.Fatalf("messages out of order: %q then %q", ctx.Messages[1].Content, ctx.Messages[2].Content)
	}
}

func TestRecent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ctx := NewConversationContext("conv-1", "user-1", now)
	for _, content := range []string{"a", "b", "c"} {
		ctx.Append(Message{Role: RoleUser, Content: content, Timestamp: now})
	}

	got := ctx.Recent(2)
	if len(got) != 2 || got[0].Content != "b" || got[1].Content != "c" {
		t.Fatalf("Recent(2) = %+v, want trailing b, c", got)
	}
	if all := ctx.Recent(100); len(all) != 4 {
		t.Fatalf("Recent(100) length = %d, want 4", len(all))
	}
	if none := ctx.Recent(0); none != nil {
		t.Fatalf("Recent(0) = %+v, want nil", none)
	}
}

func TestSyncCollectedPreservesDeclaredOrder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ctx := NewConversationContext("conv-1", "user-1", now)
	declared := []string{"amount", "purpose", "tenure"}
	ctx.BeginTask("loan_application", declared)

	ctx.SyncCollected(declared, map[string]EntityValue{"purpose": StringValue("car")})
	want := []string{"amount", "tenure"}
	if len(ctx.State.RequiredFields) != 2 || ctx.State.RequiredFields[0] != want[0] || ctx.State.RequiredFields[1] != want[1] {
		t.Fatalf("RequiredFields = %v, want %v", ctx.State.RequiredFields, want)
	}
	if ctx.Progress.Step != 1 || ctx.Progress.TotalSteps != 3 {
		t.Fatalf("progress = %d/%d, want 1/3", ctx.Progress.Step, ctx.Progress.TotalSteps)
	}

	ctx.SyncCollected(declared, map[string]EntityValue{
		"amount":  NumberValue(25000),
		"purpose": StringValue("car"),
		"tenure":  NumberValue(36),
	})
	if len(ctx.State.RequiredFields) != 0 {
		t.Fatalf("RequiredFields = %v, want empty", ctx.State.RequiredFields)
	}
}

func TestClearTaskKeepsEntityBag(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ctx := NewConversationContext("conv-1", "user-1", now)
	ctx.BeginTask("card_block", []string{"card_number", "reason"})
	ctx.State.CollectedFields["card_number"] = StringValue("4402")
	ctx.Entities["last_topic"] = StringValue("cards")

	ctx.ClearTask()

	if ctx.State.CurrentTask != "" || len(ctx.State.CollectedFields) != 0 || ctx.State.RequiredFields != nil {
		t.Fatalf("task bookkeeping survived ClearTask: %+v", ctx.State)
	}
	if _, ok := ctx.Entities["last_topic"]; !ok {
		t.Fatal("entity bag dropped by ClearTask")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ctx := NewConversationContext("conv-1", "user-1", now)
	ctx.BeginTask("loan_application", []string{"amount"})
	ctx.State.CollectedFields["amount"] = NumberValue(100)
	ctx.Entities["k"] = StringValue("v")

	snap := ctx.Snapshot()

	ctx.Append(Message{Role: RoleUser, Content: "later", Timestamp: now})
	ctx.State.CollectedFields["amount"] = NumberValue(999)
	ctx.Entities["k"] = StringValue("changed")
	ctx.State.RequiredFields = append(ctx.State.RequiredFields, "extra")

	if len(snap.Messages) != 1 {
		t.Fatalf("snapshot message count = %d, want 1", len(snap.Messages))
	}
	if got := snap.State.CollectedFields["amount"]; !got.Equal(NumberValue(100)) {
		t.Fatalf("snapshot collected amount = %v, want 100", got)
	}
	if got := snap.Entities["k"]; !got.Equal(StringValue("v")) {
		t.Fatalf("snapshot entity = %v, want %q", got, "v")
	}
}
