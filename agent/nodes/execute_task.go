package nodes

import (
	"context"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
	toolx "github.com/pattarin/BankPilot-Conversational-Banking/agent/tool"
)

// ExecuteTask invokes the confirmed task's tool exactly once. A failed
// invocation is captured on its ToolCall and reverts the phase to
// confirmation so the user can retry or cancel; it never aborts the
// turn.
func ExecuteTask(ctx context.Context, s *GraphState, tools contractx.ToolGateway) (*GraphState, error) {
	if s == nil || s.Ctx == nil {
		return nil, ErrNilContext
	}
	// A turn that already concluded deterministically (clarification,
	// degraded classify) never executes a tool.
	if s.ReplyFinal {
		return s, nil
	}
	if s.Ctx.State.Phase != statex.PhaseExecution || s.Def == nil {
		return s, nil
	}

	params := statex.CloneEntities(s.Ctx.State.CollectedFields)
	if params == nil {
		params = make(map[string]statex.EntityValue, 2)
	}
	params[toolx.ParamUserID] = statex.StringValue(s.Ctx.UserID)
	if s.Def.Type == taskx.TypeGeneralInquiry {
		params["query"] = statex.StringValue(s.Text)
	}

	call := tools.Invoke(ctx, s.Def.Tool, params)
	s.ToolCalls = append(s.ToolCalls, call)

	if call.Status == statex.ToolCallSuccess {
		s.Outcome = statex.OutcomeExecuted
		if s.Ctx.Progress != nil {
			s.Ctx.Progress.Completed = true
		}
	} else {
		s.Outcome = statex.OutcomeFailed
	}

	s.Ctx.State.Phase = statex.NextPhase(true, 0, s.Outcome)
	return s, nil
}
