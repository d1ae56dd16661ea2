package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

// FinalizeTurn appends the turn's messages to the log, clears a
// concluded task, and snapshots the context for the caller. Messages
// are appended under the session lock, so the log order is the order
// turns were admitted.
func FinalizeTurn(s *GraphState) (GraphOutput, error) {
	if s == nil || s.Ctx == nil {
		return GraphOutput{}, ErrNilContext
	}
	reply := strings.TrimSpace(s.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced an empty reply", contractx.ErrValidation)
	}

	s.Ctx.Append(statex.Message{
		Role:      statex.RoleUser,
		Content:   s.Text,
		Timestamp: s.Now,
		Meta:      s.UserMeta,
	})

	var assistantMeta *statex.MessageMeta
	if len(s.ToolCalls) > 0 {
		assistantMeta = &statex.MessageMeta{ToolCalls: s.ToolCalls}
	}
	s.Ctx.Append(statex.Message{
		Role:      statex.RoleAssistant,
		Content:   reply,
		Timestamp: s.Now,
		Meta:      assistantMeta,
	})

	if s.Ctx.State.Phase == statex.PhaseCompletion {
		s.Ctx.ClearTask()
	}
	s.Ctx.Touch(s.Now)

	return GraphOutput{
		Reply:    reply,
		Snapshot: s.Ctx.Snapshot(),
	}, nil
}
