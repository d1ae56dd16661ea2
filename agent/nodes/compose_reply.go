package nodes

import (
	"context"
	"strings"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
)

// ComposeReply produces the assistant reply. Deterministic replies set
// earlier in the pipeline pass through untouched; everything else goes
// to the responder model, degrading to a template when the call fails
// so the turn always returns a well-formed reply.
func ComposeReply(ctx context.Context, s *GraphState, responder contractx.Responder, historyWindow int) (*GraphState, error) {
	if s == nil || s.Ctx == nil {
		return nil, ErrNilContext
	}
	if s.ReplyFinal {
		return s, nil
	}

	taskType := ""
	if s.Def != nil {
		taskType = string(s.Def.Type)
	}

	reply, err := responder.Compose(ctx, contractx.ComposeRequest{
		Phase:        s.Ctx.State.Phase,
		UserMessage:  s.Text,
		TaskType:     taskType,
		Collected:    s.Ctx.State.CollectedFields,
		NextQuestion: s.NextQuestion,
		ToolCalls:    s.ToolCalls,
		History:      s.Ctx.Recent(historyWindow),
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		s.Degraded = s.Degraded || err != nil
		reply = FallbackReply(s)
	}
	s.Reply = reply
	return s, nil
}
