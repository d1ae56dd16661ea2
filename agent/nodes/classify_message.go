package nodes

import (
	"context"
	"strings"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

// GenericClarification is the degraded prompt used when the classifier
// fails or cannot produce a confident verdict.
const GenericClarification = "Could you tell me a bit more about what you'd like to do? " +
	"I can help with balances, recent transactions, loan applications, card blocks, and general banking questions."

// ClassifyMessage runs the intent classifier and, when no task is
// active, resolves the detected intent against the catalog. A failed
// model call degrades to a generic clarification; the turn still
// completes and the phase does not advance past intent detection.
func ClassifyMessage(
	ctx context.Context,
	s *GraphState,
	classifier contractx.Classifier,
	catalog *taskx.Catalog,
	historyWindow int,
) (*GraphState, error) {
	if s == nil || s.Ctx == nil {
		return nil, ErrNilContext
	}
	// Explicit confirm/cancel needs no model call.
	if s.Outcome != statex.OutcomeNone {
		return s, nil
	}

	activeTask := ""
	if s.Def != nil {
		activeTask = string(s.Def.Type)
	}

	verdict, err := classifier.Classify(ctx, contractx.ClassifyRequest{
		UserMessage: s.Text,
		ActiveTask:  activeTask,
		Collected:   s.Ctx.State.CollectedFields,
		History:     s.Ctx.Recent(historyWindow),
		Now:         s.Now,
	})
	if err != nil {
		s.Degraded = true
		s.Reply = GenericClarification
		s.ReplyFinal = true
		return s, nil
	}

	s.Classification = &verdict
	s.UserMeta.Intent = verdict.Intent
	s.UserMeta.Confidence = verdict.Confidence
	s.UserMeta.Entities = verdict.Entities

	// With a task in flight the verdict only contributes entities; the
	// task is not switched mid-dialogue.
	if s.Def != nil {
		return s, nil
	}

	if verdict.ClarificationNeeded {
		s.Reply = clarificationReply(verdict)
		s.ReplyFinal = true
		return s, nil
	}

	def, ok := catalog.Resolve(verdict.Intent)
	if !ok {
		s.Reply = clarificationReply(verdict)
		s.ReplyFinal = true
		return s, nil
	}

	s.Def = def
	s.TaskResolved = true
	s.Ctx.BeginTask(string(def.Type), def.FieldNames())
	return s, nil
}

func clarificationReply(verdict contractx.IntentClassification) string {
	if q := strings.TrimSpace(verdict.ClarificationQuestion); q != "" {
		return q
	}
	return GenericClarification
}
