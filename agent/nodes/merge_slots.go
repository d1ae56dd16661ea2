package nodes

import (
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

// MergeSlots folds the turn's extracted entities into the task's
// collected fields and keeps the required-fields invariant intact.
// A correction that changes an already collected value invalidates a
// presented confirmation: the outcome stays none and the transition
// recomputes the phase from the remaining fields.
func MergeSlots(s *GraphState) (*GraphState, error) {
	if s == nil || s.Ctx == nil {
		return nil, ErrNilContext
	}
	if s.Def == nil || s.ReplyFinal || s.Outcome != statex.OutcomeNone {
		return s, nil
	}

	var entities map[string]statex.EntityValue
	if s.Classification != nil {
		entities = s.Classification.Entities
	}

	res := taskx.Merge(s.Def, s.Ctx.State.CollectedFields, entities)
	s.Ctx.SyncCollected(s.Def.FieldNames(), res.Collected)

	// Unrecognized entities stay available in the free-form bag but do
	// not satisfy required fields.
	for k, v := range res.Leftover {
		if s.Ctx.Entities == nil {
			s.Ctx.Entities = make(map[string]statex.EntityValue, 4)
		}
		s.Ctx.Entities[k] = v
	}

	if next := res.NextMissing(); next != nil {
		s.NextQuestion = next.Prompt
	}
	return s, nil
}
