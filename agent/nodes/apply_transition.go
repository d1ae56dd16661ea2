package nodes

import (
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

// ApplyTransition computes the next phase from (task presence, missing
// fields, turn outcome) and records the pending clarification question.
// Tasks with nothing to confirm are auto-confirmed so a field-less task
// like a balance inquiry reaches execution within its resolving turn.
func ApplyTransition(s *GraphState) (*GraphState, error) {
	if s == nil || s.Ctx == nil {
		return nil, ErrNilContext
	}

	missing := len(s.Ctx.State.RequiredFields)
	hasTask := s.Def != nil

	// Auto-confirmation applies only on the turn the intent resolved;
	// after a confirmation has been presented (including the retry
	// prompt after a failed execution), execution requires an explicit
	// confirm.
	if hasTask && s.TaskResolved && s.Outcome == statex.OutcomeNone && missing == 0 && s.Def.AutoConfirm() {
		s.Outcome = statex.OutcomeConfirmed
	}

	s.Ctx.State.Phase = statex.NextPhase(hasTask, missing, s.Outcome)

	switch s.Ctx.State.Phase {
	case statex.PhaseInformationGathering:
		if s.NextQuestion != "" {
			s.Ctx.State.PendingQuestions = []string{s.NextQuestion}
		}
	default:
		s.Ctx.State.PendingQuestions = nil
	}
	return s, nil
}
