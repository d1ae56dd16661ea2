package nodes

import (
	"strings"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

var confirmWords = map[string]struct{}{
	"yes": {}, "y": {}, "yep": {}, "confirm": {}, "confirmed": {},
	"ok": {}, "okay": {}, "proceed": {}, "correct": {}, "sure": {},
}

var cancelWords = map[string]struct{}{
	"no": {}, "n": {}, "cancel": {}, "stop": {}, "abort": {},
	"nevermind": {}, "dont": {},
}

// InterpretConfirmation resolves an explicit confirm/cancel while a
// summary is awaiting the user's verdict. Anything that is not a short
// confirmation phrase falls through as a potential field correction and
// is routed through classification and slot-filling.
func InterpretConfirmation(s *GraphState) (*GraphState, error) {
	if s == nil || s.Ctx == nil {
		return nil, ErrNilContext
	}
	if s.Def == nil || s.Ctx.State.Phase != statex.PhaseConfirmation {
		return s, nil
	}

	s.Outcome = interpretConfirmation(s.Text)
	return s, nil
}

func interpretConfirmation(text string) statex.TurnOutcome {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', '\'':
			return -1
		}
		return r
	}, normalized)

	tokens := strings.Fields(normalized)
	if len(tokens) == 0 || len(tokens) > 3 {
		return statex.OutcomeNone
	}
	if _, ok := confirmWords[tokens[0]]; ok {
		return statex.OutcomeConfirmed
	}
	if _, ok := cancelWords[tokens[0]]; ok {
		return statex.OutcomeCancelled
	}
	return statex.OutcomeNone
}
