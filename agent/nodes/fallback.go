package nodes

import (
	"fmt"
	"strings"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	toolx "github.com/pattarin/BankPilot-Conversational-Banking/agent/tool"
)

const executionFailedReply = "I couldn't complete that action. " +
	"Would you like me to try again, or cancel the request? (yes/no)"

// FallbackReply renders a deterministic reply for the current turn.
// Used whenever the responder model is unavailable; every figure comes
// from tool results, never from generation.
func FallbackReply(s *GraphState) string {
	switch s.Ctx.State.Phase {
	case statex.PhaseInformationGathering:
		if s.NextQuestion != "" {
			return s.NextQuestion
		}
		return GenericClarification

	case statex.PhaseConfirmation:
		if s.Outcome == statex.OutcomeFailed {
			return executionFailedReply
		}
		return confirmationSummary(s)

	case statex.PhaseCompletion:
		if s.Outcome == statex.OutcomeCancelled {
			return "Okay, I've cancelled that request. Is there anything else I can help with?"
		}
		return completionReply(s)

	default:
		return GenericClarification
	}
}

func confirmationSummary(s *GraphState) string {
	if s.Def == nil {
		return GenericClarification
	}
	var b strings.Builder
	b.WriteString("Please confirm your ")
	b.WriteString(strings.ReplaceAll(string(s.Def.Type), "_", " "))
	b.WriteString(":")
	for _, f := range s.Def.Required {
		if v, ok := s.Ctx.State.CollectedFields[f.Name]; ok {
			fmt.Fprintf(&b, " %s: %s;", f.Name, v.String())
		}
	}
	b.WriteString(" Shall I proceed? (yes/no)")
	return b.String()
}

func completionReply(s *GraphState) string {
	if len(s.ToolCalls) == 0 {
		return "Done. Is there anything else I can help with?"
	}
	last := s.ToolCalls[len(s.ToolCalls)-1]

	switch out := last.Result.(type) {
	case toolx.BalanceOutput:
		return fmt.Sprintf("Your account %s has a current balance of %.2f %s.",
			out.AccountNumber, out.Balance, out.Currency)

	case toolx.TransactionsOutput:
		if len(out.Transactions) == 0 {
			return fmt.Sprintf("Account %s has no recent transactions.", out.AccountNumber)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Here are the %d most recent transactions on account %s:",
			len(out.Transactions), out.AccountNumber)
		for _, tx := range out.Transactions {
			label := tx.Merchant
			if label == "" {
				label = tx.Reference
			}
			fmt.Fprintf(&b, " %s %.2f %s;", label, tx.Amount, tx.Currency)
		}
		return b.String()

	case toolx.LoanSubmitOutput:
		return fmt.Sprintf("Your loan application %s for %.2f (%s, %d months) has been submitted.",
			out.ApplicationID, out.Amount, out.Purpose, out.TenureMonths)

	case toolx.CardBlockOutput:
		return fmt.Sprintf("The card %s has been blocked (reason: %s).", out.CardNumber, out.Reason)

	case toolx.KnowledgeSearchOutput:
		if len(out.Results) == 0 {
			return "I couldn't find anything relevant in our knowledge base for that question."
		}
		var b strings.Builder
		b.WriteString("Here's what I found:")
		for _, r := range out.Results {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(r.Content))
		}
		return b.String()

	default:
		return "Done. Is there anything else I can help with?"
	}
}
