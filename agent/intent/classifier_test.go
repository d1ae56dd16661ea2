package intent

import (
	"testing"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	catalog := taskx.NewCatalog()

	tests := []struct {
		name        string
		intent      string
		confidence  float64
		flagged     bool
		threshold   float64
		wantIntent  string
		wantConf    float64
		wantClarify bool
	}{
		{
			name:       "confident known intent",
			intent:     "balance_inquiry",
			confidence: 0.93,
			threshold:  0.6,
			wantIntent: "balance_inquiry",
			wantConf:   0.93,
		},
		{
			name:       "label case and padding ignored",
			intent:     "  Loan_Application ",
			confidence: 0.8,
			threshold:  0.6,
			wantIntent: "loan_application",
			wantConf:   0.8,
		},
		{
			name:        "below threshold forces clarification",
			intent:      "card_block",
			confidence:  0.41,
			threshold:   0.6,
			wantIntent:  "card_block",
			wantConf:    0.41,
			wantClarify: true,
		},
		{
			name:        "unknown label maps to unknown",
			intent:      "crypto_trading",
			confidence:  0.99,
			threshold:   0.6,
			wantIntent:  "unknown",
			wantConf:    0.99,
			wantClarify: true,
		},
		{
			name:        "model-flagged ambiguity wins over confidence",
			intent:      "transaction_history",
			confidence:  0.95,
			flagged:     true,
			threshold:   0.6,
			wantIntent:  "transaction_history",
			wantConf:    0.95,
			wantClarify: true,
		},
		{
			name:        "confidence clamped below zero",
			intent:      "balance_inquiry",
			confidence:  -0.3,
			threshold:   0.6,
			wantIntent:  "balance_inquiry",
			wantConf:    0,
			wantClarify: true,
		},
		{
			name:       "confidence clamped above one",
			intent:     "balance_inquiry",
			confidence: 1.7,
			threshold:  0.6,
			wantIntent: "balance_inquiry",
			wantConf:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tt.intent, tt.confidence, nil, tt.flagged, "", tt.threshold, catalog)
			if got.Intent != tt.wantIntent {
				t.Fatalf("Intent = %q, want %q", got.Intent, tt.wantIntent)
			}
			if got.Confidence != tt.wantConf {
				t.Fatalf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.ClarificationNeeded != tt.wantClarify {
				t.Fatalf("ClarificationNeeded = %v, want %v", got.ClarificationNeeded, tt.wantClarify)
			}
		})
	}
}

func TestNormalizeConvertsEntities(t *testing.T) {
	t.Parallel()

	catalog := taskx.NewCatalog()
	got := Normalize("loan_application", 0.9, map[string]any{
		"amount":  25000.0,
		"purpose": "car",
		"urgent":  true,
	}, false, "", 0.6, catalog)

	if v := got.Entities["amount"]; !v.Equal(statex.NumberValue(25000)) {
		t.Fatalf("amount = %v, want number 25000", v)
	}
	if v := got.Entities["purpose"]; !v.Equal(statex.StringValue("car")) {
		t.Fatalf("purpose = %v, want string car", v)
	}
	if v := got.Entities["urgent"]; !v.Equal(statex.BoolValue(true)) {
		t.Fatalf("urgent = %v, want bool true", v)
	}
}

func TestNormalizeKeepsClarificationQuestion(t *testing.T) {
	t.Parallel()

	catalog := taskx.NewCatalog()
	got := Normalize("unknown", 0.2, nil, true, "  Do you want your balance or your transactions?  ", 0.6, catalog)

	if got.ClarificationQuestion != "Do you want your balance or your transactions?" {
		t.Fatalf("ClarificationQuestion = %q", got.ClarificationQuestion)
	}
}
