package task

import (
	"testing"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

func loanDef(t *testing.T) *Definition {
	t.Helper()
	def, ok := NewCatalog().Lookup(TypeLoanApplication)
	if !ok {
		t.Fatal("loan_application missing from catalog")
	}
	return def
}

func TestMergeMissingFollowsDeclaredOrder(t *testing.T) {
	t.Parallel()

	def := loanDef(t)

	res := Merge(def, nil, map[string]statex.EntityValue{
		"purpose": statex.StringValue("home renovation"),
	})

	if len(res.Missing) != 2 || res.Missing[0].Name != "amount" || res.Missing[1].Name != "tenure" {
		t.Fatalf("Missing = %+v, want [amount tenure]", res.Missing)
	}
	next := res.NextMissing()
	if next == nil || next.Name != "amount" {
		t.Fatalf("NextMissing() = %+v, want amount", next)
	}
	if next.Prompt == "" {
		t.Fatal("next missing field has no prompt")
	}
}

func TestMergeAnyFieldPermutation(t *testing.T) {
	t.Parallel()

	def := loanDef(t)
	values := map[string]statex.EntityValue{
		"amount":  statex.NumberValue(25000),
		"purpose": statex.StringValue("car"),
		"tenure":  statex.NumberValue(36),
	}
	orders := [][]string{
		{"amount", "purpose", "tenure"},
		{"tenure", "amount", "purpose"},
		{"purpose", "tenure", "amount"},
	}

	for _, order := range orders {
		collected := map[string]statex.EntityValue{}
		for _, field := range order {
			res := Merge(def, collected, map[string]statex.EntityValue{field: values[field]})
			collected = res.Collected
		}
		if len(collected) != 3 {
			t.Fatalf("order %v: collected %d fields, want 3", order, len(collected))
		}
		final := Merge(def, collected, nil)
		if len(final.Missing) != 0 {
			t.Fatalf("order %v: still missing %+v", order, final.Missing)
		}
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	t.Parallel()

	def := loanDef(t)
	collected := map[string]statex.EntityValue{
		"amount": statex.NumberValue(10000),
	}

	res := Merge(def, collected, map[string]statex.EntityValue{
		"amount": statex.NumberValue(25000),
	})

	if got := res.Collected["amount"]; !got.Equal(statex.NumberValue(25000)) {
		t.Fatalf("amount = %v, want 25000", got)
	}
	if len(res.Overwrote) != 1 || res.Overwrote[0] != "amount" {
		t.Fatalf("Overwrote = %v, want [amount]", res.Overwrote)
	}
	// The input map is left alone.
	if got := collected["amount"]; !got.Equal(statex.NumberValue(10000)) {
		t.Fatalf("input collected mutated: amount = %v", got)
	}
}

func TestMergeSameValueIsNotAnOverwrite(t *testing.T) {
	t.Parallel()

	def := loanDef(t)
	collected := map[string]statex.EntityValue{
		"purpose": statex.StringValue("car"),
	}

	res := Merge(def, collected, map[string]statex.EntityValue{
		"purpose": statex.StringValue("car"),
	})

	if len(res.Overwrote) != 0 {
		t.Fatalf("Overwrote = %v, want empty for identical value", res.Overwrote)
	}
}

func TestMergeReportsLeftovers(t *testing.T) {
	t.Parallel()

	def := loanDef(t)

	res := Merge(def, nil, map[string]statex.EntityValue{
		"amount":        statex.NumberValue(5000),
		"account_alias": statex.StringValue("savings"),
	})

	if _, ok := res.Collected["account_alias"]; ok {
		t.Fatal("leftover key merged into collected fields")
	}
	if got, ok := res.Leftover["account_alias"]; !ok || !got.Equal(statex.StringValue("savings")) {
		t.Fatalf("Leftover = %+v, want account_alias=savings", res.Leftover)
	}
}

func TestCatalogResolve(t *testing.T) {
	t.Parallel()

	cat := NewCatalog()

	def, ok := cat.Resolve("  Balance_Inquiry ")
	if !ok || def.Type != TypeBalanceInquiry {
		t.Fatalf("Resolve(balance_inquiry) = %+v, %v", def, ok)
	}
	if !def.AutoConfirm() {
		t.Fatal("balance_inquiry should auto-confirm: no required fields")
	}

	if _, ok := cat.Resolve("wire_transfer"); ok {
		t.Fatal("Resolve() matched an unknown intent")
	}

	loan, _ := cat.Lookup(TypeLoanApplication)
	if loan.AutoConfirm() {
		t.Fatal("loan_application must not auto-confirm")
	}
	names := loan.FieldNames()
	if len(names) != 3 || names[0] != "amount" || names[1] != "purpose" || names[2] != "tenure" {
		t.Fatalf("FieldNames() = %v", names)
	}
}
