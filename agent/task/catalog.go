package task

import "strings"

// Type identifies a banking task kind. Classifier output maps onto
// these; anything else degrades to TypeUnknown.
type Type string

const (
	TypeBalanceInquiry     Type = "balance_inquiry"
	TypeTransactionHistory Type = "transaction_history"
	TypeLoanApplication    Type = "loan_application"
	TypeCardBlock          Type = "card_block"
	TypeGeneralInquiry     Type = "general_inquiry"
	TypeUnknown            Type = "unknown"
)

// Field is one required slot with the clarifying question asked when it
// is the next missing field.
type Field struct {
	Name   string
	Prompt string
}

// Definition binds a task to its ordered required fields and the tool
// that executes it. Field order is the question order and must stay
// stable for predictable dialogues.
type Definition struct {
	Type        Type
	Description string
	Required    []Field
	Tool        string
}

// AutoConfirm reports whether the task has nothing to confirm and may
// proceed straight to execution once the intent resolves.
func (d *Definition) AutoConfirm() bool {
	return len(d.Required) == 0
}

// FieldNames returns the declared required-field order.
func (d *Definition) FieldNames() []string {
	names := make([]string, len(d.Required))
	for i, f := range d.Required {
		names[i] = f.Name
	}
	return names
}

// Catalog is the static task registry, built once at startup.
type Catalog struct {
	defs map[Type]*Definition
}

func NewCatalog() *Catalog {
	defs := []*Definition{
		{
			Type:        TypeBalanceInquiry,
			Description: "Report the current balance of the customer's account.",
			Tool:        "account.balance",
		},
		{
			Type:        TypeTransactionHistory,
			Description: "List the customer's most recent transactions.",
			Tool:        "account.transactions",
		},
		{
			Type:        TypeLoanApplication,
			Description: "Submit a loan application on the customer's behalf.",
			Required: []Field{
				{Name: "amount", Prompt: "How much would you like to borrow?"},
				{Name: "purpose", Prompt: "What is the loan for?"},
				{Name: "tenure", Prompt: "Over how many months would you like to repay?"},
			},
			Tool: "loan.submit",
		},
		{
			Type:        TypeCardBlock,
			Description: "Block one of the customer's cards.",
			Required: []Field{
				{Name: "card_number", Prompt: "Which card should I block? Please give the last 4 digits."},
				{Name: "reason", Prompt: "Why does the card need to be blocked (lost, stolen, fraud)?"},
			},
			Tool: "card.block",
		},
		{
			Type:        TypeGeneralInquiry,
			Description: "Answer a general banking product question from the knowledge base.",
			Tool:        "knowledge_base.search",
		},
	}

	m := make(map[Type]*Definition, len(defs))
	for _, d := range defs {
		m[d.Type] = d
	}
	return &Catalog{defs: m}
}

// Lookup resolves a task definition by type.
func (c *Catalog) Lookup(t Type) (*Definition, bool) {
	d, ok := c.defs[t]
	return d, ok
}

// Resolve maps a raw classifier intent label onto a catalog entry.
func (c *Catalog) Resolve(intent string) (*Definition, bool) {
	return c.Lookup(Type(strings.TrimSpace(strings.ToLower(intent))))
}

// Types lists the known task kinds for prompt construction.
func (c *Catalog) Types() []Type {
	return []Type{
		TypeBalanceInquiry,
		TypeTransactionHistory,
		TypeLoanApplication,
		TypeCardBlock,
		TypeGeneralInquiry,
	}
}
