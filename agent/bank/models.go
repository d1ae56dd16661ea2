package bank

import (
	"time"

	"github.com/uptrace/bun"
)

// Account is one customer account record.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Number    string    `bun:"number,notnull"`
	Currency  string    `bun:"currency,notnull"`
	Balance   float64   `bun:"balance,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Transaction is one ledger entry on an account.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID         string    `bun:"id,pk"`
	AccountID  string    `bun:"account_id,notnull"`
	Amount     float64   `bun:"amount,notnull"`
	Currency   string    `bun:"currency,notnull"`
	Merchant   string    `bun:"merchant"`
	Reference  string    `bun:"reference"`
	OccurredAt time.Time `bun:"occurred_at,notnull"`
}

type LoanStatus string

const (
	LoanSubmitted LoanStatus = "submitted"
	LoanApproved  LoanStatus = "approved"
	LoanRejected  LoanStatus = "rejected"
)

// LoanApplication is a submitted loan request.
type LoanApplication struct {
	bun.BaseModel `bun:"table:loan_applications,alias:l"`

	ID           string     `bun:"id,pk"`
	UserID       string     `bun:"user_id,notnull"`
	Amount       float64    `bun:"amount,notnull"`
	Purpose      string     `bun:"purpose,notnull"`
	TenureMonths int        `bun:"tenure_months,notnull"`
	Status       LoanStatus `bun:"status,notnull"`
	SubmittedAt  time.Time  `bun:"submitted_at,notnull"`
}

// CardBlock is a recorded card-block request.
type CardBlock struct {
	bun.BaseModel `bun:"table:card_blocks,alias:c"`

	ID         string    `bun:"id,pk"`
	UserID     string    `bun:"user_id,notnull"`
	CardNumber string    `bun:"card_number,notnull"`
	Reason     string    `bun:"reason,notnull"`
	BlockedAt  time.Time `bun:"blocked_at,notnull"`
}
