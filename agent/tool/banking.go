package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	bankx "github.com/pattarin/BankPilot-Conversational-Banking/agent/bank"
	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

const (
	ToolAccountBalance      = "account.balance"
	ToolAccountTransactions = "account.transactions"
	ToolLoanSubmit          = "loan.submit"
	ToolCardBlock           = "card.block"

	// ParamUserID is injected by the orchestrator on every banking tool
	// invocation; it is never a user-collected field.
	ParamUserID = "user_id"
)

type BalanceOutput struct {
	AccountNumber string  `json:"account_number"`
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency"`
}

type TransactionsOutput struct {
	AccountNumber string             `json:"account_number"`
	Transactions  []bankx.Transaction `json:"transactions"`
}

type LoanSubmitOutput struct {
	ApplicationID string  `json:"application_id"`
	Amount        float64 `json:"amount"`
	Purpose       string  `json:"purpose"`
	TenureMonths  int     `json:"tenure_months"`
	Status        string  `json:"status"`
}

type CardBlockOutput struct {
	CardNumber string `json:"card_number"`
	Reason     string `json:"reason"`
	BlockedAt  string `json:"blocked_at"`
}

// BalanceTool reports the current balance of the user's account.
type BalanceTool struct {
	Store bankx.Store
}

func (t *BalanceTool) Name() string { return ToolAccountBalance }

func (t *BalanceTool) Execute(ctx context.Context, params map[string]statex.EntityValue) (any, error) {
	userID, err := stringParam(params, ParamUserID)
	if err != nil {
		return nil, err
	}
	acct, err := t.Store.Account(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrToolExecution, err)
	}
	return BalanceOutput{
		AccountNumber: acct.Number,
		Balance:       acct.Balance,
		Currency:      acct.Currency,
	}, nil
}

// TransactionsTool lists recent ledger entries.
type TransactionsTool struct {
	Store bankx.Store
	Limit int
}

func (t *TransactionsTool) Name() string { return ToolAccountTransactions }

func (t *TransactionsTool) Execute(ctx context.Context, params map[string]statex.EntityValue) (any, error) {
	userID, err := stringParam(params, ParamUserID)
	if err != nil {
		return nil, err
	}
	acct, err := t.Store.Account(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrToolExecution, err)
	}
	txs, err := t.Store.Transactions(ctx, userID, t.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrToolExecution, err)
	}
	return TransactionsOutput{AccountNumber: acct.Number, Transactions: txs}, nil
}

// LoanSubmitTool submits a loan application built from collected fields.
type LoanSubmitTool struct {
	Store bankx.Store
}

func (t *LoanSubmitTool) Name() string { return ToolLoanSubmit }

func (t *LoanSubmitTool) Execute(ctx context.Context, params map[string]statex.EntityValue) (any, error) {
	userID, err := stringParam(params, ParamUserID)
	if err != nil {
		return nil, err
	}
	amount, err := numberParam(params, "amount")
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", contractx.ErrValidation)
	}
	purpose, err := stringParam(params, "purpose")
	if err != nil {
		return nil, err
	}
	tenure, err := numberParam(params, "tenure")
	if err != nil {
		return nil, err
	}
	if tenure <= 0 {
		return nil, fmt.Errorf("%w: tenure must be positive", contractx.ErrValidation)
	}

	app := &bankx.LoanApplication{
		ID:           fmt.Sprintf("loan_%d", time.Now().UnixNano()),
		UserID:       userID,
		Amount:       amount,
		Purpose:      purpose,
		TenureMonths: int(tenure),
		Status:       bankx.LoanSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := t.Store.SubmitLoan(ctx, app); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrToolExecution, err)
	}
	return LoanSubmitOutput{
		ApplicationID: app.ID,
		Amount:        app.Amount,
		Purpose:       app.Purpose,
		TenureMonths:  app.TenureMonths,
		Status:        string(app.Status),
	}, nil
}

// CardBlockTool records a card-block request.
type CardBlockTool struct {
	Store bankx.Store
}

func (t *CardBlockTool) Name() string { return ToolCardBlock }

func (t *CardBlockTool) Execute(ctx context.Context, params map[string]statex.EntityValue) (any, error) {
	userID, err := stringParam(params, ParamUserID)
	if err != nil {
		return nil, err
	}
	cardNumber, err := stringParam(params, "card_number")
	if err != nil {
		return nil, err
	}
	reason, err := stringParam(params, "reason")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	block := &bankx.CardBlock{
		ID:         fmt.Sprintf("block_%d", now.UnixNano()),
		UserID:     userID,
		CardNumber: cardNumber,
		Reason:     reason,
		BlockedAt:  now,
	}
	if err := t.Store.BlockCard(ctx, block); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrToolExecution, err)
	}
	return CardBlockOutput{
		CardNumber: cardNumber,
		Reason:     reason,
		BlockedAt:  now.Format(time.RFC3339),
	}, nil
}

func stringParam(params map[string]statex.EntityValue, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return "", fmt.Errorf("%w: %s is empty", contractx.ErrValidation, key)
	}
	return s, nil
}

func numberParam(params map[string]statex.EntityValue, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	if v.Kind == statex.EntityNumber {
		return v.Num, nil
	}
	// Users answer numeric questions with text like "36 months".
	fields := strings.Fields(v.String())
	for _, f := range fields {
		f = strings.Trim(f, "$,")
		f = strings.ReplaceAll(f, ",", "")
		if n, err := strconv.ParseFloat(f, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be numeric", contractx.ErrValidation, key)
}
