package bank

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the in-process record store used when no Postgres DSN
// is configured. It carries the same mock records the demo needs.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account // keyed by user id
	txs      map[string][]Transaction
	loans    []LoanApplication
	blocks   []CardBlock
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account, 4),
		txs:      make(map[string][]Transaction, 4),
	}
}

// SeedDemo loads a small demo dataset for a user id.
func (s *MemoryStore) SeedDemo(userID string, now time.Time) {
	acct := &Account{
		ID:        "acct-" + userID,
		UserID:    userID,
		Number:    "4402-1188-2201",
		Currency:  "USD",
		Balance:   8452.17,
		UpdatedAt: now.UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[userID] = acct
	s.txs[acct.ID] = []Transaction{
		{ID: "tx-1", AccountID: acct.ID, Amount: -42.80, Currency: "USD", Merchant: "City Grocers", OccurredAt: now.Add(-48 * time.Hour).UTC()},
		{ID: "tx-2", AccountID: acct.ID, Amount: -129.99, Currency: "USD", Merchant: "Metro Electronics", OccurredAt: now.Add(-26 * time.Hour).UTC()},
		{ID: "tx-3", AccountID: acct.ID, Amount: 2500.00, Currency: "USD", Reference: "salary", OccurredAt: now.Add(-4 * time.Hour).UTC()},
	}
}

func (s *MemoryStore) Account(ctx context.Context, userID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user_id=%s", ErrAccountNotFound, userID)
	}
	cp := *acct
	return &cp, nil
}

func (s *MemoryStore) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	acct, err := s.Account(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.txs[acct.ID]
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return append([]Transaction(nil), txs...), nil
}

func (s *MemoryStore) SubmitLoan(ctx context.Context, app *LoanApplication) error {
	if app == nil {
		return ErrNilApplication
	}
	if app.Status == "" {
		app.Status = LoanSubmitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans = append(s.loans, *app)
	return nil
}

func (s *MemoryStore) BlockCard(ctx context.Context, block *CardBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, *block)
	return nil
}

// Loans returns submitted applications. Test and demo inspection only.
func (s *MemoryStore) Loans() []LoanApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LoanApplication(nil), s.loans...)
}

// Blocks returns recorded card blocks. Test and demo inspection only.
func (s *MemoryStore) Blocks() []CardBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CardBlock(nil), s.blocks...)
}
