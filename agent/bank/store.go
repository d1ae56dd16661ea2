package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNilApplication  = errors.New("loan application is nil")
)

// Store is the banking records contract the tools execute against.
type Store interface {
	Account(ctx context.Context, userID string) (*Account, error)
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	SubmitLoan(ctx context.Context, app *LoanApplication) error
	BlockCard(ctx context.Context, block *CardBlock) error
}

// Config is the Postgres connection configuration.
type Config struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// PostgresStore keeps banking records in Postgres through bun.
type PostgresStore struct {
	db *bun.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: bank dsn is required", contractx.ErrConfiguration)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// Init creates the record tables when they do not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	models := []any{
		(*Account)(nil),
		(*Transaction)(nil),
		(*LoanApplication)(nil),
		(*CardBlock)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}

func (s *PostgresStore) Account(ctx context.Context, userID string) (*Account, error) {
	acct := new(Account)
	err := s.db.NewSelect().
		Model(acct).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user_id=%s", ErrAccountNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}
	return acct, nil
}

func (s *PostgresStore) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	acct, err := s.Account(ctx, userID)
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	err = s.db.NewSelect().
		Model(&txs).
		Where("account_id = ?", acct.ID).
		Order("occurred_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return txs, nil
}

func (s *PostgresStore) SubmitLoan(ctx context.Context, app *LoanApplication) error {
	if app == nil {
		return ErrNilApplication
	}
	if app.Status == "" {
		app.Status = LoanSubmitted
	}
	if _, err := s.db.NewInsert().Model(app).Exec(ctx); err != nil {
		return fmt.Errorf("insert loan application: %w", err)
	}
	return nil
}

func (s *PostgresStore) BlockCard(ctx context.Context, block *CardBlock) error {
	if block == nil {
		return errors.New("card block is nil")
	}
	if _, err := s.db.NewInsert().Model(block).Exec(ctx); err != nil {
		return fmt.Errorf("insert card block: %w", err)
	}
	return nil
}
