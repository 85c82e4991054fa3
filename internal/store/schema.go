package store

import (
	"context"
	"fmt"
)

// EnsureSchema creates the transactions table when it does not exist yet.
// It is bootstrap tooling; the query path never writes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	var stmts []string
	switch s.dialect {
	case DialectPostgres:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				transaction_id TEXT          PRIMARY KEY,
				dt             DATE          NOT NULL,
				amount         NUMERIC(18,2) NOT NULL,
				currency       TEXT          NOT NULL,
				counterparty   TEXT          NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_dt ON transactions(dt)`,
		}
	case DialectMySQL:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				transaction_id VARCHAR(64)   NOT NULL PRIMARY KEY,
				dt             DATE          NOT NULL,
				amount         DECIMAL(18,2) NOT NULL,
				currency       VARCHAR(8)    NOT NULL,
				counterparty   VARCHAR(255)  NOT NULL DEFAULT '',
				INDEX idx_transactions_dt (dt)
			)`,
		}
	default:
		// Dates and amounts are kept as text so comparison is lexical on
		// YYYY-MM-DD and amounts stay exact.
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				transaction_id TEXT NOT NULL PRIMARY KEY,
				dt             TEXT NOT NULL,
				amount         TEXT NOT NULL,
				currency       TEXT NOT NULL,
				counterparty   TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_dt ON transactions(dt)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Row is one record to seed with InsertTransactions.
type Row struct {
	TransactionID string
	Date          string
	Amount        string
	Currency      string
	Counterparty  string
}

// InsertTransactions writes rows in a single transaction. Used by init-db
// and tests to prepare data.
func (s *Store) InsertTransactions(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert transactions: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	d := s.dialect
	stmt := fmt.Sprintf(
		`INSERT INTO transactions (transaction_id, dt, amount, currency, counterparty) VALUES (%s, %s, %s, %s, %s)`,
		d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4), d.Placeholder(5),
	)

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("insert transactions: prepare: %w", err)
	}
	defer prepared.Close()

	for _, r := range rows {
		if _, err := prepared.ExecContext(ctx, r.TransactionID, r.Date, r.Amount, r.Currency, r.Counterparty); err != nil {
			return fmt.Errorf("insert transactions: %s: %w", r.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert transactions: commit: %w", err)
	}
	return nil
}
