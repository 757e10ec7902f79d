// Package postgres provides a pgx-backed implementation of storage.Store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paycheck-sim/paycheck-be/internal/models"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users, bills, and
// transactions.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS bills (
			id BIGSERIAL PRIMARY KEY,
			bill_id TEXT UNIQUE NOT NULL,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			amount NUMERIC(24,2) NOT NULL CHECK (amount > 0),
			status TEXT NOT NULL DEFAULT 'DUE' CHECK (status IN ('DUE', 'PAID')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			transaction_id TEXT UNIQUE NOT NULL,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			bill_id BIGINT NOT NULL REFERENCES bills(id),
			amount NUMERIC(24,2) NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('SUCCESS', 'FAILED')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS bills_owner_status_idx ON bills (owner_id, status);`,
		`CREATE INDEX IF NOT EXISTS transactions_owner_idx ON transactions (owner_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (user_id, name, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, name, password_hash, created_at;
	`
	row := s.pool.QueryRow(ctx, query, user.ExternalID, user.Name, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindUserByExternalID fetches a user by its caller-visible identifier.
func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (models.User, error) {
	const query = `
	SELECT id, user_id, name, password_hash, created_at
	FROM users WHERE user_id = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, externalID))
}

// ListUsers returns all users ordered by creation.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `
	SELECT id, user_id, name, password_hash, created_at
	FROM users ORDER BY id;
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateBill inserts a new bill row.
func (s *Store) CreateBill(ctx context.Context, bill models.Bill) (models.Bill, error) {
	if bill.Status == "" {
		bill.Status = models.BillStatusDue
	}
	const query = `
	INSERT INTO bills (bill_id, owner_id, amount, status)
	VALUES ($1, $2, $3, $4)
	RETURNING id, bill_id, owner_id, amount::text, status, created_at;
	`
	row := s.pool.QueryRow(ctx, query, bill.ExternalID, bill.OwnerID, bill.Amount.String(), string(bill.Status))
	created, err := scanBill(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Bill{}, storage.ErrAlreadyExists
		}
		return models.Bill{}, err
	}
	return created, nil
}

// FindBillByExternalID fetches a bill by its caller-visible identifier.
func (s *Store) FindBillByExternalID(ctx context.Context, externalID string) (models.Bill, error) {
	const query = `
	SELECT id, bill_id, owner_id, amount::text, status, created_at
	FROM bills WHERE bill_id = $1;
	`
	return scanBill(s.pool.QueryRow(ctx, query, externalID))
}

// ListDueBills returns the owner's bills still in the DUE state.
func (s *Store) ListDueBills(ctx context.Context, ownerID int64) ([]models.Bill, error) {
	const query = `
	SELECT id, bill_id, owner_id, amount::text, status, created_at
	FROM bills WHERE owner_id = $1 AND status = 'DUE' ORDER BY id;
	`
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list due bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// ListTransactions returns all transactions recorded for the owner.
func (s *Store) ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error) {
	const query = `
	SELECT id, transaction_id, owner_id, bill_id, amount::text, status, created_at
	FROM transactions WHERE owner_id = $1 ORDER BY id;
	`
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// PayBill flips the bill to PAID and appends the transaction as one
// database transaction. The row lock taken by FOR UPDATE serializes
// concurrent payments on the same bill; bills on other rows are not
// blocked.
func (s *Store) PayBill(ctx context.Context, billID int64, txn models.Transaction) (models.Transaction, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("begin pay transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM bills WHERE id = $1 FOR UPDATE`, billID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("lock bill: %w", err)
	}
	if models.BillStatus(status) != models.BillStatusDue {
		return models.Transaction{}, storage.ErrBillAlreadyPaid
	}

	if _, err := tx.Exec(ctx, `UPDATE bills SET status = 'PAID' WHERE id = $1`, billID); err != nil {
		return models.Transaction{}, fmt.Errorf("mark bill paid: %w", err)
	}

	const insert = `
	INSERT INTO transactions (transaction_id, owner_id, bill_id, amount, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, transaction_id, owner_id, bill_id, amount::text, status, created_at;
	`
	created, err := scanTransaction(tx.QueryRow(ctx, insert,
		txn.ExternalID, txn.OwnerID, billID, txn.Amount.String(), string(txn.Outcome)))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Transaction{}, fmt.Errorf("commit pay transaction: %w", err)
	}
	return created, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.ExternalID, &user.Name, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanBill(row pgx.Row) (models.Bill, error) {
	var (
		bill   models.Bill
		amount string
		status string
	)
	if err := row.Scan(&bill.ID, &bill.ExternalID, &bill.OwnerID, &amount, &status, &bill.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Bill{}, storage.ErrNotFound
		}
		return models.Bill{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Bill{}, fmt.Errorf("parse bill amount %q: %w", amount, err)
	}
	bill.Amount = parsed
	bill.Status = models.BillStatus(status)
	return bill, nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var (
		txn     models.Transaction
		amount  string
		outcome string
	)
	if err := row.Scan(&txn.ID, &txn.ExternalID, &txn.OwnerID, &txn.BillID, &amount, &outcome, &txn.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse transaction amount %q: %w", amount, err)
	}
	txn.Amount = parsed
	txn.Outcome = models.TransactionOutcome(outcome)
	return txn, nil
}
