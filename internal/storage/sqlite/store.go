// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface, used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/paycheck-sim/paycheck-be/internal/models"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path. It creates the
// parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; serializing all writes through one
	// connection keeps concurrent PayBill calls from tripping SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser persists a new user.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (user_id, name, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.ExternalID, user.Name, user.PasswordHash, user.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID, err = res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	return user, nil
}

// FindUserByExternalID retrieves a user by its caller-visible identifier.
func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, password_hash, created_at FROM users WHERE user_id = ?",
		externalID,
	)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, password_hash, created_at FROM users ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
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

// CreateBill persists a new bill.
func (s *Store) CreateBill(ctx context.Context, bill models.Bill) (models.Bill, error) {
	if bill.Status == "" {
		bill.Status = models.BillStatusDue
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO bills (bill_id, owner_id, amount, status, created_at) VALUES (?, ?, ?, ?, ?)",
		bill.ExternalID, bill.OwnerID, bill.Amount.String(), string(bill.Status), bill.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Bill{}, storage.ErrAlreadyExists
		}
		return models.Bill{}, fmt.Errorf("failed to insert bill: %w", err)
	}
	bill.ID, err = res.LastInsertId()
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to read bill id: %w", err)
	}
	return bill, nil
}

// FindBillByExternalID retrieves a bill by its caller-visible identifier.
func (s *Store) FindBillByExternalID(ctx context.Context, externalID string) (models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, owner_id, amount, status, created_at FROM bills WHERE bill_id = ?",
		externalID,
	)
	return scanBill(row)
}

// ListDueBills returns the owner's bills still in the DUE state.
func (s *Store) ListDueBills(ctx context.Context, ownerID int64) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, owner_id, amount, status, created_at FROM bills WHERE owner_id = ? AND status = 'DUE' ORDER BY id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due bills: %w", err)
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
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, transaction_id, owner_id, bill_id, amount, status, created_at FROM transactions WHERE owner_id = ? ORDER BY id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
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

// PayBill marks the bill PAID and appends the transaction atomically.
// The guarded UPDATE only matches while the bill is still DUE, so of
// two concurrent calls exactly one sees an affected row; the other gets
// storage.ErrBillAlreadyPaid.
func (s *Store) PayBill(ctx context.Context, billID int64, txn models.Transaction) (models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET status = 'PAID' WHERE id = ? AND status = 'DUE'",
		billID,
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to mark bill paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM bills WHERE id = ?", billID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Transaction{}, storage.ErrNotFound
			}
			return models.Transaction{}, fmt.Errorf("failed to check bill: %w", err)
		}
		return models.Transaction{}, storage.ErrBillAlreadyPaid
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	txn.BillID = billID
	insert, err := tx.ExecContext(ctx,
		"INSERT INTO transactions (transaction_id, owner_id, bill_id, amount, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		txn.ExternalID, txn.OwnerID, txn.BillID, txn.Amount.String(), string(txn.Outcome), txn.CreatedAt.Unix(),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	txn.ID, err = insert.LastInsertId()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to read transaction id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return txn, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user    models.User
		created int64
	)
	if err := row.Scan(&user.ID, &user.ExternalID, &user.Name, &user.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	user.CreatedAt = time.Unix(created, 0).UTC()
	return user, nil
}

func scanBill(row rowScanner) (models.Bill, error) {
	var (
		bill    models.Bill
		amount  string
		status  string
		created int64
	)
	if err := row.Scan(&bill.ID, &bill.ExternalID, &bill.OwnerID, &amount, &status, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bill{}, storage.ErrNotFound
		}
		return models.Bill{}, fmt.Errorf("failed to scan bill: %w", err)
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to parse bill amount %q: %w", amount, err)
	}
	bill.Amount = parsed
	bill.Status = models.BillStatus(status)
	bill.CreatedAt = time.Unix(created, 0).UTC()
	return bill, nil
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		txn     models.Transaction
		amount  string
		outcome string
		created int64
	)
	if err := row.Scan(&txn.ID, &txn.ExternalID, &txn.OwnerID, &txn.BillID, &amount, &outcome, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to parse transaction amount %q: %w", amount, err)
	}
	txn.Amount = parsed
	txn.Outcome = models.TransactionOutcome(outcome)
	txn.CreatedAt = time.Unix(created, 0).UTC()
	return txn, nil
}
