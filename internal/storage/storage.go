// Package storage defines the persistence boundary of the service.
package storage

import (
	"context"
	"errors"

	"github.com/paycheck-sim/paycheck-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrBillAlreadyPaid is returned by PayBill when the bill left the DUE
// state before the commit took the lock. It is how a losing racer on a
// concurrently-paid bill learns it lost.
var ErrBillAlreadyPaid = errors.New("bill already paid")

// Store captures the persistence operations needed by the authorizer
// and handlers. Implementations must make PayBill atomic: the status
// flip and the transaction insert become visible together or not at
// all, and two concurrent PayBill calls on one bill admit exactly one
// winner.
type Store interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByExternalID(ctx context.Context, externalID string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateBill(ctx context.Context, bill models.Bill) (models.Bill, error)
	FindBillByExternalID(ctx context.Context, externalID string) (models.Bill, error)
	// ListDueBills returns the owner's bills still awaiting payment.
	ListDueBills(ctx context.Context, ownerID int64) ([]models.Bill, error)

	ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error)

	// PayBill marks the bill PAID and appends txn in a single storage
	// transaction. Returns ErrBillAlreadyPaid if the bill is no longer
	// DUE, and the stored transaction (with generated IDs) on success.
	PayBill(ctx context.Context, billID int64, txn models.Transaction) (models.Transaction, error)

	Close() error
}
