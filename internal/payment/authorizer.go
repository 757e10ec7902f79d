// Package payment implements the payment authorization core: the rules
// deciding whether a payment request commits, and the atomic pairing of
// the bill status flip with its transaction record.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/paycheck-sim/paycheck-be/internal/metrics"
	"github.com/paycheck-sim/paycheck-be/internal/models"
	"github.com/paycheck-sim/paycheck-be/internal/models/dto"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

// Authorizer validates payment requests and commits them through the
// store's atomic PayBill operation.
type Authorizer struct {
	store  storage.Store
	logger *slog.Logger
}

// NewAuthorizer creates an authorizer backed by the given store.
func NewAuthorizer(store storage.Store, logger *slog.Logger) *Authorizer {
	return &Authorizer{store: store, logger: logger}
}

// AuthorizePayment runs the validation chain and, if every check
// passes, transitions the bill to PAID and appends a SUCCESS
// transaction as one atomic unit. Checks run in a fixed order and the
// first failure is returned:
//
//	caller identity, user lookup, bill lookup, ownership, bill state,
//	amount equality.
//
// A concurrent payment on the same bill loses the storage commit and
// surfaces as ErrAlreadyPaid, so retries never double-charge.
func (a *Authorizer) AuthorizePayment(ctx context.Context, callerExternalID string, req dto.PaymentRequest) (models.Transaction, error) {
	if callerExternalID != req.UserID {
		a.logger.Warn("payment rejected: caller mismatch", "caller", callerExternalID, "user_id", req.UserID)
		metrics.PaymentAttempts.WithLabelValues("forbidden").Inc()
		return models.Transaction{}, ErrForbidden
	}

	user, err := a.store.FindUserByExternalID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.PaymentAttempts.WithLabelValues("user_not_found").Inc()
			return models.Transaction{}, ErrUserNotFound
		}
		return models.Transaction{}, fmt.Errorf("lookup user %s: %w", req.UserID, err)
	}

	bill, err := a.store.FindBillByExternalID(ctx, req.BillID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.PaymentAttempts.WithLabelValues("bill_not_found").Inc()
			return models.Transaction{}, ErrBillNotFound
		}
		return models.Transaction{}, fmt.Errorf("lookup bill %s: %w", req.BillID, err)
	}

	if bill.OwnerID != user.ID {
		metrics.PaymentAttempts.WithLabelValues("ownership_mismatch").Inc()
		return models.Transaction{}, ErrOwnershipMismatch
	}
	if bill.Status != models.BillStatusDue {
		metrics.PaymentAttempts.WithLabelValues("already_paid").Inc()
		return models.Transaction{}, ErrAlreadyPaid
	}
	if !req.Amount.Equal(bill.Amount) {
		metrics.PaymentAttempts.WithLabelValues("amount_mismatch").Inc()
		return models.Transaction{}, ErrAmountMismatch
	}

	txn := models.Transaction{
		ExternalID: newTransactionID(),
		OwnerID:    user.ID,
		BillID:     bill.ID,
		Amount:     req.Amount,
		Outcome:    models.TransactionSuccess,
	}

	created, err := a.store.PayBill(ctx, bill.ID, txn)
	if err != nil {
		if errors.Is(err, storage.ErrBillAlreadyPaid) {
			// Lost the race to a concurrent payment on the same bill.
			metrics.PaymentAttempts.WithLabelValues("already_paid").Inc()
			return models.Transaction{}, ErrAlreadyPaid
		}
		return models.Transaction{}, fmt.Errorf("commit payment for bill %s: %w", req.BillID, err)
	}

	a.logger.Info("payment committed",
		"user_id", user.ExternalID,
		"bill_id", bill.ExternalID,
		"transaction_id", created.ExternalID,
		"amount", created.Amount.String(),
	)
	metrics.PaymentAttempts.WithLabelValues("success").Inc()
	return created, nil
}

// newTransactionID generates a caller-visible transaction identifier.
func newTransactionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "txn_" + hex[:12]
}
