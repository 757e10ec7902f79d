package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionOutcome is the closed set of transaction results.
// FAILED exists to close the enumeration; failed payment attempts are
// reported as errors and never persisted, so no code path writes it.
type TransactionOutcome string

const (
	TransactionSuccess TransactionOutcome = "SUCCESS"
	TransactionFailed  TransactionOutcome = "FAILED"
)

// Transaction is an append-only record of a completed payment. Exactly
// one SUCCESS transaction exists per paid bill, with a matching amount.
type Transaction struct {
	ID         int64              `json:"-"`
	ExternalID string             `json:"transaction_id"`
	OwnerID    int64              `json:"-"`
	BillID     int64              `json:"-"`
	Amount     decimal.Decimal    `json:"amount"`
	Outcome    TransactionOutcome `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}
