package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the closed set of bill states.
type BillStatus string

const (
	BillStatusDue  BillStatus = "DUE"
	BillStatusPaid BillStatus = "PAID"
)

// Bill is a payable obligation owned by a single user. Status moves
// DUE -> PAID exactly once, and only through the payment authorizer.
type Bill struct {
	ID         int64           `json:"-"`
	ExternalID string          `json:"bill_id"`
	OwnerID    int64           `json:"-"`
	Amount     decimal.Decimal `json:"amount"`
	Status     BillStatus      `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}
