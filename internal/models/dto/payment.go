package dto

import "github.com/shopspring/decimal"

// PaymentRequest is the body of POST /pay. Amount must equal the bill
// amount exactly; the authorizer rejects under- and over-payment.
type PaymentRequest struct {
	UserID string          `json:"user_id"`
	BillID string          `json:"bill_id"`
	Amount decimal.Decimal `json:"amount"`
}
