package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/paycheck-sim/paycheck-be/internal/auth"
	"github.com/paycheck-sim/paycheck-be/internal/http/respond"
	"github.com/paycheck-sim/paycheck-be/internal/middleware"
	"github.com/paycheck-sim/paycheck-be/internal/models/dto"
	"github.com/paycheck-sim/paycheck-be/internal/payment"
)

// PaymentsHandler accepts payment requests and maps authorizer outcomes
// onto HTTP statuses.
type PaymentsHandler struct {
	authorizer *payment.Authorizer
	tokens     *auth.TokenManager
}

// NewPaymentsHandler constructs the handler.
func NewPaymentsHandler(authorizer *payment.Authorizer, tokens *auth.TokenManager) *PaymentsHandler {
	return &PaymentsHandler{authorizer: authorizer, tokens: tokens}
}

// Register wires the handler into a ServeMux.
func (h *PaymentsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /pay", middleware.RequireAuth(h.tokens, h.handlePay))
}

func (h *PaymentsHandler) handlePay(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.UserID == "" || req.BillID == "" {
		respond.Error(w, http.StatusBadRequest, "user_id and bill_id are required")
		return
	}

	txn, err := h.authorizer.AuthorizePayment(r.Context(), middleware.CallerID(r.Context()), req)
	if err != nil {
		status := paymentStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("payment failed", "user_id", req.UserID, "bill_id", req.BillID, "error", err)
			respond.Error(w, status, "failed to process payment")
			return
		}
		respond.Error(w, status, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, "payment successful", txn)
}

// paymentStatus maps the authorizer's typed errors to HTTP statuses.
// Every taxonomy member surfaces as a distinct, caller-visible outcome.
func paymentStatus(err error) int {
	switch {
	case errors.Is(err, payment.ErrForbidden), errors.Is(err, payment.ErrOwnershipMismatch):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrUserNotFound), errors.Is(err, payment.ErrBillNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrAlreadyPaid), errors.Is(err, payment.ErrAmountMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
