package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/paycheck-sim/paycheck-be/internal/auth"
	"github.com/paycheck-sim/paycheck-be/internal/http/respond"
	"github.com/paycheck-sim/paycheck-be/internal/middleware"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

// TransactionsHandler serves a user's payment history.
type TransactionsHandler struct {
	store  storage.Store
	tokens *auth.TokenManager
}

// NewTransactionsHandler constructs the handler.
func NewTransactionsHandler(store storage.Store, tokens *auth.TokenManager) *TransactionsHandler {
	return &TransactionsHandler{store: store, tokens: tokens}
}

// Register wires the handler into a ServeMux.
func (h *TransactionsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /transactions/{user_id}", middleware.RequireAuth(h.tokens, h.handleList))
}

func (h *TransactionsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if middleware.CallerID(r.Context()) != userID {
		respond.Error(w, http.StatusForbidden, "operation not permitted")
		return
	}

	user, err := h.store.FindUserByExternalID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("fetch user failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	txns, err := h.store.ListTransactions(r.Context(), user.ID)
	if err != nil {
		slog.Error("list transactions failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respond.JSON(w, http.StatusOK, "transactions", txns)
}
