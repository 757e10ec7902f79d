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

// BillsHandler serves a user's due bills.
type BillsHandler struct {
	store  storage.Store
	tokens *auth.TokenManager
}

// NewBillsHandler constructs the handler.
func NewBillsHandler(store storage.Store, tokens *auth.TokenManager) *BillsHandler {
	return &BillsHandler{store: store, tokens: tokens}
}

// Register wires the handler into a ServeMux.
func (h *BillsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /bills/{user_id}", middleware.RequireAuth(h.tokens, h.handleListDue))
}

func (h *BillsHandler) handleListDue(w http.ResponseWriter, r *http.Request) {
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

	bills, err := h.store.ListDueBills(r.Context(), user.ID)
	if err != nil {
		slog.Error("list due bills failed", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list bills")
		return
	}
	respond.JSON(w, http.StatusOK, "due bills", bills)
}
