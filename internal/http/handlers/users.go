package handlers

import (
	"log/slog"
	"net/http"

	"github.com/paycheck-sim/paycheck-be/internal/http/respond"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

// UsersHandler lists provisioned users. The listing is public.
type UsersHandler struct {
	store storage.Store
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(store storage.Store) *UsersHandler {
	return &UsersHandler{store: store}
}

// Register wires the handler into a ServeMux.
func (h *UsersHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.handleList)
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respond.JSON(w, http.StatusOK, "users", users)
}
