package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/paycheck-sim/paycheck-be/internal/auth"
	"github.com/paycheck-sim/paycheck-be/internal/http/respond"
	"github.com/paycheck-sim/paycheck-be/internal/models/dto"
)

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	authenticator *auth.Authenticator
	tokens        *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authenticator *auth.Authenticator, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, tokens: tokens}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	name := strings.TrimSpace(req.Name)
	if userID == "" || name == "" {
		respond.Error(w, http.StatusBadRequest, "user_id and name are required")
		return
	}

	user, err := h.authenticator.Register(r.Context(), userID, name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		case errors.Is(err, auth.ErrWeakPassword):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("create user failed", "user_id", userID, "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "user created successfully", user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "user_id and password are required")
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), strings.TrimSpace(req.UserID), req.Password)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		slog.Error("generate token failed", "user_id", user.ExternalID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}
