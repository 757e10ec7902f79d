package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paycheck-sim/paycheck-be/internal/config"
	"github.com/paycheck-sim/paycheck-be/internal/payment"
	"github.com/paycheck-sim/paycheck-be/internal/server"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
	"github.com/paycheck-sim/paycheck-be/internal/storage/sqlite"
)

// startTestServer spins up the full routing table over a seeded sqlite
// store: user_1/pass123 with bill_101 (100, DUE) and bill_102 (200, PAID),
// plus user_2/pass456.
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := storage.SeedDemoData(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := config.Config{
		JWTSecret: "test-secret",
		JWTIssuer: "paycheck-test",
		JWTTTL:    time.Hour,
	}
	authorizer := payment.NewAuthorizer(store, slog.Default())

	ts := httptest.NewServer(server.NewMux(cfg, store, authorizer))
	t.Cleanup(ts.Close)
	return ts
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url, token string, payload any) (int, envelope) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, baseURL, userID, password string) string {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, baseURL+"/login", "", map[string]string{
		"user_id": userID, "password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d (%s)", status, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("login response missing token")
	}
	return data.Token
}

func TestHealth(t *testing.T) {
	ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	ts := startTestServer(t)

	t.Run("valid credentials return a token", func(t *testing.T) {
		login(t, ts.URL, "user_1", "pass123")
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
			"user_id": "user_1", "password": "wrong",
		})
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
			"user_id": "user_x", "password": "pass123",
		})
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
	})
}

func TestRegister(t *testing.T) {
	ts := startTestServer(t)

	status, _ := doJSON(t, http.MethodPost, ts.URL+"/register", "", map[string]string{
		"user_id": "user_3", "name": "Roronoa Zoro", "password": "santoryu",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", status)
	}

	// New account can log in right away.
	login(t, ts.URL, "user_3", "santoryu")

	status, _ = doJSON(t, http.MethodPost, ts.URL+"/register", "", map[string]string{
		"user_id": "user_3", "name": "Impostor", "password": "whatever1",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", status)
	}
}

func TestBillsEndpoint(t *testing.T) {
	ts := startTestServer(t)
	token := login(t, ts.URL, "user_1", "pass123")

	t.Run("requires a token", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodGet, ts.URL+"/bills/user_1", "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodGet, ts.URL+"/bills/user_1", "not.a.token", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
	})

	t.Run("lists only due bills for the caller", func(t *testing.T) {
		status, env := doJSON(t, http.MethodGet, ts.URL+"/bills/user_1", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		var bills []struct {
			BillID string          `json:"bill_id"`
			Amount decimal.Decimal `json:"amount"`
			Status string          `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &bills); err != nil {
			t.Fatalf("decode bills: %v", err)
		}
		if len(bills) != 1 || bills[0].BillID != "bill_101" {
			t.Fatalf("bills = %+v, want only bill_101", bills)
		}
		if bills[0].Status != "DUE" || !bills[0].Amount.Equal(decimal.RequireFromString("100")) {
			t.Errorf("bill_101 = %+v, want DUE/100", bills[0])
		}
	})

	t.Run("another user's bills are forbidden", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodGet, ts.URL+"/bills/user_2", token, nil)
		if status != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", status)
		}
	})
}

func TestPayEndpoint(t *testing.T) {
	ts := startTestServer(t)
	token := login(t, ts.URL, "user_1", "pass123")

	payBody := func(userID, billID string, amount float64) map[string]any {
		return map[string]any{"user_id": userID, "bill_id": billID, "amount": amount}
	}

	t.Run("amount mismatch is a client error", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/pay", token, payBody("user_1", "bill_101", 99.0))
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", status)
		}
	})

	t.Run("paying for someone else is forbidden", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/pay", token, payBody("user_2", "bill_101", 100.0))
		if status != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", status)
		}
	})

	t.Run("unknown bill is not found", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/pay", token, payBody("user_1", "bill_x", 100.0))
		if status != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", status)
		}
	})

	t.Run("exact payment succeeds once", func(t *testing.T) {
		status, env := doJSON(t, http.MethodPost, ts.URL+"/pay", token, payBody("user_1", "bill_101", 100.0))
		if status != http.StatusOK {
			t.Fatalf("status = %d (%s), want 200", status, env.Message)
		}
		var txn struct {
			TransactionID string          `json:"transaction_id"`
			Amount        decimal.Decimal `json:"amount"`
			Status        string          `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &txn); err != nil {
			t.Fatalf("decode transaction: %v", err)
		}
		if txn.Status != "SUCCESS" || txn.TransactionID == "" {
			t.Fatalf("transaction = %+v, want SUCCESS with id", txn)
		}
		if !txn.Amount.Equal(decimal.RequireFromString("100")) {
			t.Errorf("amount = %s, want 100", txn.Amount)
		}

		// Retrying never double-charges.
		status, _ = doJSON(t, http.MethodPost, ts.URL+"/pay", token, payBody("user_1", "bill_101", 100.0))
		if status != http.StatusBadRequest {
			t.Fatalf("retry status = %d, want 400", status)
		}

		// The paid bill drops off the due list.
		status, env = doJSON(t, http.MethodGet, ts.URL+"/bills/user_1", token, nil)
		if status != http.StatusOK {
			t.Fatalf("bills status = %d", status)
		}
		var bills []json.RawMessage
		if err := json.Unmarshal(env.Data, &bills); err != nil && len(env.Data) > 0 && string(env.Data) != "null" {
			t.Fatalf("decode bills: %v", err)
		}
		if len(bills) != 0 {
			t.Errorf("due bills after payment = %d, want 0", len(bills))
		}
	})
}

func TestTransactionsEndpoint(t *testing.T) {
	ts := startTestServer(t)
	token := login(t, ts.URL, "user_1", "pass123")

	t.Run("another user's history is forbidden", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodGet, ts.URL+"/transactions/user_2", token, nil)
		if status != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", status)
		}
	})

	t.Run("history reflects committed payments", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, ts.URL+"/pay", token, map[string]any{
			"user_id": "user_1", "bill_id": "bill_101", "amount": 100.0,
		})
		if status != http.StatusOK {
			t.Fatalf("pay status = %d", status)
		}

		status, env := doJSON(t, http.MethodGet, ts.URL+"/transactions/user_1", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		var txns []struct {
			TransactionID string `json:"transaction_id"`
			Status        string `json:"status"`
		}
		if err := json.Unmarshal(env.Data, &txns); err != nil {
			t.Fatalf("decode transactions: %v", err)
		}
		if len(txns) != 1 || txns[0].Status != "SUCCESS" {
			t.Fatalf("transactions = %+v, want one SUCCESS", txns)
		}
	})
}

func TestUsersEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/users")
	if err != nil {
		t.Fatalf("users request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("users status = %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var users []struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
	for _, u := range users {
		if u.UserID == "" || u.Name == "" {
			t.Errorf("user missing fields: %+v", u)
		}
	}
	if bytes.Contains(env.Data, []byte("password")) {
		t.Error("users listing leaks password hashes")
	}
}
