package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/paycheck-sim/paycheck-be/internal/storage/sqlite"
)

func newAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewAuthenticator(store)
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()

	t.Run("register then authenticate", func(t *testing.T) {
		a := newAuthenticator(t)

		user, err := a.Register(ctx, "user_1", "Pradyumna", "pass123")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.PasswordHash == "pass123" {
			t.Error("password stored unhashed")
		}

		got, err := a.Authenticate(ctx, "user_1", "pass123")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("authenticated wrong user: %d != %d", got.ID, user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		a := newAuthenticator(t)
		if _, err := a.Register(ctx, "user_1", "Pradyumna", "pass123"); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := a.Authenticate(ctx, "user_1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user looks like bad credentials", func(t *testing.T) {
		a := newAuthenticator(t)
		if _, err := a.Authenticate(ctx, "user_x", "pass123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		a := newAuthenticator(t)
		if _, err := a.Register(ctx, "user_1", "Pradyumna", "pass123"); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := a.Register(ctx, "user_1", "Someone Else", "pass456"); !errors.Is(err, ErrUserExists) {
			t.Fatalf("err = %v, want ErrUserExists", err)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		a := newAuthenticator(t)
		if _, err := a.Register(ctx, "user_1", "Pradyumna", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("err = %v, want ErrWeakPassword", err)
		}
	})
}
