package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/paycheck-sim/paycheck-be/internal/models"
)

// SeedDemoData provisions the demo dataset: two users and two bills for
// user_1 (one due, one already paid). Safe to call repeatedly; it stops
// without error once user_1 exists.
func SeedDemoData(ctx context.Context, store Store) error {
	if _, err := store.FindUserByExternalID(ctx, "user_1"); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check existing seed: %w", err)
	}

	users := []struct {
		externalID string
		name       string
		password   string
	}{
		{"user_1", "Pradyumna", "pass123"},
		{"user_2", "Nico Robin", "pass456"},
	}

	byExternalID := make(map[string]models.User, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		created, err := store.CreateUser(ctx, models.User{
			ExternalID:   u.externalID,
			Name:         u.name,
			PasswordHash: string(hash),
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.externalID, err)
		}
		byExternalID[u.externalID] = created
	}

	bills := []models.Bill{
		{ExternalID: "bill_101", OwnerID: byExternalID["user_1"].ID, Amount: decimal.NewFromFloat(100.0), Status: models.BillStatusDue},
		{ExternalID: "bill_102", OwnerID: byExternalID["user_1"].ID, Amount: decimal.NewFromFloat(200.0), Status: models.BillStatusPaid},
	}
	for _, b := range bills {
		if _, err := store.CreateBill(ctx, b); err != nil {
			return fmt.Errorf("seed bill %s: %w", b.ExternalID, err)
		}
	}

	return nil
}
