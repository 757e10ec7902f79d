package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/paycheck-sim/paycheck-be/internal/models"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid user id or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUserExists         = errors.New("user id already registered")
)

// Authenticator verifies credentials and provisions users against the
// identity store using bcrypt password hashing.
type Authenticator struct {
	store storage.Store
}

// NewAuthenticator creates a password-based authenticator.
func NewAuthenticator(store storage.Store) *Authenticator {
	return &Authenticator{store: store}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *Authenticator) ValidateCredential(credential string) error {
	if len(credential) < 6 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *Authenticator) Register(ctx context.Context, externalID, name, credential string) (models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.store.CreateUser(ctx, models.User{
		ExternalID:   externalID,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the external ID and password, returning the
// user if valid. Unknown users and wrong passwords are reported the
// same way so callers cannot probe for account existence.
func (a *Authenticator) Authenticate(ctx context.Context, externalID, credential string) (models.User, error) {
	user, err := a.store.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
