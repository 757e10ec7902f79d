package models

import "time"

// User captures application-facing fields for an authenticated identity.
// ExternalID is the stable caller-visible identifier (e.g. "user_1");
// ID is the storage key and never leaves the service.
type User struct {
	ID           int64     `json:"-"`
	ExternalID   string    `json:"user_id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
