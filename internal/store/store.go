package store

import (
	"context"
)

// User is a messaging-bot user identified by phone number.
// RefreshToken is empty until the user completes the Google consent flow.
type User struct {
	Phone        string
	RefreshToken string
}

// Store is the user record contract consumed by the auth service.
//
// UpsertRefreshToken replaces the older select-then-insert-or-update
// sequence with a single atomic write, so concurrent exchanges for the
// same phone cannot lose updates.
type Store interface {
	// FindByPhone returns the record for phone, or nil if none exists.
	// It returns an error only for storage failures, not for missing rows.
	FindByPhone(ctx context.Context, phone string) (*User, error)

	// UpsertRefreshToken inserts a record for phone or, when one already
	// exists, replaces its refresh token.
	UpsertRefreshToken(ctx context.Context, phone, refreshToken string) error

	// Close releases the underlying storage resources.
	Close()
}
