package repository

import (
	"context"

	"github.com/prompty/notifier/internal/domain"
)

// DeviceTokenRepository defines persistence operations on the fcm_tokens
// table. Tokens are registered by the Prompty app and deactivated by the
// dispatcher when the provider rejects them; they are never deleted here.
type DeviceTokenRepository interface {
	// Register upserts a token. Re-registering an existing token reassigns
	// it to the given user and reactivates it.
	Register(ctx context.Context, token, userID string) error

	// ActiveForUser returns every active token owned by the user.
	ActiveForUser(ctx context.Context, userID string) ([]*domain.DeviceToken, error)

	// Deactivate flips is_active to false. Deactivating an unknown or
	// already-inactive token is a no-op.
	Deactivate(ctx context.Context, token string) error
}
