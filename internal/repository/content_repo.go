package repository

import (
	"context"

	"github.com/prompty/notifier/internal/domain"
)

// ContentRepository exposes the read-only application data the mapper needs
// to address notifications: prompt ownership for comments and likes, profile
// names for follows, and the profile list for announcement fan-out.
type ContentRepository interface {
	// PromptMeta returns the author and title of a prompt, or
	// domain.ErrNotFound if the prompt does not exist.
	PromptMeta(ctx context.Context, promptID string) (*domain.PromptMeta, error)

	// ProfileName returns the user's display name, falling back to the
	// username when no display name is set. domain.ErrNotFound if the
	// profile does not exist.
	ProfileName(ctx context.Context, userID string) (string, error)

	// ProfileIDs returns up to limit user IDs, used for announcement fan-out.
	ProfileIDs(ctx context.Context, limit int) ([]string, error)
}
