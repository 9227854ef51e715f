package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prompty/notifier/internal/domain"
)

type pgDeviceTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeviceTokenRepository returns a DeviceTokenRepository backed by PostgreSQL.
func NewPgDeviceTokenRepository(pool *pgxpool.Pool) DeviceTokenRepository {
	return &pgDeviceTokenRepository{pool: pool}
}

func (r *pgDeviceTokenRepository) Register(ctx context.Context, token, userID string) error {
	// A token moving between users (device handed to a different account)
	// is reassigned rather than duplicated.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO fcm_tokens (token, user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, is_active = TRUE, updated_at = NOW()`,
		token, userID)
	if err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}

func (r *pgDeviceTokenRepository) ActiveForUser(ctx context.Context, userID string) ([]*domain.DeviceToken, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT token, user_id, is_active, created_at, updated_at
		FROM fcm_tokens
		WHERE user_id = $1 AND is_active = TRUE`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.DeviceToken
	for rows.Next() {
		var t domain.DeviceToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

func (r *pgDeviceTokenRepository) Deactivate(ctx context.Context, token string) error {
	// Idempotent: touching an already-inactive or unknown token changes nothing.
	_, err := r.pool.Exec(ctx, `
		UPDATE fcm_tokens
		SET is_active = FALSE, updated_at = NOW()
		WHERE token = $1 AND is_active = TRUE`, token)
	if err != nil {
		return fmt.Errorf("deactivate device token: %w", err)
	}
	return nil
}
