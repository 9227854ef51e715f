package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prompty/notifier/internal/domain"
)

type pgContentRepository struct {
	pool *pgxpool.Pool
}

// NewPgContentRepository returns a ContentRepository backed by PostgreSQL.
func NewPgContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &pgContentRepository{pool: pool}
}

func (r *pgContentRepository) PromptMeta(ctx context.Context, promptID string) (*domain.PromptMeta, error) {
	var meta domain.PromptMeta
	err := r.pool.QueryRow(ctx, `
		SELECT author_id, title FROM prompts WHERE id = $1`, promptID).
		Scan(&meta.AuthorID, &meta.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt meta: %w", err)
	}
	return &meta, nil
}

func (r *pgContentRepository) ProfileName(ctx context.Context, userID string) (string, error) {
	var displayName, username *string
	err := r.pool.QueryRow(ctx, `
		SELECT display_name, username FROM profiles WHERE id = $1`, userID).
		Scan(&displayName, &username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get profile name: %w", err)
	}

	if displayName != nil && *displayName != "" {
		return *displayName, nil
	}
	if username != nil {
		return *username, nil
	}
	return "", nil
}

func (r *pgContentRepository) ProfileIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM profiles ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
