package db

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-optimizer/internal/matching"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// SaveBullet stores a new bullet with its embedding and returns its ID.
// Bullets are immutable: rewrites are stored as new rows, never updates.
func (db *DB) SaveBullet(ctx context.Context, userID, text string, embedding []float32) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO bullets (user_id, text, normalized_text, length_chars, embedding)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		userID, text, matching.Normalize(text), utf8.RuneCountInString(text), embedding,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save bullet: %w", err)
	}
	return id, nil
}

// GetBullet retrieves a bullet by ID, or nil when it does not exist
func (db *DB) GetBullet(ctx context.Context, bulletID uuid.UUID) (*types.Bullet, error) {
	var b types.Bullet
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, text, length_chars, embedding, created_at, updated_at
		 FROM bullets WHERE id = $1`,
		bulletID,
	).Scan(&b.ID, &b.UserID, &b.Text, &b.LengthChars, &b.Embedding, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bullet: %w", err)
	}
	return &b, nil
}

// ListEmbeddingsForUser retrieves all of a user's bullets with embeddings,
// newest first. Implements the store interface the similarity matcher
// consumes.
func (db *DB) ListEmbeddingsForUser(ctx context.Context, userID string) ([]types.Bullet, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, text, length_chars, embedding, created_at, updated_at
		 FROM bullets WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bullets: %w", err)
	}
	defer rows.Close()

	var bullets []types.Bullet
	for rows.Next() {
		var b types.Bullet
		if err := rows.Scan(&b.ID, &b.UserID, &b.Text, &b.LengthChars, &b.Embedding, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bullet: %w", err)
		}
		bullets = append(bullets, b)
	}
	return bullets, nil
}
