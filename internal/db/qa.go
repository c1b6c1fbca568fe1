package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// CreateQASession opens a fact-collection conversation about one bullet and
// returns its ID
func (db *DB) CreateQASession(ctx context.Context, bulletID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO qa_sessions (bullet_id, status)
		 VALUES ($1, 'open')
		 RETURNING id`,
		bulletID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create qa session: %w", err)
	}
	return id, nil
}

// AddQAPair appends one question/answer exchange to a session
func (db *DB) AddQAPair(ctx context.Context, sessionID uuid.UUID, question, answer string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO qa_pairs (session_id, question, answer)
		 VALUES ($1, $2, $3)`,
		sessionID, question, answer,
	)
	if err != nil {
		return fmt.Errorf("failed to add qa pair: %w", err)
	}
	return nil
}

// ListQAPairs retrieves a session's exchanges in insertion order, the order
// fact extraction expects
func (db *DB) ListQAPairs(ctx context.Context, sessionID uuid.UUID) ([]types.QAPair, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT question, answer FROM qa_pairs
		 WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list qa pairs: %w", err)
	}
	defer rows.Close()

	var pairs []types.QAPair
	for rows.Next() {
		var p types.QAPair
		if err := rows.Scan(&p.Question, &p.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan qa pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// CompleteQASession marks a session closed after facts were extracted
func (db *DB) CompleteQASession(ctx context.Context, sessionID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE qa_sessions SET status = 'complete', completed_at = NOW() WHERE id = $1`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete qa session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("qa session not found: %s", sessionID)
	}
	return nil
}
