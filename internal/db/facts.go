package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// SaveFactRecord stores a new fact record for a bullet, unconfirmed by
// default. Records are versioned by insertion: confirming never rewrites
// older rows.
func (db *DB) SaveFactRecord(ctx context.Context, bulletID uuid.UUID, facts *types.FactSet) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(facts)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal facts: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO bullet_facts (bullet_id, facts, confirmed)
		 VALUES ($1, $2, false)
		 RETURNING id`,
		bulletID, jsonBytes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save fact record: %w", err)
	}
	return id, nil
}

// ConfirmFactRecord marks a fact record as user-confirmed, making it
// eligible as a generation source
func (db *DB) ConfirmFactRecord(ctx context.Context, recordID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE bullet_facts SET confirmed = true WHERE id = $1`,
		recordID,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm fact record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("fact record not found: %s", recordID)
	}
	return nil
}

// GetConfirmedFacts retrieves the most recent confirmed FactSet for a
// bullet, or nil when none exists. Unconfirmed records never surface here;
// generation must not see them.
func (db *DB) GetConfirmedFacts(ctx context.Context, bulletID uuid.UUID) (*types.FactSet, error) {
	var jsonBytes []byte
	err := db.pool.QueryRow(ctx,
		`SELECT facts FROM bullet_facts
		 WHERE bullet_id = $1 AND confirmed = true
		 ORDER BY created_at DESC LIMIT 1`,
		bulletID,
	).Scan(&jsonBytes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get confirmed facts: %w", err)
	}

	var facts types.FactSet
	if err := json.Unmarshal(jsonBytes, &facts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal facts: %w", err)
	}
	return &facts, nil
}

// ListFactRecords retrieves all fact records for a bullet, newest first
func (db *DB) ListFactRecords(ctx context.Context, bulletID uuid.UUID) ([]types.FactRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, bullet_id, facts, confirmed, created_at
		 FROM bullet_facts WHERE bullet_id = $1 ORDER BY created_at DESC`,
		bulletID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact records: %w", err)
	}
	defer rows.Close()

	var records []types.FactRecord
	for rows.Next() {
		var rec types.FactRecord
		var jsonBytes []byte
		if err := rows.Scan(&rec.ID, &rec.BulletID, &jsonBytes, &rec.Confirmed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact record: %w", err)
		}
		if err := json.Unmarshal(jsonBytes, &rec.Facts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal facts: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
