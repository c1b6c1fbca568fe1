package types

import "github.com/google/uuid"

// MatchTier classifies how similar a new bullet is to previously stored ones.
type MatchTier string

// Match tiers, totally ordered by similarity. Exact always implies
// similarity 1.0 and is decided by normalized string equality before any
// vector comparison.
const (
	MatchExact            MatchTier = "exact"
	MatchHighConfidence   MatchTier = "high_confidence"
	MatchMediumConfidence MatchTier = "medium_confidence"
	MatchNone             MatchTier = "no_match"
)

// MatchResult is the outcome of comparing a new bullet against a user's
// bullet history. BulletID and MatchedText are zero-valued for MatchNone.
type MatchResult struct {
	Tier        MatchTier `json:"match_type"`
	BulletID    uuid.UUID `json:"bullet_id,omitempty"`
	Similarity  float64   `json:"similarity_score"`
	MatchedText string    `json:"existing_bullet_text,omitempty"`
}

// Matched reports whether any stored bullet was close enough to reuse.
func (m *MatchResult) Matched() bool {
	return m.Tier != MatchNone
}
