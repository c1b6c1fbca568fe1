// Package matching classifies a new bullet against a user's stored bullet
// history into a confidence tier. The tier decides whether previously
// collected facts can be reused without re-asking the user.
package matching

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/scoring"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Tier thresholds, applied to the maximum cosine similarity over the
// user's stored embeddings.
const (
	HighConfidenceThreshold   = 0.90
	MediumConfidenceThreshold = 0.85
)

// BulletStore lists a user's stored bullets with their embeddings.
type BulletStore interface {
	ListEmbeddingsForUser(ctx context.Context, userID string) ([]types.Bullet, error)
}

// Matcher classifies bullets against stored history. The client is only
// used to embed the query bullet when the caller does not supply a vector;
// exact matches never touch it.
type Matcher struct {
	store  BulletStore
	client llm.Client
}

func NewMatcher(store BulletStore, client llm.Client) *Matcher {
	return &Matcher{store: store, client: client}
}

// MatchBullet classifies bulletText against the user's stored bullets.
//
// A normalized exact string match short-circuits to the exact tier with
// similarity fixed at 1.0 and no vector work. Otherwise the maximum cosine
// over stored embeddings selects the tier. A user with zero stored bullets
// always yields no_match. Only store failures return an error; embedding
// failures degrade to no_match because matching feeds a policy decision
// that must survive provider outages.
func (m *Matcher) MatchBullet(ctx context.Context, userID string, bulletText string, embedding []float32) (types.MatchResult, error) {
	if m.store == nil {
		return noMatch(), nil
	}

	stored, err := m.store.ListEmbeddingsForUser(ctx, userID)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("listing bullets for user %s: %w", userID, err)
	}
	if len(stored) == 0 {
		return noMatch(), nil
	}

	normalized := Normalize(bulletText)
	for _, b := range stored {
		if Normalize(b.Text) == normalized {
			return types.MatchResult{
				Tier:        types.MatchExact,
				BulletID:    b.ID,
				Similarity:  1.0,
				MatchedText: b.Text,
			}, nil
		}
	}

	if embedding == nil {
		embedding = m.embedQuery(ctx, bulletText)
	}
	if embedding == nil {
		return noMatch(), nil
	}

	best := noMatch()
	for _, b := range stored {
		if len(b.Embedding) == 0 {
			continue
		}
		sim := scoring.Cosine(embedding, b.Embedding)
		if sim > best.Similarity {
			best = types.MatchResult{
				BulletID:    b.ID,
				Similarity:  sim,
				MatchedText: b.Text,
			}
		}
	}

	best.Tier = tierFor(best.Similarity)
	if best.Tier == types.MatchNone {
		return noMatch(), nil
	}
	best.Similarity = round4(best.Similarity)
	return best, nil
}

// Normalize produces the canonical form used for exact-match comparison.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func tierFor(similarity float64) types.MatchTier {
	switch {
	case similarity >= HighConfidenceThreshold:
		return types.MatchHighConfidence
	case similarity >= MediumConfidenceThreshold:
		return types.MatchMediumConfidence
	default:
		return types.MatchNone
	}
}

func (m *Matcher) embedQuery(ctx context.Context, text string) []float32 {
	if m.client == nil {
		return nil
	}
	vec, err := m.client.Embed(ctx, text)
	if err != nil {
		return nil
	}
	return vec
}

func noMatch() types.MatchResult {
	return types.MatchResult{Tier: types.MatchNone}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
