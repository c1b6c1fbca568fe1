// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Bullet represents a single unit of resume content. A bullet is immutable
// once scored: rewrites produce new derived text and never mutate the
// original in place.
type Bullet struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Text        string    `json:"text"`
	LengthChars int       `json:"length_chars"`
	Embedding   []float32 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FactSet holds structured, user-confirmed information about one bullet,
// collected from a Q&A exchange. Confirmed fact sets are the only
// permissible source of new claims during fact-based generation;
// unconfirmed sets exist but must not feed generation.
type FactSet struct {
	Situation string   `json:"situation,omitempty"`
	Actions   []string `json:"actions,omitempty"`
	Results   []string `json:"results,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Tools     []string `json:"tools,omitempty"`
	Timeline  string   `json:"timeline,omitempty"`
}

// HasMeaningfulFacts reports whether the fact set carries at least one
// usable field. This predicate is the sole branch condition between the
// conservative and fact-based generation paths: a nil or all-empty set
// routes to the conservative path.
func (f *FactSet) HasMeaningfulFacts() bool {
	if f == nil {
		return false
	}
	return f.Situation != "" ||
		f.Timeline != "" ||
		len(f.Actions) > 0 ||
		len(f.Results) > 0 ||
		len(f.Skills) > 0 ||
		len(f.Tools) > 0
}

// FactRecord wraps a FactSet with its storage metadata. Multiple records may
// exist per bullet over time; the most recent confirmed one is authoritative.
type FactRecord struct {
	ID        uuid.UUID `json:"id"`
	BulletID  uuid.UUID `json:"bullet_id"`
	Facts     FactSet   `json:"facts"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// QAPair is a single question/answer exchange used for fact extraction.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
