// Package lengthfit forces generated text into a tiered character budget.
// A bounded reprompt loop shrinks the text while preserving meaning; hard
// truncation is the backstop that guarantees termination.
package lengthfit

import (
	"context"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
)

// Cap tiers keyed off the original bullet length. There is no tier below
// 100, no matter how short the original was.
const (
	tier1Limit = 110
	tier1Cap   = 100
	tier2Limit = 210
	tier2Cap   = 200
	tier3Cap   = 300
)

// DefaultMaxReprompts bounds the shrink loop. The bound is a fixed count,
// not time-based, to keep worst-case latency predictable.
const DefaultMaxReprompts = 3

// TieredCap returns the character budget for a bullet of originalLength.
// A positive override is used verbatim.
func TieredCap(originalLength, override int) int {
	if override > 0 {
		return override
	}
	switch {
	case originalLength <= tier1Limit:
		return tier1Cap
	case originalLength <= tier2Limit:
		return tier2Cap
	default:
		return tier3Cap
	}
}

// Fitter shrinks text into a cap via reprompting. A nil client is permitted
// and makes FitToCap a pure truncation.
type Fitter struct {
	client       llm.Client
	maxReprompts int
}

// NewFitter creates a Fitter. Non-positive maxReprompts falls back to
// DefaultMaxReprompts.
func NewFitter(client llm.Client, maxReprompts int) *Fitter {
	if maxReprompts <= 0 {
		maxReprompts = DefaultMaxReprompts
	}
	return &Fitter{client: client, maxReprompts: maxReprompts}
}

// FitToCap returns text normalized and guaranteed to fit within cap
// characters. Text that already fits is returned unchanged after
// normalization. Without a client the result is a direct truncation; with
// one, up to maxReprompts rewrites are attempted before truncating.
func (f *Fitter) FitToCap(ctx context.Context, text string, cap int) string {
	normalized := llm.StripBulletPrefix(text)
	if cap <= 0 {
		return ""
	}
	if utf8.RuneCountInString(normalized) <= cap {
		return normalized
	}
	if f.client == nil {
		return truncate(normalized, cap)
	}

	template := prompts.MustGet("lengthfit.json", "fit-to-cap")
	for attempt := 0; attempt < f.maxReprompts; attempt++ {
		prompt := prompts.Format(template, map[string]string{
			"Cap":  strconv.Itoa(cap),
			"Text": normalized,
		})

		out, err := f.client.GenerateContent(ctx, prompt, llm.TierLite)
		if err != nil {
			log.Printf("lengthfit: reprompt %d failed: %v", attempt+1, err)
			continue
		}

		candidate := llm.StripBulletPrefix(out)
		if candidate == "" {
			continue
		}
		if utf8.RuneCountInString(candidate) < utf8.RuneCountInString(normalized) {
			normalized = candidate
		}
		if utf8.RuneCountInString(normalized) <= cap {
			return normalized
		}
	}

	return truncate(normalized, cap)
}

// truncate cuts to exactly cap characters with trailing whitespace trimmed.
func truncate(text string, cap int) string {
	runes := []rune(text)
	if len(runes) <= cap {
		return text
	}
	return strings.TrimRight(string(runes[:cap]), " \t")
}
