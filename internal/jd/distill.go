package jd

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// minDistilledLength guards against degenerate distillation output; anything
// shorter falls back to the raw JD text.
const minDistilledLength = 40

// termsKeyPrefix separates term-cache keys from distillation keys so both
// can share a backing store without collisions.
const termsKeyPrefix = "terms:"

// Distiller derives the role core and categorized terms from job
// description text, caching both by content hash. A nil client is
// permitted: distillation then returns the raw JD and extraction returns an
// empty term set, so scoring degrades instead of failing.
type Distiller struct {
	client       llm.Client
	distillCache Cache
	termsCache   Cache
}

// NewDistiller creates a Distiller with injected caches. Either cache may be
// shared across Distillers; keys do not collide.
func NewDistiller(client llm.Client, distillCache, termsCache Cache) *Distiller {
	if distillCache == nil {
		distillCache = NewMemoryCache()
	}
	if termsCache == nil {
		termsCache = NewMemoryCache()
	}
	return &Distiller{
		client:       client,
		distillCache: distillCache,
		termsCache:   termsCache,
	}
}

// Distill returns the role-core summary of the JD text, stripped of
// benefits/legal/culture boilerplate, and whether distillation actually
// happened. Cache hits return without any external call. On any failure, or
// when no client is configured, the raw JD text is returned with ok=false
// so callers always have something embeddable and can report provenance
// honestly.
func (d *Distiller) Distill(ctx context.Context, jdText string) (distilled string, ok bool) {
	if d.client == nil || strings.TrimSpace(jdText) == "" {
		return jdText, false
	}

	key := Hash(jdText)
	if cached, hit := d.distillCache.Get(key); hit {
		return cached, true
	}

	template := prompts.MustGet("scoring.json", "distill-jd")
	prompt := prompts.Format(template, map[string]string{"JobText": jdText})

	distilled, err := d.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("jd: distillation failed, using raw JD: %v", err)
		return jdText, false
	}

	distilled = strings.TrimSpace(distilled)
	if len(distilled) < minDistilledLength {
		distilled = jdText
	}

	d.distillCache.Put(key, distilled)
	return distilled, true
}

// ExtractTerms returns the categorized role-critical terms for the JD text.
// Cache hits return without any external call. Parse failures and missing
// clients fall back to an empty TermSet; callers then use plain keyword
// coverage instead of weighted coverage.
func (d *Distiller) ExtractTerms(ctx context.Context, jdText string) *types.TermSet {
	if d.client == nil || strings.TrimSpace(jdText) == "" {
		return &types.TermSet{}
	}

	key := termsKeyPrefix + Hash(jdText)
	if cached, ok := d.termsCache.Get(key); ok {
		var terms types.TermSet
		if err := json.Unmarshal([]byte(cached), &terms); err == nil {
			return &terms
		}
		// Corrupt cache entry; fall through and recompute.
	}

	template := prompts.MustGet("scoring.json", "extract-terms")
	prompt := prompts.Format(template, map[string]string{"JobText": jdText})

	raw, err := d.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("jd: term extraction failed, using empty term set: %v", err)
		return &types.TermSet{}
	}

	terms, err := parseTerms(raw)
	if err != nil {
		log.Printf("jd: term extraction returned unparseable JSON, using empty term set: %v", err)
		return &types.TermSet{}
	}

	if encoded, err := json.Marshal(terms); err == nil {
		d.termsCache.Put(key, string(encoded))
	}
	return terms
}

// parseTerms decodes the extraction response, tolerating markdown fences,
// then normalizes every category to a sorted, deduplicated, trimmed list.
func parseTerms(raw string) (*types.TermSet, error) {
	cleaned := llm.CleanJSONBlock(raw)

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, err
	}

	return &types.TermSet{
		Skills:           normalizeTerms(decoded["skills"]),
		Tools:            normalizeTerms(decoded["tools"]),
		Domains:          normalizeTerms(decoded["domains"]),
		Responsibilities: normalizeTerms(decoded["responsibilities"]),
		Seniority:        normalizeTerms(decoded["seniority"]),
		Certifications:   normalizeTerms(decoded["certifications"]),
	}, nil
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Strings(out)
	return out
}
