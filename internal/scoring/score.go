package scoring

import (
	"context"
	"log"
	"math"

	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/textstats"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Weights configures the composite blend. WDistilled balances the distilled
// vs raw JD embedding; WEmb/WKey/WLLM weight the three sub-scores.
// UseLLMTerms toggles LLM term extraction; when off, keyword coverage falls
// back to the JD's most frequent tokens.
type Weights struct {
	UseDistilledJD bool
	UseLLMTerms    bool
	WDistilled     float64
	WEmb           float64
	WKey           float64
	WLLM           float64
}

// DefaultWeights returns the production blend.
func DefaultWeights() Weights {
	return Weights{
		UseDistilledJD: true,
		UseLLMTerms:    true,
		WDistilled:     0.7,
		WEmb:           0.4,
		WKey:           0.2,
		WLLM:           0.4,
	}
}

// topTermCount bounds the frequency-based keyword fallback.
const topTermCount = 15

// Scorer computes composite fit scores. A nil client is permitted: every
// externally-derived sub-score then degrades to zero and the composite
// still returns a value. Scoring never returns an error; it feeds
// decision-making that must survive transient provider failure.
type Scorer struct {
	client    llm.Client
	distiller *jd.Distiller
	weights   Weights
}

// NewScorer creates a Scorer. The distiller carries the caches for
// distillation and term extraction; pass a shared one so concurrent
// requests against the same JD reuse cached artifacts.
func NewScorer(client llm.Client, distiller *jd.Distiller, weights Weights) *Scorer {
	if distiller == nil {
		distiller = jd.NewDistiller(client, nil, nil)
	}
	return &Scorer{client: client, distiller: distiller, weights: weights}
}

// CompositeScore scores resumeText against jdText. Sub-scores:
//
//   - semantic: blended cosine of the resume embedding against distilled
//     and raw JD embeddings (collapses to one cosine when distillation is
//     disabled)
//   - keyword: weighted coverage of extracted terms when distillation
//     happened, plain keyword coverage otherwise
//   - llm: strict recruiter judgment in [0,100]
//
// Any provider failure degrades the affected sub-score to zero.
func (s *Scorer) CompositeScore(ctx context.Context, resumeText, jdText string) types.Score {
	jdForEmbed := jdText
	distilled := ""
	distilledUsed := false
	if s.weights.UseDistilledJD {
		distilled, distilledUsed = s.distiller.Distill(ctx, jdText)
		jdForEmbed = distilled
	}

	embResume := s.embed(ctx, resumeText)
	embJD := s.embed(ctx, jdForEmbed)
	simDistilled := Cosine(embResume, embJD)

	simRaw := simDistilled
	if distilledUsed && distilled != jdText {
		simRaw = Cosine(embResume, s.embed(ctx, jdText))
	}
	semantic := s.weights.WDistilled*simDistilled + (1.0-s.weights.WDistilled)*simRaw

	var keywordCov float64
	llmTermsUsed := false
	switch {
	case distilledUsed && s.weights.UseLLMTerms:
		terms := s.distiller.ExtractTerms(ctx, distilled)
		keywordCov = textstats.WeightedKeywordCoverage(resumeText, terms.Categories())
		llmTermsUsed = !terms.IsEmpty()
	case distilledUsed:
		top := textstats.TopTerms(distilled, topTermCount)
		keywordCov = textstats.WeightedKeywordCoverage(resumeText, map[string][]string{"keywords": top})
	default:
		keywordCov = textstats.KeywordCoverage(resumeText, jdText)
	}

	llmScore := s.fitScore(ctx, resumeText, jdForEmbed)

	composite := s.weights.WEmb*semantic + s.weights.WKey*keywordCov + s.weights.WLLM*(llmScore/100.0)

	return types.Score{
		EmbedSim:      round(semantic, 4),
		KeywordCov:    round(keywordCov, 4),
		LLMScore:      round(llmScore, 1),
		Composite:     round(composite*100.0, 1),
		DistilledUsed: distilledUsed,
		LLMTermsUsed:  llmTermsUsed,
	}
}

// ScoreDelta scores both texts against the JD and returns the pointwise
// improvement of after over before.
func (s *Scorer) ScoreDelta(ctx context.Context, beforeText, afterText, jdText string) (types.Score, types.Score, types.Delta) {
	before := s.CompositeScore(ctx, beforeText, jdText)
	after := s.CompositeScore(ctx, afterText, jdText)
	return before, after, types.Diff(before, after)
}

// embed returns the embedding or nil on any failure. A nil vector makes the
// similarity sub-score contribute zero.
func (s *Scorer) embed(ctx context.Context, text string) []float32 {
	if s.client == nil || text == "" {
		return nil
	}
	vec, err := s.client.Embed(ctx, text)
	if err != nil {
		log.Printf("scoring: embedding failed, similarity degrades to 0: %v", err)
		return nil
	}
	return vec
}

// fitScore obtains the LLM fit judgment in [0,100]. Missing client,
// provider failure, and unparseable output all yield 0.
func (s *Scorer) fitScore(ctx context.Context, resumeText, jdText string) float64 {
	if s.client == nil {
		return 0.0
	}

	template := prompts.MustGet("scoring.json", "fit-score")
	prompt := prompts.Format(template, map[string]string{
		"JobText":    jdText,
		"ResumeText": resumeText,
	})

	response, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("scoring: fit judgment failed, score degrades to 0: %v", err)
		return 0.0
	}

	score, ok := llm.ParseFitScore(response)
	if !ok {
		log.Printf("scoring: fit judgment returned no number, score degrades to 0")
		return 0.0
	}
	return score
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
