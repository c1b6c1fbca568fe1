package scoring

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient implements llm.Client for scorer tests. Embeddings are keyed
// by text so distilled and raw JDs can carry distinct vectors.
type stubClient struct {
	embeddings   map[string][]float32
	embedErr     error
	jsonByPrompt func(prompt string) (string, error)
	textResponse string
	jsonCalls    int
}

func (s *stubClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.textResponse, nil
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.jsonCalls++
	if s.jsonByPrompt != nil {
		return s.jsonByPrompt(prompt)
	}
	return "0", nil
}

func (s *stubClient) Embed(_ context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if vec, ok := s.embeddings[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

func (s *stubClient) GetModel(_ llm.ModelTier) string { return "stub" }

func (s *stubClient) Close() error { return nil }

// respond routes judge and extraction prompts to canned responses.
func respond(fitScore, termsJSON string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		if strings.Contains(prompt, "strict recruiter") {
			return fitScore, nil
		}
		return termsJSON, nil
	}
}

func TestCompositeScore_NoClientReturnsFiniteZeros(t *testing.T) {
	scorer := NewScorer(nil, nil, DefaultWeights())

	score := scorer.CompositeScore(context.Background(), "resume text here", "jd text here")

	for name, v := range map[string]float64{
		"embed_sim":   score.EmbedSim,
		"keyword_cov": score.KeywordCov,
		"llm_score":   score.LLMScore,
		"composite":   score.Composite,
	} {
		assert.False(t, math.IsNaN(v), "%s must be finite", name)
		assert.False(t, math.IsInf(v, 0), "%s must be finite", name)
	}
	assert.Equal(t, 0.0, score.EmbedSim)
	assert.Equal(t, 0.0, score.LLMScore)
}

func TestCompositeScore_EmbeddingFailureDegradesToZero(t *testing.T) {
	client := &stubClient{
		embedErr:     errors.New("embedding provider down"),
		textResponse: strings.Repeat("distilled role core line. ", 4),
		jsonByPrompt: respond("80", `{"skills": ["go"]}`),
	}
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), DefaultWeights())

	score := scorer.CompositeScore(context.Background(), "go engineer resume", "go engineer role")

	assert.Equal(t, 0.0, score.EmbedSim)
	// Other sub-scores still contribute.
	assert.Equal(t, 80.0, score.LLMScore)
	assert.Greater(t, score.Composite, 0.0)
}

func TestCompositeScore_DistillationDisabledUsesRawCoverage(t *testing.T) {
	client := &stubClient{
		embeddings:   map[string][]float32{},
		jsonByPrompt: respond("50", `{}`),
	}
	weights := DefaultWeights()
	weights.UseDistilledJD = false
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), weights)

	score := scorer.CompositeScore(context.Background(), "kubernetes golang services", "kubernetes golang services")

	assert.False(t, score.DistilledUsed)
	assert.False(t, score.LLMTermsUsed)
	// Identical texts cover every JD keyword.
	assert.InDelta(t, 1.0, score.KeywordCov, 1e-9)
	// Identical embedding stub vectors give cosine 1.0 for both blend terms.
	assert.InDelta(t, 1.0, score.EmbedSim, 1e-9)
}

func TestCompositeScore_DistilledBlend(t *testing.T) {
	resume := "resume"
	rawJD := "raw jd text"
	distilled := strings.Repeat("distilled role core content. ", 3)
	client := &stubClient{
		textResponse: distilled,
		embeddings: map[string][]float32{
			resume:    {1, 0},
			distilled: {1, 0}, // cosine 1.0 against resume
			rawJD:     {0, 1}, // cosine 0.0 against resume
		},
		jsonByPrompt: respond("0", `{}`),
	}
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), DefaultWeights())

	score := scorer.CompositeScore(context.Background(), resume, rawJD)

	assert.True(t, score.DistilledUsed)
	// semantic = 0.7*1.0 + 0.3*0.0
	assert.InDelta(t, 0.7, score.EmbedSim, 1e-9)
}

func TestCompositeScore_WeightedCoverageWhenTermsExtracted(t *testing.T) {
	distilled := strings.Repeat("role core about data pipelines. ", 3)
	client := &stubClient{
		textResponse: distilled,
		jsonByPrompt: respond("0", `{"tools": ["Airflow"], "skills": ["python"]}`),
	}
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), DefaultWeights())

	score := scorer.CompositeScore(context.Background(), "Built DAGs in Airflow", "jd")

	assert.True(t, score.LLMTermsUsed)
	// Airflow (weight 3) hit, python (weight 2) miss.
	assert.InDelta(t, 0.6, score.KeywordCov, 1e-9)
}

func TestCompositeScore_LLMTermsDisabledUsesFrequencyFallback(t *testing.T) {
	distilled := strings.Repeat("kubernetes kubernetes golang services platform. ", 3)
	client := &stubClient{
		textResponse: distilled,
		jsonByPrompt: respond("0", `{"tools": ["Airflow"]}`),
	}
	weights := DefaultWeights()
	weights.UseLLMTerms = false
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), weights)

	score := scorer.CompositeScore(context.Background(), "golang kubernetes services platform work", "jd")

	assert.True(t, score.DistilledUsed)
	assert.False(t, score.LLMTermsUsed)
	// Every frequent distilled-JD token appears in the resume.
	assert.InDelta(t, 1.0, score.KeywordCov, 1e-9)
	// Only the judge prompt hits the provider; no term extraction call.
	assert.Equal(t, 1, client.jsonCalls)
}

func TestCompositeScore_UnparseableJudgeDegradesToZero(t *testing.T) {
	client := &stubClient{
		textResponse: strings.Repeat("distilled role core content. ", 3),
		jsonByPrompt: respond("no score here", `{}`),
	}
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), DefaultWeights())

	score := scorer.CompositeScore(context.Background(), "resume", "jd")

	assert.Equal(t, 0.0, score.LLMScore)
}

func TestCompositeScore_WarmCacheIdempotent(t *testing.T) {
	client := &stubClient{
		textResponse: strings.Repeat("distilled role core content. ", 3),
		jsonByPrompt: respond("64", `{"skills": ["go", "grpc"]}`),
	}
	distiller := jd.NewDistiller(client, nil, nil)
	scorer := NewScorer(client, distiller, DefaultWeights())

	first := scorer.CompositeScore(context.Background(), "go grpc services", "jd text")
	second := scorer.CompositeScore(context.Background(), "go grpc services", "jd text")

	assert.Equal(t, first, second)
}

func TestScoreDelta(t *testing.T) {
	client := &stubClient{
		textResponse: strings.Repeat("distilled role core content. ", 3),
		jsonByPrompt: respond("50", `{"skills": ["terraform"]}`),
	}
	scorer := NewScorer(client, jd.NewDistiller(client, nil, nil), DefaultWeights())

	before, after, delta := scorer.ScoreDelta(context.Background(),
		"managed infrastructure", "managed infrastructure with terraform", "jd")

	require.NotZero(t, after.KeywordCov)
	assert.InDelta(t, after.KeywordCov-before.KeywordCov, delta.KeywordCov, 1e-9)
	assert.InDelta(t, after.Composite-before.Composite, delta.Composite, 1e-9)
}
