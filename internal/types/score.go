package types

// Score is the output of the composite scorer. EmbedSim and KeywordCov are
// ratios in [0,1] rounded to 4 decimals; LLMScore and Composite are on a
// 0-100 scale rounded to 1 decimal. Scores are recomputed fresh per
// (resume, JD) pair and never cached.
type Score struct {
	EmbedSim      float64 `json:"embed_sim"`
	KeywordCov    float64 `json:"keyword_cov"`
	LLMScore      float64 `json:"llm_score"`
	Composite     float64 `json:"composite"`
	DistilledUsed bool    `json:"distilled_used"`
	LLMTermsUsed  bool    `json:"llm_terms_used"`
}

// Delta is the pointwise difference between a before-score and an
// after-score. It is purely derived and never stored independently.
type Delta struct {
	EmbedSim   float64 `json:"embed_sim"`
	KeywordCov float64 `json:"keyword_cov"`
	LLMScore   float64 `json:"llm_score"`
	Composite  float64 `json:"composite"`
}

// Diff computes the delta from before to after.
func Diff(before, after Score) Delta {
	return Delta{
		EmbedSim:   after.EmbedSim - before.EmbedSim,
		KeywordCov: after.KeywordCov - before.KeywordCov,
		LLMScore:   after.LLMScore - before.LLMScore,
		Composite:  after.Composite - before.Composite,
	}
}
