package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func TestValidateFactSet_Valid(t *testing.T) {
	facts := types.FactSet{
		Situation: "legacy deploys took hours",
		Results:   []string{"cut deploy time by 40%"},
		Tools:     []string{"Jenkins"},
	}
	encoded, err := json.Marshal(facts)
	require.NoError(t, err)

	assert.NoError(t, ValidateFactSet(string(encoded)))
}

func TestValidateFactSet_RejectsUnknownFields(t *testing.T) {
	err := ValidateFactSet(`{"situation": "x", "confidence": 0.9}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotEmpty(t, validationErr.Errors)
}

func TestValidateFactSet_RejectsWrongTypes(t *testing.T) {
	err := ValidateFactSet(`{"actions": "not an array"}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateScore_Valid(t *testing.T) {
	score := types.Score{EmbedSim: 0.82, KeywordCov: 0.5, LLMScore: 75, Composite: 72.8}
	encoded, err := json.Marshal(score)
	require.NoError(t, err)

	assert.NoError(t, ValidateScore(string(encoded)))
}

func TestValidateScore_RejectsOutOfRange(t *testing.T) {
	err := ValidateScore(`{"embed_sim": 0.5, "keyword_cov": 0.5, "llm_score": 250, "composite": 50}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "llm_score")
}

func TestValidateScore_RejectsMissingRequired(t *testing.T) {
	err := ValidateScore(`{"embed_sim": 0.5}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateMatchResult_Valid(t *testing.T) {
	result := types.MatchResult{Tier: types.MatchHighConfidence, Similarity: 0.92, MatchedText: "stored bullet"}
	encoded, err := json.Marshal(result)
	require.NoError(t, err)

	assert.NoError(t, ValidateMatchResult(string(encoded)))
}

func TestValidateMatchResult_RejectsUnknownTier(t *testing.T) {
	err := ValidateMatchResult(`{"match_type": "almost", "similarity_score": 0.5}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateJSONString_UnknownSchema(t *testing.T) {
	err := ValidateJSONString("nonexistent", `{}`)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateFactSet("{not json")
	assert.Error(t, err)
}
