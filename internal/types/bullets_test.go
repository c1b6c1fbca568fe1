package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasMeaningfulFacts_Nil(t *testing.T) {
	var facts *FactSet
	assert.False(t, facts.HasMeaningfulFacts())
}

func TestHasMeaningfulFacts_AllEmpty(t *testing.T) {
	facts := &FactSet{}
	assert.False(t, facts.HasMeaningfulFacts())
}

func TestHasMeaningfulFacts_EmptySlices(t *testing.T) {
	facts := &FactSet{
		Actions: []string{},
		Results: []string{},
		Skills:  []string{},
		Tools:   []string{},
	}
	assert.False(t, facts.HasMeaningfulFacts())
}

func TestHasMeaningfulFacts_SingleField(t *testing.T) {
	cases := map[string]*FactSet{
		"situation": {Situation: "Legacy migration under deadline"},
		"actions":   {Actions: []string{"Led migration"}},
		"results":   {Results: []string{"Cut latency 40%"}},
		"skills":    {Skills: []string{"distributed systems"}},
		"tools":     {Tools: []string{"Python"}},
		"timeline":  {Timeline: "Q3 2023"},
	}

	for name, facts := range cases {
		assert.True(t, facts.HasMeaningfulFacts(), "field %s should be meaningful", name)
	}
}

func TestDiff(t *testing.T) {
	before := Score{EmbedSim: 0.5, KeywordCov: 0.2, LLMScore: 60.0, Composite: 48.0}
	after := Score{EmbedSim: 0.7, KeywordCov: 0.4, LLMScore: 75.0, Composite: 62.5}

	delta := Diff(before, after)

	assert.InDelta(t, 0.2, delta.EmbedSim, 1e-9)
	assert.InDelta(t, 0.2, delta.KeywordCov, 1e-9)
	assert.InDelta(t, 15.0, delta.LLMScore, 1e-9)
	assert.InDelta(t, 14.5, delta.Composite, 1e-9)
}

func TestTermSet_Categories(t *testing.T) {
	terms := &TermSet{
		Skills: []string{"go"},
		Tools:  []string{"kubernetes"},
	}

	cats := terms.Categories()

	assert.Equal(t, []string{"go"}, cats["skills"])
	assert.Equal(t, []string{"kubernetes"}, cats["tools"])
	assert.Empty(t, cats["domains"])
	assert.Len(t, cats, 6)
}

func TestTermSet_IsEmpty(t *testing.T) {
	assert.True(t, (&TermSet{}).IsEmpty())
	assert.False(t, (&TermSet{Seniority: []string{"senior"}}).IsEmpty())
}

func TestTermSet_Flatten_PriorityOrder(t *testing.T) {
	terms := &TermSet{
		Skills: []string{"communication"},
		Tools:  []string{"terraform"},
	}

	flat := terms.Flatten()

	// Tools carry the highest category weight and come first.
	assert.Equal(t, []string{"terraform", "communication"}, flat)
}
