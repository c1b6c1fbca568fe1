package generation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// ExtractFacts distills a structured FactSet from a Q&A exchange about one
// bullet. Only what the candidate actually stated may be recorded; the
// result starts life unconfirmed and must not feed generation until the
// user confirms it.
func (g *Generator) ExtractFacts(ctx context.Context, bulletText string, pairs []types.QAPair) (*types.FactSet, error) {
	if g.client == nil {
		return nil, &ProviderUnavailableError{Operation: "fact extraction"}
	}

	var conversation strings.Builder
	for _, p := range pairs {
		conversation.WriteString("Q: ")
		conversation.WriteString(p.Question)
		conversation.WriteString("\nA: ")
		conversation.WriteString(p.Answer)
		conversation.WriteString("\n")
	}

	template := prompts.MustGet("generation.json", "extract-facts")
	prompt := prompts.Format(template, map[string]string{
		"BulletText": bulletText,
		"QAPairs":    conversation.String(),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{Message: "fact extraction failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.ValidateFactSet(cleaned); err != nil {
		return nil, &GenerationError{Message: "fact extraction returned invalid JSON", Cause: err}
	}

	var facts types.FactSet
	if err := json.Unmarshal([]byte(cleaned), &facts); err != nil {
		return nil, &GenerationError{Message: "fact extraction returned unparseable JSON", Cause: err}
	}

	facts.Situation = strings.TrimSpace(facts.Situation)
	facts.Timeline = strings.TrimSpace(facts.Timeline)
	facts.Actions = compactStrings(facts.Actions)
	facts.Results = compactStrings(facts.Results)
	facts.Skills = compactStrings(facts.Skills)
	facts.Tools = compactStrings(facts.Tools)
	return &facts, nil
}

func compactStrings(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
