package generation

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// factSelection is the expected structure of the selection stage output.
type factSelection struct {
	Selected      []string `json:"selected"`
	Justification string   `json:"justification"`
}

// GenerateBulletScaffolded is the two-stage variant of the fact-based path.
// Stage one asks the model to rank the 2-3 fact items most relevant to the
// JD with a short justification; stage two generates from only that subset.
// The selection stage fails closed: unparseable or invalid selections fall
// back to the entire FactSet, never to none.
//
// Bullets without meaningful facts route to the conservative path, same as
// GenerateBullet.
func (g *Generator) GenerateBulletScaffolded(ctx context.Context, originalText, jdText string, facts *types.FactSet, charLimit int) (string, error) {
	if g.client == nil {
		return "", &ProviderUnavailableError{Operation: "scaffolded bullet generation"}
	}
	if !facts.HasMeaningfulFacts() {
		return g.GenerateBullet(ctx, originalText, jdText, nil, charLimit)
	}

	original := llm.StripBulletPrefix(originalText)
	lines := factLines(facts)
	selected := g.selectFacts(ctx, jdText, lines)

	rewritten, err := g.rewriteWithFacts(ctx, original, jdText, selected)
	if err != nil {
		return "", err
	}

	cap := lengthfit.TieredCap(utf8.RuneCountInString(original), charLimit)
	return g.fitter.FitToCap(ctx, rewritten, cap), nil
}

// selectFacts runs the selection stage and returns the fact lines to
// generate from. Every returned line is guaranteed to come verbatim from
// the input; any failure returns the full input.
func (g *Generator) selectFacts(ctx context.Context, jdText string, lines []string) []string {
	jobCore, _ := g.distiller.Distill(ctx, jdText)

	template := prompts.MustGet("generation.json", "select-facts")
	prompt := prompts.Format(template, map[string]string{
		"JobCore": jobCore,
		"Facts":   "- " + strings.Join(lines, "\n- "),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		log.Printf("generation: fact selection failed, using full fact set: %v", err)
		return lines
	}

	var sel factSelection
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &sel); err != nil {
		log.Printf("generation: fact selection returned unparseable JSON, using full fact set: %v", err)
		return lines
	}

	known := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		known[l] = struct{}{}
	}
	var valid []string
	for _, s := range sel.Selected {
		s = strings.TrimSpace(s)
		if _, ok := known[s]; ok {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		log.Printf("generation: fact selection named no known items, using full fact set")
		return lines
	}

	if sel.Justification != "" {
		log.Printf("generation: selected %d/%d facts: %s", len(valid), len(lines), sel.Justification)
	}
	return valid
}
