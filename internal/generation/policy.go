// Package generation rewrites resume bullets under a hard factual-accuracy
// contract. Every rewrite routes through exactly one of two paths: a
// conservative path that may only rework what the original bullet already
// says, and a fact-based path whose every claim must trace to a verified
// FactSet.
package generation

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// suspiciousLengthRatio flags conservative rewrites that grew well beyond
// the original. A soft signal for observability, never a rejection, since
// phrasing can legitimately expand length.
const suspiciousLengthRatio = 1.5

// Generator produces JD-aligned bullet rewrites. The distiller supplies the
// role core and terms for prompt context; the fitter enforces the character
// budget on every result.
type Generator struct {
	client    llm.Client
	distiller *jd.Distiller
	fitter    *lengthfit.Fitter
}

// NewGenerator creates a Generator. Nil distiller and fitter get defaults
// backed by the same client.
func NewGenerator(client llm.Client, distiller *jd.Distiller, fitter *lengthfit.Fitter) *Generator {
	if distiller == nil {
		distiller = jd.NewDistiller(client, nil, nil)
	}
	if fitter == nil {
		fitter = lengthfit.NewFitter(client, 0)
	}
	return &Generator{client: client, distiller: distiller, fitter: fitter}
}

// GenerateBullet rewrites originalText against jdText and fits the result
// into the tiered character budget (charLimit overrides the tier when
// positive).
//
// The facts argument is the sole branch condition: a set with meaningful
// content routes to the fact-based path, anything else to the conservative
// path. A missing provider is a fatal precondition for both paths. A
// transient failure on the conservative path falls back to the unmodified
// original; on the fact-based path it surfaces as a GenerationError.
func (g *Generator) GenerateBullet(ctx context.Context, originalText, jdText string, facts *types.FactSet, charLimit int) (string, error) {
	if g.client == nil {
		return "", &ProviderUnavailableError{Operation: "bullet generation"}
	}

	original := llm.StripBulletPrefix(originalText)

	var draft string
	if facts.HasMeaningfulFacts() {
		rewritten, err := g.rewriteWithFacts(ctx, original, jdText, factLines(facts))
		if err != nil {
			return "", err
		}
		draft = rewritten
	} else {
		draft = g.rewriteConservative(ctx, original, jdText)
	}

	cap := lengthfit.TieredCap(utf8.RuneCountInString(original), charLimit)
	return g.fitter.FitToCap(ctx, draft, cap), nil
}

// rewriteConservative reworks the bullet using only what it already says.
// Any failure returns the original text; user content is never discarded.
func (g *Generator) rewriteConservative(ctx context.Context, original, jdText string) string {
	jobCore, _ := g.distiller.Distill(ctx, jdText)
	terms := g.distiller.ExtractTerms(ctx, jobCore)

	template := prompts.MustGet("generation.json", "rewrite-conservative")
	prompt := prompts.Format(template, map[string]string{
		"JobCore":    jobCore,
		"Terms":      strings.Join(terms.Flatten(), ", "),
		"BulletText": original,
	})

	out, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		log.Printf("generation: conservative rewrite failed, keeping original: %v", err)
		return original
	}

	result := llm.StripBulletPrefix(out)
	if result == "" {
		return original
	}

	if float64(utf8.RuneCountInString(result)) > suspiciousLengthRatio*float64(utf8.RuneCountInString(original)) {
		log.Printf("generation: rewrite grew past %.1fx original length, elevated hallucination risk: %q", suspiciousLengthRatio, result)
	}
	return result
}

// rewriteWithFacts generates from the given fact lines. Every claim in the
// output must trace to a fact line or the original bullet; the prompt
// enforces this and failures surface rather than degrade.
func (g *Generator) rewriteWithFacts(ctx context.Context, original, jdText string, facts []string) (string, error) {
	jobCore, _ := g.distiller.Distill(ctx, jdText)

	template := prompts.MustGet("generation.json", "rewrite-with-facts")
	prompt := prompts.Format(template, map[string]string{
		"JobCore":    jobCore,
		"BulletText": original,
		"Facts":      "- " + strings.Join(facts, "\n- "),
	})

	out, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", &GenerationError{Message: "fact-based rewrite failed", Cause: err}
	}

	result := llm.StripBulletPrefix(out)
	if result == "" {
		return "", &GenerationError{Message: "fact-based rewrite returned empty text"}
	}
	return result, nil
}

// factLines flattens a FactSet into labeled lines for prompt context and
// for the selection stage of the scaffolded strategy.
func factLines(f *types.FactSet) []string {
	var lines []string
	if f.Situation != "" {
		lines = append(lines, "situation: "+f.Situation)
	}
	for _, a := range f.Actions {
		lines = append(lines, "action: "+a)
	}
	for _, r := range f.Results {
		lines = append(lines, "result: "+r)
	}
	for _, s := range f.Skills {
		lines = append(lines, "skill: "+s)
	}
	for _, t := range f.Tools {
		lines = append(lines, "tool: "+t)
	}
	if f.Timeline != "" {
		lines = append(lines, "timeline: "+f.Timeline)
	}
	return lines
}
