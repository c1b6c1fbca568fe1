package generation

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
)

// batchFitWorkers bounds concurrent length-fitting calls within one batch.
const batchFitWorkers = 4

// RewriteBatch rewrites every bullet against the JD in a single strict-JSON
// call, then length-fits each result concurrently. The model must return
// exactly len(bullets) strings; a count mismatch is repaired locally by
// trimming extras and padding missing slots with the original bullets. A
// malformed JSON response gets one repair reprompt before the call fails.
//
// Batch rewriting is conservative-path only: stored facts are per-bullet
// and are applied through GenerateBullet, not here.
func (g *Generator) RewriteBatch(ctx context.Context, bullets []string, jdText string, charLimit int) ([]string, error) {
	if g.client == nil {
		return nil, &ProviderUnavailableError{Operation: "batch rewrite"}
	}
	if len(bullets) == 0 {
		return []string{}, nil
	}

	jobCore, _ := g.distiller.Distill(ctx, jdText)
	terms := g.distiller.ExtractTerms(ctx, jobCore)

	encoded, err := json.Marshal(bullets)
	if err != nil {
		return nil, &GenerationError{Message: "encoding bullets for batch rewrite", Cause: err}
	}

	count := strconv.Itoa(len(bullets))
	template := prompts.MustGet("generation.json", "rewrite-batch")
	prompt := prompts.Format(template, map[string]string{
		"Count":   count,
		"JobCore": jobCore,
		"Terms":   strings.Join(terms.Flatten(), ", "),
		"Bullets": string(encoded),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{Message: "batch rewrite failed", Cause: err}
	}

	rewritten, parseErr := parseBatch(raw)
	if parseErr != nil {
		rewritten, err = g.repairBatch(ctx, prompt, raw, count)
		if err != nil {
			return nil, err
		}
	}

	rewritten = alignCount(rewritten, bullets)

	results := make([]string, len(bullets))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(batchFitWorkers)
	for i := range bullets {
		grp.Go(func() error {
			text := llm.StripBulletPrefix(rewritten[i])
			if text == "" {
				text = llm.StripBulletPrefix(bullets[i])
			}
			cap := lengthfit.TieredCap(utf8.RuneCountInString(bullets[i]), charLimit)
			results[i] = g.fitter.FitToCap(gctx, text, cap)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = grp.Wait()

	return results, nil
}

// repairBatch reprompts once with the malformed output attached. A second
// parse failure fails the whole call.
func (g *Generator) repairBatch(ctx context.Context, originalPrompt, badOutput, count string) ([]string, error) {
	repair := prompts.Format(prompts.MustGet("generation.json", "rewrite-batch-repair"), map[string]string{
		"Count": count,
	})
	prompt := originalPrompt + "\n\nPREVIOUS OUTPUT:\n" + badOutput + "\n\n" + repair

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{Message: "batch rewrite repair failed", Cause: err}
	}

	rewritten, parseErr := parseBatch(raw)
	if parseErr != nil {
		return nil, &GenerationError{Message: "batch rewrite returned unparseable JSON twice", Cause: parseErr}
	}
	return rewritten, nil
}

func parseBatch(raw string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// alignCount forces the model output to the input length: extras are
// dropped, missing slots keep the original bullet.
func alignCount(rewritten, originals []string) []string {
	if len(rewritten) == len(originals) {
		return rewritten
	}
	log.Printf("generation: batch rewrite returned %d bullets for %d inputs, aligning", len(rewritten), len(originals))
	aligned := make([]string, len(originals))
	for i := range originals {
		if i < len(rewritten) {
			aligned[i] = rewritten[i]
		} else {
			aligned[i] = originals[i]
		}
	}
	return aligned
}
