// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScore outputs a composite score with its sub-scores and provenance.
func (p *Printer) PrintScore(title string, score types.Score) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Composite:        %.1f / 100\n", score.Composite))
	sb.WriteString(fmt.Sprintf("Semantic sim:     %.4f\n", score.EmbedSim))
	sb.WriteString(fmt.Sprintf("Keyword coverage: %.4f\n", score.KeywordCov))
	sb.WriteString(fmt.Sprintf("LLM fit score:    %.1f / 100\n", score.LLMScore))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Distilled JD used: %v\n", score.DistilledUsed))
	sb.WriteString(fmt.Sprintf("LLM terms used:    %v", score.LLMTermsUsed))

	p.printBox(title, sb.String())
}

// PrintDelta outputs a before/after score pair with pointwise improvement.
func (p *Printer) PrintDelta(before, after types.Score, delta types.Delta) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Composite:  %.1f → %.1f  (%+.1f)\n", before.Composite, after.Composite, delta.Composite))
	sb.WriteString(fmt.Sprintf("Semantic:   %.4f → %.4f  (%+.4f)\n", before.EmbedSim, after.EmbedSim, delta.EmbedSim))
	sb.WriteString(fmt.Sprintf("Keywords:   %.4f → %.4f  (%+.4f)\n", before.KeywordCov, after.KeywordCov, delta.KeywordCov))
	sb.WriteString(fmt.Sprintf("LLM score:  %.1f → %.1f  (%+.1f)", before.LLMScore, after.LLMScore, delta.LLMScore))

	p.printBox("SCORE DELTA", sb.String())
}

// PrintMatch outputs a similarity match classification.
func (p *Printer) PrintMatch(result types.MatchResult) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Tier:       %s\n", result.Tier))
	sb.WriteString(fmt.Sprintf("Similarity: %.4f\n", result.Similarity))
	if result.Matched() {
		sb.WriteString(fmt.Sprintf("Bullet ID:  %s\n", result.BulletID))
		sb.WriteString(fmt.Sprintf("Matched:    %s", result.MatchedText))
	} else {
		sb.WriteString("No stored bullet was close enough to reuse facts.")
	}

	p.printBox("BULLET MATCH", sb.String())
}

// PrintRewrite outputs an original/rewritten bullet pair.
func (p *Printer) PrintRewrite(original, rewritten string) {
	var sb strings.Builder

	sb.WriteString("Original:\n")
	sb.WriteString(fmt.Sprintf("  %s\n", original))
	sb.WriteString(fmt.Sprintf("  (%d chars)\n", len(original)))
	sb.WriteString("\n")
	sb.WriteString("Rewritten:\n")
	sb.WriteString(fmt.Sprintf("  %s\n", rewritten))
	sb.WriteString(fmt.Sprintf("  (%d chars)", len(rewritten)))

	p.printBox("BULLET REWRITE", sb.String())
}

// PrintFactSet outputs the facts that fed a generation call.
func (p *Printer) PrintFactSet(facts *types.FactSet) {
	if facts == nil || !facts.HasMeaningfulFacts() {
		return
	}

	var sb strings.Builder

	if facts.Situation != "" {
		sb.WriteString(fmt.Sprintf("Situation: %s\n", facts.Situation))
	}
	writeList(&sb, "Actions", facts.Actions)
	writeList(&sb, "Results", facts.Results)
	writeList(&sb, "Skills", facts.Skills)
	writeList(&sb, "Tools", facts.Tools)
	if facts.Timeline != "" {
		sb.WriteString(fmt.Sprintf("Timeline: %s\n", facts.Timeline))
	}

	p.printBox("VERIFIED FACTS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
