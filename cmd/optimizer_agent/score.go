package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/scoring"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var (
	scoreResumeFile    string
	scoreJobFile       string
	scoreRewrittenFile string
	scoreRawJD         bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score resume text against a job description",
	Long:  "Computes the composite fit score (semantic similarity, keyword coverage, LLM judgment) of a resume against a job description. With --rewritten, scores both versions and reports the delta.",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreResumeFile, "resume", "", "Path to resume text file (required)")
	scoreCmd.Flags().StringVar(&scoreJobFile, "job", "", "Path to job description text file (required)")
	scoreCmd.Flags().StringVar(&scoreRewrittenFile, "rewritten", "", "Path to rewritten resume text file (optional, reports delta)")
	scoreCmd.Flags().BoolVar(&scoreRawJD, "raw-jd", false, "Score against the raw job description without distillation")
	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := mergedConfig()
	if err != nil {
		return err
	}

	resumeText, err := os.ReadFile(scoreResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	jobText, err := os.ReadFile(scoreJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job file: %w", err)
	}

	client, err := buildClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	if client != nil {
		defer client.Close()
	}

	weights := cfg.ScoringWeights()
	if scoreRawJD {
		weights.UseDistilledJD = false
	}
	scorer := scoring.NewScorer(client, jd.NewDistiller(client, nil, nil), weights)

	if scoreRewrittenFile == "" {
		score := scorer.CompositeScore(ctx, string(resumeText), string(jobText))
		if cfg.Verbose {
			observability.NewPrinter(os.Stdout).PrintScore("COMPOSITE SCORE", score)
		}
		return printJSON(score)
	}

	rewrittenText, err := os.ReadFile(scoreRewrittenFile)
	if err != nil {
		return fmt.Errorf("failed to read rewritten file: %w", err)
	}

	before, after, delta := scorer.ScoreDelta(ctx, string(resumeText), string(rewrittenText), string(jobText))
	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintDelta(before, after, delta)
	}
	return printJSON(struct {
		Before types.Score `json:"before"`
		After  types.Score `json:"after"`
		Delta  types.Delta `json:"delta"`
	}{before, after, delta})
}
