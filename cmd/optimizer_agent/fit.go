package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/lengthfit"
)

var (
	fitText string
	fitCap  int
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit text under a character cap",
	Long:  "Shortens text to fit a character cap, asking the LLM for progressively shorter rewrites before falling back to a hard truncation. Without an API key the text is truncated directly.",
	RunE:  runFit,
}

func init() {
	fitCmd.Flags().StringVar(&fitText, "text", "", "Text to fit (required)")
	fitCmd.Flags().IntVar(&fitCap, "cap", 0, "Character cap (0 uses the tiered cap for the text length)")
	_ = fitCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := mergedConfig()
	if err != nil {
		return err
	}

	client, err := buildClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	if client != nil {
		defer client.Close()
	}

	targetCap := fitCap
	if targetCap <= 0 {
		targetCap = lengthfit.TieredCap(utf8.RuneCountInString(fitText), 0)
	}

	fitter := lengthfit.NewFitter(client, cfg.RepromptTries)
	fitted := fitter.FitToCap(ctx, fitText, targetCap)

	return printJSON(map[string]any{
		"text":   fitted,
		"length": utf8.RuneCountInString(fitted),
		"cap":    targetCap,
	})
}
