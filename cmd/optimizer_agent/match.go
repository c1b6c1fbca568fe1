package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/matching"
	"github.com/jonathan/resume-optimizer/internal/observability"
)

var (
	matchUserID string
	matchBullet string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a bullet against a user's stored bullets",
	Long:  "Finds the most similar stored bullet for the given user and classifies the match tier (exact, high_confidence, medium_confidence, no_match). Requires a database.",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchUserID, "user", "", "User ID whose bullets to search (required)")
	matchCmd.Flags().StringVar(&matchBullet, "bullet", "", "Bullet text to match (required)")
	_ = matchCmd.MarkFlagRequired("user")
	_ = matchCmd.MarkFlagRequired("bullet")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := mergedConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("match requires a database: set DATABASE_URL or the database_url config field")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := buildClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	if client != nil {
		defer client.Close()
	}

	matcher := matching.NewMatcher(database, client)
	result, err := matcher.MatchBullet(ctx, matchUserID, matchBullet, nil)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintMatch(result)
	}
	return printJSON(result)
}
