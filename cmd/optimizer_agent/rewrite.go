package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/generation"
	"github.com/jonathan/resume-optimizer/internal/jd"
	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var (
	rewriteBullet      string
	rewriteBulletsFile string
	rewriteJobFile     string
	rewriteFactsFile   string
	rewriteCharLimit   int
	rewriteScaffold    bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Rewrite a resume bullet for a job description",
	Long:  "Rewrites a bullet toward a job description. Without verified facts the rewrite is strictly conservative (no new numbers, tools, or scope). With --facts, the fact-based path may add the supplied verified details. With --bullets, rewrites a whole file of bullets in one batch call.",
	RunE:  runRewrite,
}

func init() {
	rewriteCmd.Flags().StringVar(&rewriteBullet, "bullet", "", "Bullet text to rewrite")
	rewriteCmd.Flags().StringVar(&rewriteBulletsFile, "bullets", "", "Path to a file with one bullet per line (batch mode)")
	rewriteCmd.Flags().StringVar(&rewriteJobFile, "job", "", "Path to job description text file (required)")
	rewriteCmd.Flags().StringVar(&rewriteFactsFile, "facts", "", "Path to a verified-facts JSON file")
	rewriteCmd.Flags().IntVar(&rewriteCharLimit, "char-limit", 0, "Exact character cap (0 uses the tiered cap)")
	rewriteCmd.Flags().BoolVar(&rewriteScaffold, "scaffold", false, "Select the most relevant facts before rewriting")
	_ = rewriteCmd.MarkFlagRequired("job")
	rewriteCmd.MarkFlagsMutuallyExclusive("bullet", "bullets")
	rewriteCmd.MarkFlagsOneRequired("bullet", "bullets")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := mergedConfig()
	if err != nil {
		return err
	}

	jobText, err := os.ReadFile(rewriteJobFile)
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

	distiller := jd.NewDistiller(client, nil, nil)
	fitter := lengthfit.NewFitter(client, cfg.RepromptTries)
	generator := generation.NewGenerator(client, distiller, fitter)

	charLimit := rewriteCharLimit
	if charLimit == 0 {
		charLimit = cfg.CharLimit
	}

	if rewriteBulletsFile != "" {
		return runRewriteBatch(cmd, generator, string(jobText), charLimit)
	}

	var facts *types.FactSet
	if rewriteFactsFile != "" {
		facts, err = loadFactSet(rewriteFactsFile)
		if err != nil {
			return err
		}
	}

	var rewritten string
	if rewriteScaffold {
		rewritten, err = generator.GenerateBulletScaffolded(ctx, rewriteBullet, string(jobText), facts, charLimit)
	} else {
		rewritten, err = generator.GenerateBullet(ctx, rewriteBullet, string(jobText), facts, charLimit)
	}
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintFactSet(facts)
		printer.PrintRewrite(rewriteBullet, rewritten)
	}
	return printJSON(map[string]string{
		"original":  rewriteBullet,
		"rewritten": rewritten,
	})
}

func runRewriteBatch(cmd *cobra.Command, generator *generation.Generator, jobText string, charLimit int) error {
	file, err := os.Open(rewriteBulletsFile)
	if err != nil {
		return fmt.Errorf("failed to open bullets file: %w", err)
	}
	defer file.Close()

	var bullets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read bullets file: %w", err)
	}
	if len(bullets) == 0 {
		return fmt.Errorf("bullets file %s contains no bullets", rewriteBulletsFile)
	}

	rewritten, err := generator.RewriteBatch(cmd.Context(), bullets, jobText, charLimit)
	if err != nil {
		return err
	}

	type pair struct {
		Original  string `json:"original"`
		Rewritten string `json:"rewritten"`
	}
	pairs := make([]pair, len(bullets))
	for i := range bullets {
		pairs[i] = pair{Original: bullets[i], Rewritten: rewritten[i]}
	}
	return printJSON(map[string]any{"bullets": pairs})
}
