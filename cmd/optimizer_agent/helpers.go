package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// mergedConfig resolves configuration in precedence order: config file,
// then environment, then defaults.
func mergedConfig() (config.Config, error) {
	cfg := config.Config{Verbose: verbose}

	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*loaded)
		cfg.Verbose = cfg.Verbose || loaded.Verbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildClient creates the LLM client, or returns nil when no API key is
// configured so callers can degrade where their operation allows it.
func buildClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	return llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
}

// readTextArg reads an argument that is either inline text or, with the
// file flag set, a path to read.
func readTextArg(value string, isFile bool) (string, error) {
	if !isFile {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", value, err)
	}
	return string(data), nil
}

// loadFactSet reads and schema-validates a FactSet JSON file.
func loadFactSet(path string) (*types.FactSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts file: %w", err)
	}
	if err := schemas.ValidateFactSet(string(data)); err != nil {
		return nil, fmt.Errorf("facts file failed validation: %w", err)
	}

	var facts types.FactSet
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal facts JSON: %w", err)
	}
	return &facts, nil
}

// printJSON writes an indented JSON document to stdout.
func printJSON(data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
