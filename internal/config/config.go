// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-optimizer/internal/lengthfit"
	"github.com/jonathan/resume-optimizer/internal/scoring"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags.
type Config struct {
	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	Port        int    `json:"port,omitempty"`         // HTTP server port

	// Scoring
	UseDistilledJD *bool   `json:"use_distilled_jd,omitempty"` // Distill the JD before embedding
	UseLLMTerms    *bool   `json:"use_llm_terms,omitempty"`    // Extract categorized terms via LLM
	WeightDistill  float64 `json:"weight_distill,omitempty"`   // Blend weight of the distilled-JD cosine
	WeightEmbed    float64 `json:"weight_embed,omitempty"`     // Composite weight of semantic similarity
	WeightKeyword  float64 `json:"weight_keyword,omitempty"`   // Composite weight of keyword coverage
	WeightLLM      float64 `json:"weight_llm,omitempty"`       // Composite weight of the LLM fit score

	// Generation
	RepromptTries int `json:"reprompt_tries,omitempty"` // Length-fitting retry bound
	CharLimit     int `json:"char_limit,omitempty"`     // Override for the tiered character cap
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	w := scoring.DefaultWeights()
	enabled := true
	return Config{
		Port:           8080,
		UseDistilledJD: &enabled,
		UseLLMTerms:    &enabled,
		WeightDistill:  w.WDistilled,
		WeightEmbed:    w.WEmb,
		WeightKeyword:  w.WKey,
		WeightLLM:      w.WLLM,
		RepromptTries:  lengthfit.DefaultMaxReprompts,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in [0, 65535]")
	}
	if c.RepromptTries < 0 {
		return fmt.Errorf("config error: 'reprompt_tries' must be non-negative")
	}
	if c.CharLimit < 0 {
		return fmt.Errorf("config error: 'char_limit' must be non-negative")
	}
	for name, w := range map[string]float64{
		"weight_distill": c.WeightDistill,
		"weight_embed":   c.WeightEmbed,
		"weight_keyword": c.WeightKeyword,
		"weight_llm":     c.WeightLLM,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("config error: '%s' must be in [0, 1]", name)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. This is used to apply config file values as defaults for
// CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.UseDistilledJD == nil {
		result.UseDistilledJD = defaults.UseDistilledJD
	}
	if result.UseLLMTerms == nil {
		result.UseLLMTerms = defaults.UseLLMTerms
	}
	if result.WeightDistill == 0 {
		result.WeightDistill = defaults.WeightDistill
	}
	if result.WeightEmbed == 0 {
		result.WeightEmbed = defaults.WeightEmbed
	}
	if result.WeightKeyword == 0 {
		result.WeightKeyword = defaults.WeightKeyword
	}
	if result.WeightLLM == 0 {
		result.WeightLLM = defaults.WeightLLM
	}
	if result.RepromptTries == 0 {
		result.RepromptTries = defaults.RepromptTries
	}
	if result.CharLimit == 0 {
		result.CharLimit = defaults.CharLimit
	}

	return result
}

// ScoringWeights converts the config into the scorer's weight set.
func (c *Config) ScoringWeights() scoring.Weights {
	use := true
	if c.UseDistilledJD != nil {
		use = *c.UseDistilledJD
	}
	llmTerms := true
	if c.UseLLMTerms != nil {
		llmTerms = *c.UseLLMTerms
	}
	return scoring.Weights{
		UseDistilledJD: use,
		UseLLMTerms:    llmTerms,
		WDistilled:     c.WeightDistill,
		WEmb:           c.WeightEmbed,
		WKey:           c.WeightKeyword,
		WLLM:           c.WeightLLM,
	}
}
