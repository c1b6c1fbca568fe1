// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			// If first line looks like a language identifier (no spaces, short), skip it
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	return text
}

var firstIntRE = regexp.MustCompile(`(\d{1,3})`)

// ParseFitScore extracts a 0-100 score from a free-form judge response.
// The first integer found wins and is clamped into [0,100]; ok is false
// when no integer is present.
func ParseFitScore(response string) (score float64, ok bool) {
	match := firstIntRE.FindString(strings.TrimSpace(response))
	if match == "" {
		return 0, false
	}

	val, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	if val < 0 {
		val = 0
	}
	if val > 100 {
		val = 100
	}
	return float64(val), true
}

// StripBulletPrefix normalizes generated bullet text: newlines collapse to
// spaces, surrounding whitespace is trimmed, and any leading bullet glyphs
// or dashes are removed.
func StripBulletPrefix(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "-•·–—◦●* ")
	return strings.TrimSpace(text)
}
