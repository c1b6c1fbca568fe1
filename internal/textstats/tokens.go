// Package textstats provides deterministic, LLM-free text statistics:
// tokenization, keyword sets, and raw/weighted keyword coverage.
package textstats

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// tokenRE matches alphanumeric runs plus the symbols that occur in
// technology names (c++, c#, node.js, ci-cd).
var tokenRE = regexp.MustCompile(`[A-Za-z0-9+#.\-]+`)

// stopwords excluded from token streams.
var stopwords = buildStopwords(`
a an the and or for of to in on at by with from as is are was were be been being
this that these those such into across over under within without not no nor than
your you we they he she it their our us
`)

// CategoryWeights assigns a fixed importance weight to each term category.
// Unknown categories default to weight 1.
var CategoryWeights = map[string]int{
	"tools":            3,
	"skills":           2,
	"responsibilities": 2,
	"domains":          2,
	"certifications":   1,
	"seniority":        1,
}

func buildStopwords(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(raw) {
		set[w] = struct{}{}
	}
	return set
}

// Tokens splits text into lowercase tokens, dropping single-character
// tokens and stopwords. Token order follows the input text.
func Tokens(text string) []string {
	matches := tokenRE.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tok := strings.ToLower(m)
		if len(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// KeywordSet returns the set of tokens suitable for coverage comparison:
// alphabetic-containing tokens of length >= 3. Pure numbers and short codes
// are excluded.
func KeywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(text) {
		if len(tok) >= 3 && containsAlpha(tok) {
			set[tok] = struct{}{}
		}
	}
	return set
}

func containsAlpha(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// KeywordCoverage returns the fraction of the JD's keywords present in the
// resume text. Returns 0.0 when the JD keyword set is empty.
func KeywordCoverage(resumeText, jdText string) float64 {
	jdSet := KeywordSet(jdText)
	if len(jdSet) == 0 {
		return 0.0
	}
	resumeSet := KeywordSet(resumeText)
	hits := 0
	for kw := range jdSet {
		if _, ok := resumeSet[kw]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(jdSet))
}

// WeightedKeywordCoverage returns the ratio of matched term weight to total
// term weight across categorized JD terms. Matching is case-insensitive
// substring containment against the full resume text, so multi-word terms
// ("incident response") count as a whole. Returns 0.0 when total weight is
// zero.
func WeightedKeywordCoverage(resumeText string, jdTerms map[string][]string) float64 {
	resumeLower := strings.ToLower(resumeText)
	totalWeight := 0
	hitWeight := 0

	for category, terms := range jdTerms {
		weight, ok := CategoryWeights[category]
		if !ok {
			weight = 1
		}
		for _, term := range terms {
			normalized := strings.ToLower(strings.TrimSpace(term))
			if normalized == "" {
				continue
			}
			totalWeight += weight
			if strings.Contains(resumeLower, normalized) {
				hitWeight += weight
			}
		}
	}

	if totalWeight == 0 {
		return 0.0
	}
	return float64(hitWeight) / float64(totalWeight)
}

// TopTerms returns the k most frequent keyword tokens in the text, most
// frequent first. Ties break alphabetically so results are deterministic.
// Used as the keyword source when LLM term extraction is disabled.
func TopTerms(text string, k int) []string {
	freq := make(map[string]int)
	for _, tok := range Tokens(text) {
		if len(tok) >= 3 && containsAlpha(tok) {
			freq[tok]++
		}
	}

	terms := make([]string, 0, len(freq))
	for tok := range freq {
		terms = append(terms, tok)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if k > 0 && len(terms) > k {
		terms = terms[:k]
	}
	return terms
}
