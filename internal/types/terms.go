package types

// TermSet holds role-critical keywords extracted from a job description,
// grouped by category. All slices are sorted and deduplicated at extraction
// time so repeated extractions of the same JD compare equal.
type TermSet struct {
	Skills           []string `json:"skills"`
	Tools            []string `json:"tools"`
	Domains          []string `json:"domains"`
	Responsibilities []string `json:"responsibilities"`
	Seniority        []string `json:"seniority"`
	Certifications   []string `json:"certifications"`
}

// Categories returns the term groups keyed by category name, in the shape
// the weighted coverage computation consumes.
func (t *TermSet) Categories() map[string][]string {
	return map[string][]string{
		"skills":           t.Skills,
		"tools":            t.Tools,
		"domains":          t.Domains,
		"responsibilities": t.Responsibilities,
		"seniority":        t.Seniority,
		"certifications":   t.Certifications,
	}
}

// IsEmpty reports whether no terms were extracted in any category.
func (t *TermSet) IsEmpty() bool {
	return len(t.Skills) == 0 &&
		len(t.Tools) == 0 &&
		len(t.Domains) == 0 &&
		len(t.Responsibilities) == 0 &&
		len(t.Seniority) == 0 &&
		len(t.Certifications) == 0
}

// Flatten returns all terms in priority order (highest-weight categories
// first), used when building generation prompts.
func (t *TermSet) Flatten() []string {
	out := make([]string, 0,
		len(t.Tools)+len(t.Responsibilities)+len(t.Domains)+
			len(t.Certifications)+len(t.Seniority)+len(t.Skills))
	out = append(out, t.Tools...)
	out = append(out, t.Responsibilities...)
	out = append(out, t.Domains...)
	out = append(out, t.Certifications...)
	out = append(out, t.Seniority...)
	out = append(out, t.Skills...)
	return out
}
