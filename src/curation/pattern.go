package curation

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternSpec declares one disqualifying regex. Patterns are always matched
// case-insensitively.
type PatternSpec struct {
	Name      string
	Pattern   string
	Rationale string
}

// builtInDisqualifyingPatterns catch quotes that leak internal schema
// artifacts instead of text from the analysed document.
var builtInDisqualifyingPatterns = []PatternSpec{
	{
		Name:      "empty-field-phrase",
		Pattern:   `필드가[\s\p{Z}]*(비어|없|누락|null)`,
		Rationale: "generator narrating that a field is empty, missing or null",
	},
	{
		Name:      "null-token",
		Pattern:   `\bnull\b`,
		Rationale: "null markers are serialization residue",
	},
	{
		Name:      "missing-token",
		Pattern:   `\bmissing\b`,
		Rationale: "describes absent data rather than quoting the document",
	},
	{
		Name:      "field-token",
		Pattern:   `\bfield\b`,
		Rationale: "talks about schema fields rather than quoting the document",
	},
	{
		Name:      "schema-key-retention-period",
		Pattern:   `retention_period`,
		Rationale: "known internal schema key",
	},
	{
		Name:      "schema-key-third-party",
		Pattern:   `third_party`,
		Rationale: "known internal schema key",
	},
	{
		Name:      "schema-key-data-subject",
		Pattern:   `data_subject`,
		Rationale: "known internal schema key",
	},
	{
		Name:      "schema-key-video",
		Pattern:   `video_`,
		Rationale: "prefix of the internal video_* schema keys",
	},
	{
		Name:      "snake-case-identifier",
		Pattern:   `\b[a-z]+_[a-z_]+\b`,
		Rationale: "generic snake_case token, catches leaked identifiers not listed above",
	},
}

// BuiltInPatterns returns a copy of the built-in disqualifying patterns.
func BuiltInPatterns() []PatternSpec {
	out := make([]PatternSpec, len(builtInDisqualifyingPatterns))
	copy(out, builtInDisqualifyingPatterns)
	return out
}

// PatternRule drops quotes matching a single regex.
type PatternRule struct {
	name      string
	rationale string
	re        *regexp.Regexp
}

// NewPatternRule compiles ps into a rule. The case-insensitive flag is
// prepended if not already present.
func NewPatternRule(ps PatternSpec) (*PatternRule, error) {
	p := ps.Pattern
	if !strings.HasPrefix(p, "(?i)") {
		p = "(?i)" + p
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", ps.Pattern, err)
	}
	return &PatternRule{name: ps.Name, rationale: ps.Rationale, re: re}, nil
}

func (r *PatternRule) Name() string { return r.name }

func (r *PatternRule) Rationale() string { return r.rationale }

func (r *PatternRule) Check(quote string) Result {
	if r.re.MatchString(quote) {
		return drop(r.name, fmt.Sprintf("matched pattern %q", r.re.String()))
	}
	return keep(r.name)
}

// NewPatternRules builds the disqualifying rule set. If disableBuiltIn is
// false the built-in patterns come first; customPatterns are always
// appended, named custom-<n>.
func NewPatternRules(disableBuiltIn bool, customPatterns []string) ([]Rule, error) {
	var specs []PatternSpec

	if !disableBuiltIn {
		specs = append(specs, builtInDisqualifyingPatterns...)
	}
	for i, p := range customPatterns {
		specs = append(specs, PatternSpec{
			Name:      fmt.Sprintf("custom-%d", i+1),
			Pattern:   p,
			Rationale: "configured by operator",
		})
	}

	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		r, err := NewPatternRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
