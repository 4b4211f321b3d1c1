package curation

import (
	"strings"
	"unicode"
)

// Pipeline evaluates an ordered sequence of Rules against each quote.
// The first VerdictDrop short-circuits; later rules are not consulted.
type Pipeline struct {
	rules []Rule
}

// NewPipeline creates a pipeline from the given rules. Evaluation order
// matches the slice order.
func NewPipeline(rules ...Rule) *Pipeline {
	return &Pipeline{rules: rules}
}

// Rules returns a copy of the registered rules in evaluation order.
func (p *Pipeline) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Evaluate trims the quote and runs it through every rule until one drops it.
func (p *Pipeline) Evaluate(quote string) Decision {
	trimmed := trimQuote(quote)
	d := Decision{
		Quote:   quote,
		Verdict: VerdictKeep,
		Results: make([]Result, 0, len(p.rules)),
	}

	for _, r := range p.rules {
		res := r.Check(trimmed)
		d.Results = append(d.Results, res)

		if res.Verdict == VerdictDrop {
			d.Verdict = VerdictDrop
			d.DroppedBy = res.Rule
			d.Reason = res.Reason
			return d
		}
	}

	return d
}

// Sanitize returns the quotes that pass every rule, in their original
// relative order and byte-for-byte as supplied. It never deduplicates.
func (p *Pipeline) Sanitize(quotes []string) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if p.Evaluate(q).Kept() {
			out = append(out, q)
		}
	}
	return out
}

// Decisions evaluates every quote and returns one Decision per input.
func (p *Pipeline) Decisions(quotes []string) []Decision {
	out := make([]Decision, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, p.Evaluate(q))
	}
	return out
}

// trimQuote strips leading and trailing Unicode whitespace and byte order
// marks.
func trimQuote(q string) string {
	return strings.TrimFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}
