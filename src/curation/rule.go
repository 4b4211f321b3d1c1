// Package curation decides which evidence quotes returned by the analysis
// service are fit to show a reviewer, and which of those read as legal
// citations worth emphasising.
//
// Quotes are judged by an ordered registry of independent rules. The first
// rule that disqualifies a quote wins; a quote no rule objects to is kept
// verbatim.
package curation

// Rule inspects a single trimmed quote. Implementations must be pure: the
// same input always yields the same verdict and nothing is mutated.
type Rule interface {
	// Name returns a short identifier for logging.
	Name() string

	// Rationale explains, for maintainers, what the rule keeps off screen.
	Rationale() string

	// Check inspects the trimmed quote and returns a Result.
	Check(quote string) Result
}
