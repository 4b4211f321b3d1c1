package curation

import (
	"fmt"
	"log/slog"
)

// Options configures a Curator's rule registry.
type Options struct {
	MinQuoteChars       int
	DisableBuiltInRules bool
	CustomRulePatterns  []string
}

// DefaultOptions returns the registry used when nothing is configured.
func DefaultOptions() Options {
	return Options{MinQuoteChars: DefaultMinQuoteChars}
}

// Curator runs the quote sanitizer and the legal citation classifier.
// It holds no mutable state and is safe for concurrent use.
type Curator struct {
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewCurator builds the rule registry: empty, then length, then the
// disqualifying patterns. Drops are logged at Debug; a nil logger discards
// them.
func NewCurator(opts Options, logger *slog.Logger) (*Curator, error) {
	if opts.MinQuoteChars < 0 {
		return nil, fmt.Errorf("min quote chars must not be negative, got %d", opts.MinQuoteChars)
	}

	rules := []Rule{EmptyRule{}, NewLengthRule(opts.MinQuoteChars)}

	patterns, err := NewPatternRules(opts.DisableBuiltInRules, opts.CustomRulePatterns)
	if err != nil {
		return nil, fmt.Errorf("pattern rules: %w", err)
	}
	rules = append(rules, patterns...)

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Curator{
		pipeline: NewPipeline(rules...),
		logger:   logger.With("area", "curation"),
	}, nil
}

var defaultCurator = mustCurator(DefaultOptions())

func mustCurator(opts Options) *Curator {
	c, err := NewCurator(opts, nil)
	if err != nil {
		panic(fmt.Sprintf("building default curator: %v", err))
	}
	return c
}

// Default returns the curator built from DefaultOptions.
func Default() *Curator { return defaultCurator }

// Sanitize filters quotes with the default rule registry.
func Sanitize(quotes []string) []string { return defaultCurator.Sanitize(quotes) }

// Pipeline exposes the underlying rule pipeline.
func (c *Curator) Pipeline() *Pipeline { return c.pipeline }

// Sanitize returns the displayable subset of quotes, order preserved.
func (c *Curator) Sanitize(quotes []string) []string {
	out := make([]string, 0, len(quotes))
	for i, d := range c.pipeline.Decisions(quotes) {
		if !d.Kept() {
			// Never log the quote itself; it may hold personal data.
			c.logger.Debug("dropped evidence quote", "index", i, "rule", d.DroppedBy, "reason", d.Reason)
			continue
		}
		out = append(out, d.Quote)
	}
	return out
}

// Curate sanitizes quotes and flags each survivor as a legal citation or not.
// An empty result means the caller should show an insufficient-evidence notice.
func (c *Curator) Curate(quotes []string) []CuratedQuote {
	kept := c.Sanitize(quotes)
	out := make([]CuratedQuote, 0, len(kept))
	for _, q := range kept {
		out = append(out, CuratedQuote{Text: q, IsLegalCitation: IsLegalCitation(q)})
	}
	return out
}
