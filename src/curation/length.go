package curation

import (
	"fmt"
	"unicode/utf8"
)

// DefaultMinQuoteChars is the shortest trimmed quote, in characters, still
// considered meaningful.
const DefaultMinQuoteChars = 12

// EmptyRule drops quotes that are empty after trimming.
type EmptyRule struct{}

func (EmptyRule) Name() string { return "empty" }

func (EmptyRule) Rationale() string {
	return "blank or absent quotes carry no evidence"
}

func (e EmptyRule) Check(quote string) Result {
	if quote == "" {
		return drop(e.Name(), "quote is empty")
	}
	return keep(e.Name())
}

// LengthRule drops quotes shorter than MinChars characters.
type LengthRule struct {
	MinChars int
}

// NewLengthRule creates a LengthRule with the given character threshold.
func NewLengthRule(minChars int) *LengthRule {
	return &LengthRule{MinChars: minChars}
}

func (r *LengthRule) Name() string { return "length" }

func (r *LengthRule) Rationale() string {
	return "fragments shorter than the threshold are too short to carry meaning"
}

func (r *LengthRule) Check(quote string) Result {
	if n := utf8.RuneCountInString(quote); n < r.MinChars {
		return drop(r.Name(), fmt.Sprintf("quote has %d characters, minimum is %d", n, r.MinChars))
	}
	return keep(r.Name())
}
