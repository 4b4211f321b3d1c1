package curation

// Verdict represents the outcome of a rule check.
type Verdict int

const (
	// VerdictKeep means the quote is fine as far as the rule is concerned.
	VerdictKeep Verdict = iota
	// VerdictDrop means the quote must not be shown.
	VerdictDrop
)

func (v Verdict) String() string {
	switch v {
	case VerdictKeep:
		return "keep"
	case VerdictDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single Rule.
type Result struct {
	Verdict Verdict
	Rule    string
	Reason  string // human-readable; empty on keep
}

func keep(rule string) Result { return Result{Verdict: VerdictKeep, Rule: rule} }

func drop(rule, reason string) Result {
	return Result{Verdict: VerdictDrop, Rule: rule, Reason: reason}
}

// Decision aggregates the rule checks run against one quote.
type Decision struct {
	Quote   string // the original, untrimmed input
	Verdict Verdict
	// DroppedBy names the disqualifying rule; empty when kept.
	DroppedBy string
	Reason    string
	Results   []Result
}

// Kept reports whether the quote survived every rule.
func (d Decision) Kept() bool { return d.Verdict == VerdictKeep }

// CuratedQuote is a sanitizer-approved quote with its citation flag.
// It is derived on demand and never written back to the finding.
type CuratedQuote struct {
	Text            string `json:"text"`
	IsLegalCitation bool   `json:"is_legal_citation"`
}
