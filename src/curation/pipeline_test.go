package curation

import (
	"testing"
)

// stubRule is a test helper that returns a preconfigured verdict.
type stubRule struct {
	name    string
	verdict Verdict
}

func (s stubRule) Name() string      { return s.name }
func (s stubRule) Rationale() string { return "test" }
func (s stubRule) Check(_ string) Result {
	if s.verdict == VerdictDrop {
		return drop(s.name, "stub drop")
	}
	return keep(s.name)
}

// trackingRule records the quotes it was asked to check.
type trackingRule struct {
	seen *[]string
}

func (r trackingRule) Name() string      { return "tracking" }
func (r trackingRule) Rationale() string { return "test" }
func (r trackingRule) Check(q string) Result {
	*r.seen = append(*r.seen, q)
	return keep("tracking")
}

func TestPipeline_AllKeep(t *testing.T) {
	p := NewPipeline(
		stubRule{name: "a", verdict: VerdictKeep},
		stubRule{name: "b", verdict: VerdictKeep},
	)

	d := p.Evaluate("anything at all")
	if !d.Kept() {
		t.Errorf("verdict = %v, want keep", d.Verdict)
	}
	if d.DroppedBy != "" {
		t.Errorf("droppedBy = %q, want empty", d.DroppedBy)
	}
	if len(d.Results) != 2 {
		t.Errorf("results count = %d, want 2", len(d.Results))
	}
}

func TestPipeline_DropShortCircuits(t *testing.T) {
	var seen []string
	p := NewPipeline(
		stubRule{name: "dropper", verdict: VerdictDrop},
		trackingRule{seen: &seen},
	)

	d := p.Evaluate("input")
	if d.Verdict != VerdictDrop {
		t.Errorf("verdict = %v, want drop", d.Verdict)
	}
	if d.DroppedBy != "dropper" {
		t.Errorf("droppedBy = %q, want dropper", d.DroppedBy)
	}
	if len(seen) != 0 {
		t.Error("second rule should not have run after drop")
	}
	if len(d.Results) != 1 {
		t.Errorf("results = %d, want 1 (short-circuited)", len(d.Results))
	}
}

func TestPipeline_RulesSeeTrimmedQuote(t *testing.T) {
	var seen []string
	p := NewPipeline(trackingRule{seen: &seen})

	d := p.Evaluate("  \t padded quote \n")
	if len(seen) != 1 || seen[0] != "padded quote" {
		t.Errorf("rule saw %q, want [padded quote]", seen)
	}
	if d.Quote != "  \t padded quote \n" {
		t.Errorf("decision quote = %q, want original input", d.Quote)
	}
}

func TestPipeline_TrimsByteOrderMarkAndUnicodeSpace(t *testing.T) {
	var seen []string
	p := NewPipeline(trackingRule{seen: &seen})

	p.Evaluate("\ufeffhello world")
	p.Evaluate("\u3000padded quote\u00a0")
	want := []string{"hello world", "padded quote"}
	if !equalStrings(seen, want) {
		t.Errorf("rule saw %q, want %q", seen, want)
	}
}

func TestPipeline_SanitizeKeepsOriginalOrder(t *testing.T) {
	p := NewPipeline(dropIfEquals("drop me"))

	got := p.Sanitize([]string{"first", "drop me", "second", "first"})
	want := []string{"first", "second", "first"}
	if !equalStrings(got, want) {
		t.Errorf("sanitize = %q, want %q", got, want)
	}
}

func TestPipeline_Empty(t *testing.T) {
	p := NewPipeline()
	got := p.Sanitize([]string{"", "x"})
	if !equalStrings(got, []string{"", "x"}) {
		t.Errorf("sanitize = %q, want everything kept", got)
	}
	if out := p.Sanitize(nil); len(out) != 0 {
		t.Errorf("sanitize(nil) = %q, want empty", out)
	}
}

func TestPipeline_DecisionsOnePerInput(t *testing.T) {
	p := NewPipeline(dropIfEquals("b"))
	ds := p.Decisions([]string{"a", "b", "c"})
	if len(ds) != 3 {
		t.Fatalf("decisions = %d, want 3", len(ds))
	}
	if !ds[0].Kept() || ds[1].Kept() || !ds[2].Kept() {
		t.Errorf("verdicts = %v %v %v, want keep drop keep", ds[0].Verdict, ds[1].Verdict, ds[2].Verdict)
	}
}

func TestPipeline_RulesReturnsCopy(t *testing.T) {
	p := NewPipeline(stubRule{name: "a"})
	rules := p.Rules()
	rules[0] = stubRule{name: "mutated"}
	if p.Rules()[0].Name() != "a" {
		t.Error("mutating Rules() result changed the pipeline")
	}
}

type equalsRule string

func (e equalsRule) Name() string      { return "equals" }
func (e equalsRule) Rationale() string { return "test" }
func (e equalsRule) Check(q string) Result {
	if q == string(e) {
		return drop("equals", "matched")
	}
	return keep("equals")
}

func dropIfEquals(s string) Rule { return equalsRule(s) }

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
