// Package report holds the risk report produced by the external analysis
// service and the envelope it arrives in. Reports are treated as immutable
// once decoded.
package report

import (
	"errors"
	"fmt"
)

// DefaultTopFindings is how many findings a reviewer is shown.
const DefaultTopFindings = 5

var (
	ErrNotOK             = errors.New("analysis response not ok")
	ErrMissingRisk       = errors.New("analysis response missing risk")
	ErrMissingAnalysisID = errors.New("analysis response missing analysis_id")
)

// Finding is one identified risk issue in the analysed document.
type Finding struct {
	Title           string   `json:"title"`
	WhyItMatters    string   `json:"why_it_matters"`
	EvidenceQuotes  []string `json:"evidence_quotes"`
	Recommendations []string `json:"recommendations"`
	Severity        Severity `json:"severity"`
}

// RiskReport is the root aggregate of one analysis.
type RiskReport struct {
	RiskScore            float64   `json:"risk_score"`
	RiskLevel            RiskLevel `json:"risk_level"`
	TopFindings          []Finding `json:"top_findings"`
	QuickChecklist       []string  `json:"quick_checklist,omitempty"`
	AssumptionsAndLimits []string  `json:"assumptions_and_limits,omitempty"`
}

// Top returns at most n findings in report order. n <= 0 returns all.
func (r *RiskReport) Top(n int) []Finding {
	if r == nil {
		return nil
	}
	if n <= 0 || n >= len(r.TopFindings) {
		return r.TopFindings
	}
	return r.TopFindings[:n]
}

// AnalysisResult is the envelope returned by the analyze endpoint.
type AnalysisResult struct {
	OK         bool        `json:"ok"`
	AnalysisID string      `json:"analysis_id"`
	HasMD      bool        `json:"has_md"`
	Risk       *RiskReport `json:"risk,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Validate applies the transport-level acceptance checks in order: ok flag,
// risk present, analysis_id present.
func (a *AnalysisResult) Validate() error {
	if !a.OK {
		if a.Error != "" {
			return fmt.Errorf("%w: %s", ErrNotOK, a.Error)
		}
		return ErrNotOK
	}
	if a.Risk == nil {
		return ErrMissingRisk
	}
	if a.AnalysisID == "" {
		return ErrMissingAnalysisID
	}
	return nil
}
