package presentation

import (
	"github.com/Easy-Infra-Ltd/policyrisk/src/curation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/report"
)

// View is everything a front end needs to render one report.
type View struct {
	AnalysisID   string           `json:"analysis_id,omitempty"`
	HasMD        bool             `json:"has_md"`
	RiskScore    float64          `json:"risk_score"`
	RiskLevel    report.RiskLevel `json:"risk_level"`
	LevelStyle   Category         `json:"level_style"`
	Guidance     string           `json:"guidance"`
	FindingCount int              `json:"finding_count"`
	Findings     []FindingView    `json:"findings"`
	Checklist    []string         `json:"checklist"`
	Assumptions  []string         `json:"assumptions,omitempty"`
	Locale       string           `json:"locale"`
}

// FindingView is one finding with its curated evidence.
type FindingView struct {
	Rank            int                     `json:"rank"`
	Title           string                  `json:"title"`
	WhyItMatters    string                  `json:"why_it_matters"`
	Recommendations []string                `json:"recommendations"`
	Severity        report.Severity         `json:"severity"`
	SeverityStyle   Category                `json:"severity_style"`
	Urgent          bool                    `json:"urgent"`
	Critical        bool                    `json:"critical"`
	Evidence        []curation.CuratedQuote `json:"evidence"`
	// InsufficientEvidence is set when no quote survived curation.
	InsufficientEvidence bool `json:"insufficient_evidence"`
}

// Options controls BuildView.
type Options struct {
	MaxFindings int
	Catalog     *Catalog
}

// NewFindingView curates one finding. rank is 1-based.
func NewFindingView(rank int, f report.Finding, c *curation.Curator) FindingView {
	evidence := c.Curate(f.EvidenceQuotes)
	return FindingView{
		Rank:                 rank,
		Title:                f.Title,
		WhyItMatters:         f.WhyItMatters,
		Recommendations:      f.Recommendations,
		Severity:             f.Severity,
		SeverityStyle:        SeverityCategory(f.Severity),
		Urgent:               IsUrgent(f.Severity),
		Critical:             IsCritical(f.Severity),
		Evidence:             evidence,
		InsufficientEvidence: len(evidence) == 0,
	}
}

// BuildView curates the top findings of rep, which must not be nil. rep is
// not modified.
func BuildView(rep *report.RiskReport, c *curation.Curator, opts Options) View {
	cat := opts.Catalog
	if cat == nil {
		cat = CatalogFor()
	}
	maxFindings := opts.MaxFindings
	if maxFindings == 0 {
		maxFindings = report.DefaultTopFindings
	}

	top := rep.Top(maxFindings)
	findings := make([]FindingView, 0, len(top))
	for i, f := range top {
		findings = append(findings, NewFindingView(i+1, f, c))
	}

	return View{
		RiskScore:    rep.RiskScore,
		RiskLevel:    rep.RiskLevel,
		LevelStyle:   LevelCategory(rep.RiskLevel),
		Guidance:     cat.LevelMessage(rep.RiskLevel),
		FindingCount: len(rep.TopFindings),
		Findings:     findings,
		Checklist:    rep.QuickChecklist,
		Assumptions:  rep.AssumptionsAndLimits,
		Locale:       cat.Tag.String(),
	}
}
