package presentation

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown writes v as a Markdown document. Legal citations are set in
// bold and tagged; quotes are wrapped in curly quotes after trimming.
func RenderMarkdown(w io.Writer, v View, cat *Catalog) error {
	if cat == nil {
		cat = CatalogFor(v.Locale)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", cat.Title))
	if v.AnalysisID != "" {
		sb.WriteString(fmt.Sprintf("**Analysis ID:** `%s`\n\n", v.AnalysisID))
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Risk Score | Risk Level | Findings |\n")
	sb.WriteString("| :--- | :--- | :--- |\n")
	sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n\n", formatScore(v.RiskScore), v.RiskLevel, v.FindingCount))
	sb.WriteString(fmt.Sprintf("_%s_\n\n", cat.ScoreHint))
	sb.WriteString(fmt.Sprintf("> %s\n\n", v.Guidance))

	if len(v.Findings) > 0 {
		sb.WriteString("## Top Findings\n\n")
		for _, f := range v.Findings {
			writeFinding(&sb, f, cat)
		}
	}

	sb.WriteString(fmt.Sprintf("## %s\n\n", cat.Checklist))
	sb.WriteString(fmt.Sprintf("%s\n\n", cat.ChecklistNote))
	if len(v.Checklist) == 0 {
		sb.WriteString(fmt.Sprintf("_%s_\n\n", cat.NoChecklist))
	} else {
		for _, item := range v.Checklist {
			sb.WriteString(fmt.Sprintf("- [ ] %s\n", item))
		}
		sb.WriteString("\n")
	}

	if len(v.Assumptions) > 0 {
		sb.WriteString(fmt.Sprintf("## %s\n\n", cat.Assumptions))
		for _, a := range v.Assumptions {
			sb.WriteString(fmt.Sprintf("- %s\n", a))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderEvidence writes only the evidence block of one finding, as shown
// when its detail view is expanded.
func RenderEvidence(w io.Writer, f FindingView, cat *Catalog) error {
	var sb strings.Builder
	writeEvidence(&sb, f, cat)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeFinding(sb *strings.Builder, f FindingView, cat *Catalog) {
	marker := ""
	if f.Urgent {
		marker = " (!)"
	}
	sb.WriteString(fmt.Sprintf("### #%d %s [%s]%s\n\n", f.Rank, f.Title, f.Severity, marker))

	sb.WriteString(fmt.Sprintf("**%s**\n\n%s\n\n", cat.WhyItMatters, f.WhyItMatters))

	sb.WriteString(fmt.Sprintf("**%s**\n\n", cat.Recommendations))
	for _, r := range f.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s\n", r))
	}
	sb.WriteString("\n")

	writeEvidence(sb, f, cat)
}

func writeEvidence(sb *strings.Builder, f FindingView, cat *Catalog) {
	if f.InsufficientEvidence {
		sb.WriteString(fmt.Sprintf("**%s**\n\n_%s_\n\n", cat.Evidence, cat.InsufficientEvidence))
		return
	}

	sb.WriteString(fmt.Sprintf("**%s (%d)**\n\n", cat.Evidence, len(f.Evidence)))
	for _, q := range f.Evidence {
		text := strings.TrimSpace(q.Text)
		if q.IsLegalCitation {
			sb.WriteString(fmt.Sprintf("> **“%s”** _(%s)_\n>\n", text, cat.LegalCitation))
		} else {
			sb.WriteString(fmt.Sprintf("> “%s”\n>\n", text))
		}
	}
	sb.WriteString("\n")
}

func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.1f", score)
}
