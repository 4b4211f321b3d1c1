// Package presentation maps report values to display categories and
// renders curated reports for reviewers.
package presentation

import "github.com/Easy-Infra-Ltd/policyrisk/src/report"

// Category is a display style bucket. Front ends pick colours per category.
type Category string

const (
	CategoryNeutral  Category = "neutral"
	CategoryPositive Category = "positive"
	CategoryCaution  Category = "caution"
	CategoryDanger   Category = "danger"
	CategorySevere   Category = "severe"
)

// Lookup tables are populated once and never written afterwards.
var (
	levelCategories = map[report.RiskLevel]Category{
		report.RiskLevelLow:    CategoryPositive,
		report.RiskLevelMedium: CategoryCaution,
		report.RiskLevelHigh:   CategoryDanger,
	}

	severityCategories = map[report.Severity]Category{
		report.SeverityLow:      CategoryPositive,
		report.SeverityMedium:   CategoryCaution,
		report.SeverityHigh:     CategoryDanger,
		report.SeverityCritical: CategorySevere,
	}
)

// LevelCategory returns the style for a risk level, CategoryNeutral when
// the level is not recognised.
func LevelCategory(level report.RiskLevel) Category {
	if c, ok := levelCategories[level]; ok {
		return c
	}
	return CategoryNeutral
}

// SeverityCategory returns the style for a finding severity,
// CategoryNeutral when the severity is not recognised.
func SeverityCategory(sev report.Severity) Category {
	if c, ok := severityCategories[sev]; ok {
		return c
	}
	return CategoryNeutral
}

// IsUrgent reports whether a finding should be visually flagged.
func IsUrgent(sev report.Severity) bool {
	return sev == report.SeverityHigh || sev == report.SeverityCritical
}

// IsCritical reports whether a finding gets the strongest treatment.
func IsCritical(sev report.Severity) bool {
	return sev == report.SeverityCritical
}
