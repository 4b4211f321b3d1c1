package report

import (
	"fmt"
	"strings"
)

// Severity grades a single finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns an integer rank for comparison (Low=1, Critical=4). Values the
// analysis service may add later rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Known reports whether s is one of the four documented severities.
func (s Severity) Known() bool { return s.Rank() > 0 }

func (s Severity) String() string { return string(s) }

// ParseSeverity parses a severity string case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.Known() {
		return sev, fmt.Errorf("invalid severity: %s", s)
	}
	return sev, nil
}

// RiskLevel grades a whole report.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Known reports whether l is one of the three documented levels.
func (l RiskLevel) Known() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

func (l RiskLevel) String() string { return string(l) }

// ParseRiskLevel parses a risk level string case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Known() {
		return l, fmt.Errorf("invalid risk level: %s", s)
	}
	return l, nil
}
