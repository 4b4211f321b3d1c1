package presentation

import (
	"golang.org/x/text/language"

	"github.com/Easy-Infra-Ltd/policyrisk/src/report"
)

// Catalog holds the reviewer-facing text for one locale.
type Catalog struct {
	Tag                  language.Tag
	Title                string
	LevelGuidance        map[report.RiskLevel]string
	DefaultGuidance      string
	ScoreHint            string
	WhyItMatters         string
	Recommendations      string
	Evidence             string
	LegalCitation        string
	InsufficientEvidence string
	Checklist            string
	ChecklistNote        string
	NoChecklist          string
	Assumptions          string
}

var korean = Catalog{
	Tag:   language.Korean,
	Title: "PolicyRisk Agent 리포트",
	LevelGuidance: map[report.RiskLevel]string{
		report.RiskLevelLow:    "현재 기준에서는 큰 위험 신호가 적습니다.",
		report.RiskLevelMedium: "개선 권장: 누락/모호 조항을 우선 정리하세요.",
		report.RiskLevelHigh:   "즉시 개선 필요: 핵심 조항 누락 가능성이 높습니다.",
	},
	DefaultGuidance:      "리스크 수준을 확인하세요.",
	ScoreHint:            "0~100 (높을수록 위험)",
	WhyItMatters:         "왜 중요한가",
	Recommendations:      "권고 조치",
	Evidence:             "근거 문구",
	LegalCitation:        "법령 인용",
	InsufficientEvidence: "근거 문구를 충분히 추출하지 못했습니다. (원문/JSON에서 확인 가능)",
	Checklist:            "Quick Checklist",
	ChecklistNote:        "※ 아래 항목은 정책 문서를 검토·개선하는 담당자를 위한 점검 기준입니다.",
	NoChecklist:          "체크리스트 항목이 없습니다.",
	Assumptions:          "가정 및 한계",
}

var english = Catalog{
	Tag:   language.English,
	Title: "PolicyRisk Agent Report",
	LevelGuidance: map[report.RiskLevel]string{
		report.RiskLevelLow:    "Few major risk signals under the current criteria.",
		report.RiskLevelMedium: "Improvement advised: clean up missing or ambiguous clauses first.",
		report.RiskLevelHigh:   "Immediate action needed: key clauses are likely missing.",
	},
	DefaultGuidance:      "Check the risk level.",
	ScoreHint:            "0-100 (higher is riskier)",
	WhyItMatters:         "Why it matters",
	Recommendations:      "Recommendations",
	Evidence:             "Evidence",
	LegalCitation:        "legal citation",
	InsufficientEvidence: "Not enough evidence quotes could be extracted. (Check the source document or JSON.)",
	Checklist:            "Quick Checklist",
	ChecklistNote:        "These items are review criteria for whoever maintains the policy document.",
	NoChecklist:          "No checklist items.",
	Assumptions:          "Assumptions and limits",
}

var (
	catalogs = []*Catalog{&korean, &english}
	matcher  = language.NewMatcher([]language.Tag{korean.Tag, english.Tag})
)

// CatalogFor returns the catalog best matching the given BCP 47 locale
// strings. Korean is the fallback.
func CatalogFor(locales ...string) *Catalog {
	_, idx := language.MatchStrings(matcher, locales...)
	return catalogs[idx]
}

// LevelMessage returns the guidance line for a risk level in the catalog's
// language, or the default guidance for an unrecognised level.
func (c *Catalog) LevelMessage(level report.RiskLevel) string {
	if msg, ok := c.LevelGuidance[level]; ok {
		return msg
	}
	return c.DefaultGuidance
}
