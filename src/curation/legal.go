package curation

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// legalCitation matches article and paragraph references (제15조, 제 1 항),
// the Personal Information Protection Act by name, and the regulatory
// instrument nouns for enforcement decree, enforcement rule and public notice.
var legalCitation = regexp.MustCompile(
	`(?i)제\s*\d+\s*조|제\s*\d+\s*항|개인정보\s*보호법|시행령|시행규칙|고시`,
)

// IsLegalCitation reports whether text reads as a formal legal citation.
// It is safe on arbitrary input, including the empty string. Matching runs on
// an NFKC-normalized copy so full-width digits count as numbers; text itself
// is never altered.
func IsLegalCitation(text string) bool {
	if text == "" {
		return false
	}
	return legalCitation.MatchString(norm.NFKC.String(text))
}
