package retrieval

import (
	"regexp"
	"strings"
)

var (
	// fullNamePattern matches "Capitalized Capitalized" pairs likely to be
	// person names.
	fullNamePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)

	// singleNamePattern matches lone capitalized words of length >= 3.
	singleNamePattern = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
)

// searchTerm is a candidate substring for the keyword fallback scan.
// Known terms come from the configured keyword list and score higher than
// pattern-derived name terms.
type searchTerm struct {
	text  string
	known bool
}

// extractSearchTerms derives candidate terms from a query: full-name
// patterns, single capitalized words, and configured known keywords found in
// the query. When nothing matches, the entire lowercased query becomes the
// single term.
func extractSearchTerms(query string, knownKeywords []string) []searchTerm {
	var terms []searchTerm

	for _, m := range fullNamePattern.FindAllString(query, -1) {
		terms = append(terms, searchTerm{text: strings.ToLower(m)})
	}
	for _, m := range singleNamePattern.FindAllString(query, -1) {
		terms = append(terms, searchTerm{text: strings.ToLower(m)})
	}

	lower := strings.ToLower(query)
	for _, kw := range knownKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			terms = append(terms, searchTerm{text: strings.ToLower(kw), known: true})
		}
	}

	if len(terms) == 0 {
		terms = []searchTerm{{text: lower, known: true}}
	}
	return terms
}

// truncateRunes caps s at limit runes. Slicing runes rather than bytes keeps
// a multi-byte character from being cut mid-sequence.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// containsAny reports whether lower contains any of the listed substrings,
// compared case-insensitively.
func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
