// Package query extracts structured retrieval filters from free-text analyst
// questions: competitor mentions, region tags, event categories, a threat
// floor, and a date window. All matching is deterministic keyword scanning;
// there is no fuzzy matching and no learned state.
package query

import "strings"

// hasKeyword reports whether kw occurs in text bounded by non-alphanumeric
// bytes on both sides. Both arguments must already be lowercased. Plain
// substring search would make "us" match "business", so region and threat
// cues need the boundary check.
func hasKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	for i := 0; i+len(kw) <= len(text); {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		start := i + j
		if isBoundary(text, start-1) && isBoundary(text, start+len(kw)) {
			return true
		}
		i = start + 1
	}
	return false
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	switch {
	case c >= 'a' && c <= 'z':
		return false
	case c >= 'A' && c <= 'Z':
		return false
	case c >= '0' && c <= '9':
		return false
	}
	return true
}

// hasAnyKeyword reports whether any keyword in the list matches the text.
func hasAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if hasKeyword(text, kw) {
			return true
		}
	}
	return false
}
