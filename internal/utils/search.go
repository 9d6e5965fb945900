package utils

import (
	"regexp"
	"strings"
)

// FuzzyPattern builds the loose title-search expression: every character of the
// query is escaped and the characters are joined with ".*", so "ab" matches "Xa..Yb".
// Spaces become `\s*`. Matching is case-insensitive. An empty query yields "".
func FuzzyPattern(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	parts := make([]string, 0, len(query))
	for _, r := range query {
		if r == ' ' {
			parts = append(parts, `\s*`)
			continue
		}
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return "(?i)" + strings.Join(parts, ".*")
}

// FuzzyMatcher compiles FuzzyPattern(query). It returns nil for an empty query.
func FuzzyMatcher(query string) (*regexp.Regexp, error) {
	pattern := FuzzyPattern(query)
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// NormalizeTag trims and case-folds a tag name.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags folds, drops empties and deduplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
