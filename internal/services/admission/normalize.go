package admission

import (
	"regexp"
	"strings"
)

var stopWords = regexp.MustCompile(`\b(bs|bsc|bachelors|in|science|scien)\b`)

// Normalize lowercases a program label and removes degree stop words, so that
// "BS Computer Science" and "Computer Science" compare equal.
func Normalize(text string) string {
	return strings.TrimSpace(stopWords.ReplaceAllString(strings.ToLower(text), ""))
}

// Matches reports whether the normalized query is a substring of the
// normalized label. Short queries match broadly; that is intended.
func Matches(label, query string) bool {
	return strings.Contains(Normalize(label), Normalize(query))
}
