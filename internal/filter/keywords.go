package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Listing metadata lines (budget, age of the posting, fee) that must never be
// taken for a title.
var metadataRegex = regexp.MustCompile(`(?i)(new|budget|hours|eur|days old)`)

const (
	// MaxTitleLines is how many non-empty lines of a listing are considered.
	MaxTitleLines = 5
	minTitleLen   = 3
	maxTitleLen   = 100
)

// IsTitleCandidate reports whether a trimmed line can serve as a job title.
func IsTitleCandidate(line string) bool {
	n := utf8.RuneCountInString(line)
	if n <= minTitleLen || n >= maxTitleLen {
		return false
	}
	return !metadataRegex.MatchString(line)
}

// PickTitle returns the first candidate among the first MaxTitleLines
// non-empty lines of text.
func PickTitle(text string) (string, bool) {
	inspected := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if inspected == MaxTitleLines {
			break
		}
		inspected++
		if IsTitleCandidate(line) {
			return line, true
		}
	}
	return "", false
}
