package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// CategoryMatcher decides whether a breadcrumb label names one of the
// target categories. Matching is a case-insensitive substring test on
// NFC-normalized text, so composed and decomposed umlauts compare equal.
type CategoryMatcher struct {
	fold    cases.Caser
	targets []string
}

func NewCategoryMatcher(categories []string) *CategoryMatcher {
	m := &CategoryMatcher{fold: cases.Fold()}
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		m.targets = append(m.targets, m.normalize(c))
	}
	return m
}

// Match returns the configured category contained in label, if any.
func (m *CategoryMatcher) Match(label string) (string, bool) {
	folded := m.normalize(strings.TrimSpace(label))
	if folded == "" {
		return "", false
	}
	for _, t := range m.targets {
		if strings.Contains(folded, t) {
			return t, true
		}
	}
	return "", false
}

func (m *CategoryMatcher) Matches(label string) bool {
	_, ok := m.Match(label)
	return ok
}

func (m *CategoryMatcher) normalize(s string) string {
	return norm.NFC.String(m.fold.String(norm.NFC.String(s)))
}
