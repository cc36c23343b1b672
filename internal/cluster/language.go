package cluster

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical language names produced by NormalizeLanguage.
const (
	LanguageRussian = "russian"
	LanguageChinese = "chinese"
)

// ukrainianSpellings are substrings that identify regional spellings of
// Ukrainian. Those collapse into LanguageRussian for coverage purposes.
var ukrainianSpellings = []string{"ukrain", "ukran", "ucrain", "oekra"}

// NormalizeLanguage folds a language name to the form used for coverage
// comparisons. It returns "" for names that are dropped entirely: blanks
// and English, which is never missing and never a translation asset.
//
// The function is idempotent: NormalizeLanguage(NormalizeLanguage(s)) ==
// NormalizeLanguage(s).
func NormalizeLanguage(name string) string {
	// Casers keep internal state; one per call keeps this safe to share.
	s := cases.Lower(language.Und).String(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	for _, variant := range ukrainianSpellings {
		if strings.Contains(s, variant) {
			return LanguageRussian
		}
	}
	if strings.Contains(s, "hinese") {
		return LanguageChinese
	}
	if s == "english" {
		return ""
	}
	return s
}

// NormalizeLanguages normalizes every name and returns the sorted,
// deduplicated result without dropped names.
func NormalizeLanguages(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if norm := NormalizeLanguage(n); norm != "" {
			out = append(out, norm)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
