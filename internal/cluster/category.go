package cluster

import (
	"regexp"
	"strings"
)

// Category is the gender×age pairing encoded in a cluster identifier.
type Category string

const (
	// CategoryBrothersYoung is gender "b", age "y".
	CategoryBrothersYoung Category = "by"
	// CategoryBrothersOlder is gender "b", age "o".
	CategoryBrothersOlder Category = "bo"
	// CategorySistersYoung is gender "s", age "y".
	CategorySistersYoung Category = "sy"
	// CategorySistersOlder is gender "s", age "o".
	CategorySistersOlder Category = "so"
)

// String returns the two-character code.
func (c Category) String() string {
	return string(c)
}

// IsValid returns true if this is one of the four recognized categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBrothersYoung, CategoryBrothersOlder, CategorySistersYoung, CategorySistersOlder:
		return true
	default:
		return false
	}
}

// Categories returns every category in the fixed order used by all
// per-category loops.
func Categories() []Category {
	return []Category{
		CategoryBrothersYoung,
		CategoryBrothersOlder,
		CategorySistersYoung,
		CategorySistersOlder,
	}
}

// Identity is the parsed form of a cluster identifier.
type Identity struct {
	Category Category
	Origin   string // two-letter origin tag, upper-cased
	Number   string // numeric id as written
	Variant  string // optional "a"/"b" suffix
}

var identifierPattern = regexp.MustCompile(`^([bs])([yo])([A-Za-z]{2})(\d+)([ab])?$`)

// Classify parses a cluster identifier of the form
// {b|s}{y|o}{2 letters}{digits}{optional a|b}. It returns false when the
// identifier does not match; such clusters are categoryless.
func Classify(id string) (Identity, bool) {
	m := identifierPattern.FindStringSubmatch(id)
	if m == nil {
		return Identity{}, false
	}
	return Identity{
		Category: Category(m[1] + m[2]),
		Origin:   strings.ToUpper(m[3]),
		Number:   m[4],
		Variant:  m[5],
	}, true
}

// SameCategory reports whether both identifiers classify and share a
// category. Categoryless identifiers never match anything.
func SameCategory(a, b string) bool {
	ia, okA := Classify(a)
	ib, okB := Classify(b)
	return okA && okB && ia.Category == ib.Category
}
