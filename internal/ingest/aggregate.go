package ingest

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/Iron-Ham/teamforge/internal/cluster"
)

// fluentWords mark an English-proficiency answer that needs no translation.
var fluentWords = []string{"fluent", "fair", "good", "native"}

// negations cancel any fluent word that follows them in the same answer.
var negations = []string{"not", "no", "non", "never"}

// truthy holds the accepted spellings of a yes answer.
var truthy = []string{"yes", "y", "true", "x", "1"}

// aggregator folds registrant rows into per-cluster records, keeping the
// order in which clusters first appear.
type aggregator struct {
	index map[string]int
	order []string
	byID  map[string]*cluster.Record
}

func newAggregator(index map[string]int) *aggregator {
	return &aggregator{
		index: index,
		byID:  make(map[string]*cluster.Record),
	}
}

// add folds one row and returns the cluster it was mapped to. ok is false
// for rows without a cluster code.
func (a *aggregator) add(row []string, line int) (id string, ok bool) {
	id = clusterCode.FindString(a.cell(row, FieldCluster))
	if id == "" {
		return "", false
	}

	rec, seen := a.byID[id]
	if !seen {
		rec = &cluster.Record{ID: id}
		a.byID[id] = rec
		a.order = append(a.order, id)
	}
	rec.Headcount++

	langs := splitLanguages(a.cell(row, FieldLanguages))
	if a.needsTranslation(row) {
		rec.Spoken = append(rec.Spoken, langs...)
	} else {
		rec.Translatable = append(rec.Translatable, langs...)
	}
	rec.Translatable = append(rec.Translatable, splitLanguages(a.cell(row, FieldTranslator))...)

	if isTruthy(a.cell(row, FieldLeader)) {
		name := strings.TrimSpace(a.cell(row, FieldName))
		if name == "" {
			name = fmt.Sprintf("row %d", line)
		}
		rec.Leaders = append(rec.Leaders, name)
	}
	if isTruthy(a.cell(row, FieldStatusA)) {
		rec.StatusA++
	}
	if isTruthy(a.cell(row, FieldStatusB)) {
		rec.StatusB++
	}
	return id, true
}

// needsTranslation reports whether the member's languages count as spoken
// rather than translatable. Without an English column nobody does.
func (a *aggregator) needsTranslation(row []string) bool {
	if _, ok := a.index[FieldEnglish]; !ok {
		return false
	}
	return !isFluent(a.cell(row, FieldEnglish))
}

// isFluent reports whether an English-proficiency answer holds a fluent word
// as a whole word with no negation before it. "Fair" and "native speaker"
// are fluent; "unfair", "not fluent" and "non-native" are not.
func isFluent(answer string) bool {
	words := strings.FieldsFunc(strings.ToLower(answer), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if slices.Contains(negations, w) {
			return false
		}
		if slices.Contains(fluentWords, w) {
			return true
		}
	}
	return false
}

// cell returns the trimmed value of field in row, or "" when the field is
// unmapped or the row is short.
func (a *aggregator) cell(row []string, field string) string {
	i, ok := a.index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// records returns the aggregated records in first-appearance order.
func (a *aggregator) records() []cluster.Record {
	out := make([]cluster.Record, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.byID[id])
	}
	return out
}

func splitLanguages(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(s string) bool {
	return slices.Contains(truthy, strings.ToLower(strings.TrimSpace(s)))
}
