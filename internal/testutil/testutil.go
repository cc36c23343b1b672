// Package testutil provides testing utilities for teamforge tests.
package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/teamforge/internal/cluster"
)

// RosterHeader is the header row written by WriteRoster.
var RosterHeader = []string{"Name", "Cluster", "Languages", "English level", "Translator for", "Leader"}

// Registrant is one row of a roster written by WriteRoster.
type Registrant struct {
	Name       string
	Cluster    string
	Languages  string
	English    string
	Translator string
	Leader     string
}

func (r Registrant) row() []string {
	return []string{r.Name, r.Cluster, r.Languages, r.English, r.Translator, r.Leader}
}

// WriteCSV writes header and rows to dir/name and returns the path.
func WriteCSV(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			t.Fatalf("failed to write header: %v", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("failed to write rows: %v", err)
	}
	return path
}

// WriteRoster writes a registrant roster using RosterHeader into a fresh
// temporary directory and returns its path.
func WriteRoster(t *testing.T, registrants ...Registrant) string {
	t.Helper()

	rows := make([][]string, len(registrants))
	for i, r := range registrants {
		rows[i] = r.row()
	}
	return WriteCSV(t, t.TempDir(), "roster.csv", RosterHeader, rows...)
}

// Catalog builds a catalog from records, failing the test on error.
func Catalog(t *testing.T, records ...cluster.Record) *cluster.Catalog {
	t.Helper()

	c, err := cluster.NewCatalog(records...)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

// SampleCatalog returns eight clusters covering every category, three
// origins, leaders in three clusters and one Spanish translation need.
func SampleCatalog(t *testing.T) *cluster.Catalog {
	t.Helper()

	return Catalog(t,
		cluster.Record{ID: "byUS1", Headcount: 4, Leaders: []string{"Ana"}},
		cluster.Record{ID: "syUS2", Headcount: 3, Spoken: []string{"spanish"}},
		cluster.Record{ID: "boDE3", Headcount: 3, Leaders: []string{"Bo"}},
		cluster.Record{ID: "soDE4", Headcount: 2, Translatable: []string{"spanish"}},
		cluster.Record{ID: "byFR5", Headcount: 2},
		cluster.Record{ID: "syFR6", Headcount: 1, Leaders: []string{"Cy"}},
		cluster.Record{ID: "boBR7", Headcount: 1},
		cluster.Record{ID: "soBR8", Headcount: 1},
	)
}
