package cluster

import (
	"fmt"
	"slices"

	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
)

// Record holds the aggregates of one cluster. A cluster is never split
// across teams.
type Record struct {
	ID           string
	Headcount    int      // number of registrant rows mapped to ID
	Spoken       []string // languages spoken by members who need translation into English
	Translatable []string // languages some member can translate
	Leaders      []string // potential leader names
	StatusA      int      // reporting only
	StatusB      int      // reporting only

	// Normalized language sets, filled when the record enters a Catalog.
	spokenNorm       []string
	translatableNorm []string
}

// HasLeader reports whether the cluster includes a potential leader.
func (r *Record) HasLeader() bool {
	return len(r.Leaders) > 0
}

// Speaks reports whether the cluster needs translation for the
// normalized language lang and cannot translate it itself.
func (r *Record) Speaks(lang string) bool {
	_, spoken := slices.BinarySearch(normalizedSet(r.spokenNorm, r.Spoken), lang)
	return spoken && !r.Translates(lang)
}

// Translates reports whether the cluster can translate the normalized
// language lang.
func (r *Record) Translates(lang string) bool {
	_, ok := slices.BinarySearch(normalizedSet(r.translatableNorm, r.Translatable), lang)
	return ok
}

// normalizedSet returns cached when the record came from a Catalog and
// normalizes raw otherwise.
func normalizedSet(cached, raw []string) []string {
	if cached != nil {
		return cached
	}
	return NormalizeLanguages(raw)
}

// normalized returns a copy with sets deduplicated and sorted and the
// language sets normalized once for Speaks and Translates.
func (r Record) normalized() *Record {
	out := r
	out.Spoken = dedupe(r.Spoken)
	out.Translatable = dedupe(r.Translatable)
	out.Leaders = dedupe(r.Leaders)
	out.spokenNorm = NormalizeLanguages(out.Spoken)
	out.translatableNorm = NormalizeLanguages(out.Translatable)
	return &out
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Catalog is the read-only set of cluster records for one run. It keeps
// insertion order, which is the tie-break order for every engine pass.
// A Catalog is safe to share between goroutines once built.
type Catalog struct {
	order   []string
	records map[string]*Record
}

// NewCatalog builds a Catalog from records in the given order.
func NewCatalog(records ...Record) (*Catalog, error) {
	c := &Catalog{
		order:   make([]string, 0, len(records)),
		records: make(map[string]*Record, len(records)),
	}
	for _, r := range records {
		if r.ID == "" {
			return nil, tferrors.NewValidationError("cluster id is required")
		}
		if r.Headcount < 1 {
			return nil, tferrors.NewValidationError("headcount must be at least 1").
				WithField(r.ID).WithValue(r.Headcount)
		}
		if _, exists := c.records[r.ID]; exists {
			return nil, fmt.Errorf("cluster %q: %w", r.ID, tferrors.ErrDuplicateCluster)
		}
		c.order = append(c.order, r.ID)
		c.records[r.ID] = r.normalized()
	}
	return c, nil
}

// Len returns the number of clusters.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns cluster identifiers in insertion order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.order)
}

// Get returns the record for id. The returned record must not be modified.
func (c *Catalog) Get(id string) (*Record, bool) {
	r, ok := c.records[id]
	return r, ok
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.records[id]
	return ok
}

// Headcount returns the headcount of id, or 0 for unknown identifiers.
func (c *Catalog) Headcount(id string) int {
	if r, ok := c.records[id]; ok {
		return r.Headcount
	}
	return 0
}

// TotalHeadcount sums every cluster's headcount.
func (c *Catalog) TotalHeadcount() int {
	total := 0
	for _, r := range c.records {
		total += r.Headcount
	}
	return total
}

// Records returns copies of every record in insertion order.
func (c *Catalog) Records() []Record {
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.records[id])
	}
	return out
}
