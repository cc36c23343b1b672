package engine

import (
	"cmp"
	"slices"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// placeState tracks what Place needs to score teams without recomputing
// full profiles for every candidate.
type placeState struct {
	clusters   []int
	categories []map[cluster.Category]bool
	origins    []map[string]bool
}

func newPlaceState(n int) *placeState {
	s := &placeState{
		clusters:   make([]int, n),
		categories: make([]map[cluster.Category]bool, n),
		origins:    make([]map[string]bool, n),
	}
	for i := range n {
		s.categories[i] = make(map[cluster.Category]bool)
		s.origins[i] = make(map[string]bool)
	}
	return s
}

// best returns the highest scoring team for a cluster, or -1 when every
// team already holds the cluster's category.
func (s *placeState) best(ident cluster.Identity, classified bool) int {
	best, bestScore := -1, 0
	for i := range s.clusters {
		if classified && s.categories[i][ident.Category] {
			continue
		}
		score := -s.clusters[i] * 100
		if classified && !s.origins[i][ident.Origin] {
			score++
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func (s *placeState) assign(i int, ident cluster.Identity, classified bool) {
	s.clusters[i]++
	if classified {
		s.categories[i][ident.Category] = true
		s.origins[i][ident.Origin] = true
	}
}

// Place builds the initial partition of n teams. Clusters are taken by
// descending headcount with catalog order breaking ties. Each goes to the
// team with the fewest clusters that does not yet hold its category,
// preferring teams without its origin tag. When every team already holds
// the category, it goes to the team with the fewest clusters.
func Place(catalog *cluster.Catalog, n int, opts ...Option) (*partition.Partition, Stats) {
	o := newOptions(opts)
	p := partition.New(n)
	stats := Stats{Converged: true}
	if n < 1 {
		stats.Converged = catalog.Len() == 0
		return p, stats
	}

	records := catalog.Records()
	slices.SortStableFunc(records, func(a, b cluster.Record) int {
		return cmp.Compare(b.Headcount, a.Headcount)
	})

	state := newPlaceState(n)
	for _, rec := range records {
		stats.Iterations++
		ident, classified := cluster.Classify(rec.ID)
		team := state.best(ident, classified)
		if team < 0 {
			team = firstMin(state.clusters)
			o.logger.Debug("category present in every team, placing by cluster count",
				"cluster", rec.ID,
				"team", team,
			)
		}
		// Add cannot fail: the catalog rejects duplicates and team is in range.
		_ = p.Add(team, rec.ID)
		state.assign(team, ident, classified)
		stats.Moves++
	}
	return p, stats
}
