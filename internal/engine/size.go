package engine

import (
	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// BalanceSizes narrows the headcount spread between the largest and the
// smallest team. Each iteration applies the single same-category swap
// between those two teams that most reduces their difference; it stops when
// the spread is at most one or no swap helps.
func BalanceSizes(p *partition.Partition, catalog *cluster.Catalog, opts ...Option) Stats {
	o := newOptions(opts)
	var stats Stats
	if p.Len() < 2 {
		stats.Converged = true
		return stats
	}

	for range o.iterations(DefaultSizeIterations) {
		sizes := partition.Sizes(p, catalog)
		hi, lo := firstMax(sizes), firstMin(sizes)
		spread := sizes[hi] - sizes[lo]
		if spread <= 1 {
			stats.Converged = true
			return stats
		}
		stats.Iterations++

		a, b, ok := bestSizeSwap(p.Team(hi), p.Team(lo), sizes[hi], sizes[lo], catalog)
		if !ok {
			stats.Converged = true
			return stats
		}
		mustSwap(p, a, b)
		stats.Swaps++
		o.logger.Debug("size swap",
			"out", a,
			"in", b,
			"large_team", hi,
			"small_team", lo,
			"spread", spread,
		)
	}
	sizes := partition.Sizes(p, catalog)
	stats.Converged = sizes[firstMax(sizes)]-sizes[firstMin(sizes)] <= 1
	return stats
}

// bestSizeSwap returns the same-category pair whose exchange leaves the two
// teams closest in size, provided it beats the current difference.
func bestSizeSwap(large, small []string, largeSize, smallSize int, catalog *cluster.Catalog) (string, string, bool) {
	best := largeSize - smallSize
	var outA, outB string
	found := false
	for _, a := range large {
		if _, ok := category(a); !ok {
			continue
		}
		for _, b := range small {
			if !cluster.SameCategory(a, b) {
				continue
			}
			d := catalog.Headcount(a) - catalog.Headcount(b)
			if next := abs((largeSize - d) - (smallSize + d)); next < best {
				best, outA, outB, found = next, a, b, true
			}
		}
	}
	return outA, outB, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
