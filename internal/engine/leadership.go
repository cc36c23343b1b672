package engine

import (
	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// BalanceLeadership gives leaderless teams a leader-bearing cluster taken
// from a team that has more than one, swapping it for a same-category
// cluster without a leader. The first matching pair is always accepted.
func BalanceLeadership(p *partition.Partition, catalog *cluster.Catalog, opts ...Option) Stats {
	o := newOptions(opts)
	var stats Stats

	leaders := leaderCounts(p, catalog)
	for t := range p.Len() {
		if leaders[t] != 0 {
			continue
		}
		stats.Iterations++
		for s := range p.Len() {
			if leaders[s] <= 1 {
				continue
			}
			a, b, ok := leaderPair(p.Team(s), p.Team(t), catalog)
			if !ok {
				continue
			}
			mustSwap(p, a, b)
			stats.Swaps++
			o.logger.Debug("leader swap",
				"leader_cluster", a,
				"from", s,
				"to", t,
				"returned", b,
			)
			leaders = leaderCounts(p, catalog)
			break
		}
	}

	stats.Converged = true
	for _, n := range leaders {
		if n == 0 {
			stats.Converged = false
			break
		}
	}
	return stats
}

// leaderPair finds a leader-bearing cluster in surplus and a same-category
// cluster without a leader in leaderless.
func leaderPair(surplus, leaderless []string, catalog *cluster.Catalog) (string, string, bool) {
	for _, a := range surplus {
		rec, ok := catalog.Get(a)
		if !ok || !rec.HasLeader() {
			continue
		}
		for _, b := range leaderless {
			if !cluster.SameCategory(a, b) {
				continue
			}
			if other, ok := catalog.Get(b); ok && other.HasLeader() {
				continue
			}
			return a, b, true
		}
	}
	return "", "", false
}

func leaderCounts(p *partition.Partition, catalog *cluster.Catalog) []int {
	out := make([]int, p.Len())
	for i := range p.Len() {
		for _, id := range p.Team(i) {
			if rec, ok := catalog.Get(id); ok && rec.HasLeader() {
				out[i]++
			}
		}
	}
	return out
}
