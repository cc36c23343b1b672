package engine

import (
	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// BalanceCategories evens out every category across teams so per-team
// counts differ by at most one, then runs a cleanup that moves clusters past
// the second of a category to teams holding fewer than two and breaks up
// teams holding two of several categories at once. Cleanup never widens a
// category's per-team spread.
func BalanceCategories(p *partition.Partition, catalog *cluster.Catalog, opts ...Option) Stats {
	o := newOptions(opts)
	stats := Stats{Converged: true}
	if p.Len() < 2 {
		return stats
	}

	for _, c := range cluster.Categories() {
		stats = stats.Add(balanceCategory(p, c, o))
	}
	stats = stats.Add(cleanupCategories(p, o))
	return stats
}

func balanceCategory(p *partition.Partition, c cluster.Category, o options) Stats {
	var stats Stats
	for range o.categoryPasses {
		counts := partition.CategoryCounts(p, c)
		hi, lo := firstMax(counts), firstMin(counts)
		if counts[hi]-counts[lo] <= 1 {
			stats.Converged = true
			return stats
		}
		stats.Iterations++

		// hi holds at least two of c, so the second slot exists.
		id := ofCategory(p.Team(hi), c)[1]
		mustMove(p, id, lo)
		stats.Moves++
		o.logger.Debug("category move",
			"category", c.String(),
			"cluster", id,
			"from", hi,
			"to", lo,
		)
	}
	counts := partition.CategoryCounts(p, c)
	stats.Converged = counts[firstMax(counts)]-counts[firstMin(counts)] <= 1
	return stats
}

func cleanupCategories(p *partition.Partition, o options) Stats {
	var stats Stats
	for range o.cleanupPasses {
		stats.Iterations++
		changed := false
		for i := range p.Len() {
			if cleanupTeam(p, i, o, &stats) {
				changed = true
			}
		}
		if !changed {
			stats.Converged = true
			return stats
		}
	}
	return stats
}

// cleanupTeam repairs team i and reports whether anything moved.
func cleanupTeam(p *partition.Partition, i int, o options, stats *Stats) bool {
	changed := false
	for _, c := range cluster.Categories() {
		ids := ofCategory(p.Team(i), c)
		if len(ids) <= 2 {
			continue
		}
		for _, id := range ids[2:] {
			// Every other team already holds two or more of c.
			target := relocationTarget(p, c, i, false, o)
			if target < 0 {
				continue
			}
			mustMove(p, id, target)
			stats.Moves++
			changed = true
			o.logger.Debug("category cleanup move",
				"category", c.String(),
				"cluster", id,
				"from", i,
				"to", target,
			)
		}
	}

	doubled := doubledCategories(p.Team(i))
	if len(doubled) < 2 {
		return changed
	}
	c := doubled[0]
	target := relocationTarget(p, c, i, true, o)
	if target < 0 {
		return changed
	}
	id := ofCategory(p.Team(i), c)[1]
	mustMove(p, id, target)
	stats.Moves++
	o.logger.Debug("category pair split",
		"category", c.String(),
		"cluster", id,
		"from", i,
		"to", target,
	)
	return true
}

// relocationTarget picks a team other than from that holds fewer than two
// clusters of c. When strict is set the team must also hold no category
// twice. Without a random source the lowest-index team with the fewest
// clusters of c wins; with one, the choice is uniform over eligible teams.
func relocationTarget(p *partition.Partition, c cluster.Category, from int, strict bool, o options) int {
	counts := partition.CategoryCounts(p, c)
	var eligible []int
	for j := range p.Len() {
		if j == from || counts[j] >= 2 {
			continue
		}
		if strict && len(doubledCategories(p.Team(j))) > 0 {
			continue
		}
		eligible = append(eligible, j)
	}
	if len(eligible) == 0 {
		return -1
	}
	if o.rng != nil {
		return eligible[o.rng.IntN(len(eligible))]
	}
	best := eligible[0]
	for _, j := range eligible[1:] {
		if counts[j] < counts[best] {
			best = j
		}
	}
	return best
}

// ofCategory returns the clusters of team in category c, in team order.
func ofCategory(team []string, c cluster.Category) []string {
	var out []string
	for _, id := range team {
		if cat, ok := category(id); ok && cat == c {
			out = append(out, id)
		}
	}
	return out
}

// doubledCategories returns, in category order, the categories team holds
// exactly twice.
func doubledCategories(team []string) []cluster.Category {
	var out []cluster.Category
	for _, c := range cluster.Categories() {
		if len(ofCategory(team, c)) == 2 {
			out = append(out, c)
		}
	}
	return out
}
