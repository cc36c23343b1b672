package engine

import (
	"github.com/Iron-Ham/teamforge/internal/cluster"
	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// Pin places mover in anchor's team. If they already share a team nothing
// changes. Otherwise mover is swapped with the first cluster of its
// category in anchor's team; when there is none, mover is moved outright,
// which may leave that team with a repeated category.
func Pin(p *partition.Partition, catalog *cluster.Catalog, anchor, mover string, opts ...Option) (Stats, error) {
	o := newOptions(opts)
	for _, id := range []string{anchor, mover} {
		if _, ok := p.TeamOf(id); !ok || !catalog.Has(id) {
			return Stats{}, tferrors.NewEngineError("cannot pin", tferrors.ErrUnknownCluster).
				WithStage("pin").
				WithCluster(id)
		}
	}

	target, _ := p.TeamOf(anchor)
	from, _ := p.TeamOf(mover)
	stats := Stats{Iterations: 1, Converged: true}
	if target == from {
		return stats, nil
	}

	for _, id := range p.Team(target) {
		if id == anchor || !cluster.SameCategory(id, mover) {
			continue
		}
		if err := p.Swap(mover, id); err != nil {
			return Stats{}, tferrors.NewEngineError("pin swap failed", err).
				WithStage("pin").
				WithCluster(mover)
		}
		stats.Swaps++
		o.logger.Debug("pin swap",
			"anchor", anchor,
			"cluster", mover,
			"displaced", id,
			"team", target,
		)
		return stats, nil
	}

	if err := p.Move(mover, target); err != nil {
		return Stats{}, tferrors.NewEngineError("pin move failed", err).
			WithStage("pin").
			WithCluster(mover)
	}
	stats.Moves++
	o.logger.Debug("pin move",
		"anchor", anchor,
		"cluster", mover,
		"team", target,
	)
	return stats, nil
}
