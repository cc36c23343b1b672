package engine

import (
	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// languageSwap is an accepted exchange between a team with an untranslated
// language and a team that can spare a translator for it.
type languageSwap struct {
	speaker    string
	translator string
	language   string
	donor      int
	acceptor   int
}

// BalanceLanguages swaps clusters so that languages spoken in a team are
// translatable within it. A swap is accepted only when the donor team's
// missing count does not grow and the acceptor team ends with nothing
// missing, so no team ever gets worse.
func BalanceLanguages(p *partition.Partition, catalog *cluster.Catalog, opts ...Option) Stats {
	o := newOptions(opts)
	var stats Stats
	for range o.iterations(DefaultLanguageIterations) {
		stats.Iterations++
		swap, ok := findLanguageSwap(p, catalog)
		if !ok {
			stats.Converged = true
			return stats
		}
		mustSwap(p, swap.speaker, swap.translator)
		stats.Swaps++
		o.logger.Debug("language swap",
			"language", swap.language,
			"speaker", swap.speaker,
			"translator", swap.translator,
			"donor", swap.donor,
			"acceptor", swap.acceptor,
		)
	}
	_, pending := findLanguageSwap(p, catalog)
	stats.Converged = !pending
	return stats
}

func findLanguageSwap(p *partition.Partition, catalog *cluster.Catalog) (languageSwap, bool) {
	for t := range p.Len() {
		team := p.Team(t)
		missing := partition.ProfileOfIDs(team, catalog).Missing()
		for _, lang := range missing {
			if swap, ok := swapForLanguage(p, catalog, t, team, lang, len(missing)); ok {
				return swap, true
			}
		}
	}
	return languageSwap{}, false
}

func swapForLanguage(p *partition.Partition, catalog *cluster.Catalog, t int, team []string, lang string, before int) (languageSwap, bool) {
	for _, speaker := range team {
		rec, ok := catalog.Get(speaker)
		if !ok || !rec.Speaks(lang) {
			continue
		}
		if _, ok := category(speaker); !ok {
			continue
		}
		for u := range p.Len() {
			if u == t {
				continue
			}
			other := p.Team(u)
			for _, translator := range other {
				if !cluster.SameCategory(speaker, translator) {
					continue
				}
				cand, ok := catalog.Get(translator)
				if !ok || !cand.Translates(lang) {
					continue
				}
				if missingCount(swapped(team, speaker, translator), catalog) > before {
					continue
				}
				if missingCount(swapped(other, translator, speaker), catalog) != 0 {
					continue
				}
				return languageSwap{
					speaker:    speaker,
					translator: translator,
					language:   lang,
					donor:      t,
					acceptor:   u,
				}, true
			}
		}
	}
	return languageSwap{}, false
}
