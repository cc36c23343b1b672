package partition

import (
	"slices"

	"github.com/Iron-Ham/teamforge/internal/cluster"
)

// Profile describes one team. It is always derived from a Partition and a
// Catalog and never stored.
type Profile struct {
	Size         int                      // sum of headcounts
	Clusters     int                      // number of clusters
	Categories   map[cluster.Category]int // clusters per category; categoryless clusters are not counted
	Origins      map[string]int           // clusters per origin tag
	Spoken       []string                 // normalized languages needing translation
	Translatable []string                 // normalized languages someone can translate
	Leaders      int                      // leader-bearing clusters
	LeaderNames  []string                 // union of potential leader names
}

// ProfileOf computes the profile of team i.
func ProfileOf(p *Partition, catalog *cluster.Catalog, i int) Profile {
	return profileOfIDs(p.teams[i], catalog)
}

// ProfileOfIDs computes the profile of an arbitrary cluster list, used to
// evaluate a candidate move before applying it.
func ProfileOfIDs(ids []string, catalog *cluster.Catalog) Profile {
	return profileOfIDs(ids, catalog)
}

func profileOfIDs(ids []string, catalog *cluster.Catalog) Profile {
	prof := Profile{
		Categories: make(map[cluster.Category]int),
		Origins:    make(map[string]int),
	}
	var spoken, translatable []string
	for _, id := range ids {
		prof.Clusters++
		if ident, ok := cluster.Classify(id); ok {
			prof.Categories[ident.Category]++
			prof.Origins[ident.Origin]++
		}
		rec, ok := catalog.Get(id)
		if !ok {
			continue
		}
		prof.Size += rec.Headcount
		spoken = append(spoken, rec.Spoken...)
		translatable = append(translatable, rec.Translatable...)
		if rec.HasLeader() {
			prof.Leaders++
			prof.LeaderNames = append(prof.LeaderNames, rec.Leaders...)
		}
	}
	prof.Spoken = cluster.NormalizeLanguages(spoken)
	prof.Translatable = cluster.NormalizeLanguages(translatable)
	slices.Sort(prof.LeaderNames)
	prof.LeaderNames = slices.Compact(prof.LeaderNames)
	return prof
}

// Missing returns the sorted languages spoken in the team that nobody in
// the team can translate.
func (p Profile) Missing() []string {
	var out []string
	for _, lang := range p.Spoken {
		if _, found := slices.BinarySearch(p.Translatable, lang); !found {
			out = append(out, lang)
		}
	}
	return out
}

// HasCategory reports whether the team holds at least one cluster of c.
func (p Profile) HasCategory(c cluster.Category) bool {
	return p.Categories[c] > 0
}

// HasOrigin reports whether the team holds a cluster with origin tag o.
func (p Profile) HasOrigin(o string) bool {
	return p.Origins[o] > 0
}

// Sizes returns the headcount sum of every team.
func Sizes(p *Partition, catalog *cluster.Catalog) []int {
	out := make([]int, p.Len())
	for i, team := range p.teams {
		for _, id := range team {
			out[i] += catalog.Headcount(id)
		}
	}
	return out
}

// CategoryCounts returns, for every team, how many clusters of c it holds.
func CategoryCounts(p *Partition, c cluster.Category) []int {
	out := make([]int, p.Len())
	for i, team := range p.teams {
		for _, id := range team {
			if ident, ok := cluster.Classify(id); ok && ident.Category == c {
				out[i]++
			}
		}
	}
	return out
}
